package prime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	"github.com/coinbase-samples/prime-sdk-go/client"
	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/coinbase-samples/prime-sdk-go/model"
	"github.com/coinbase-samples/prime-sdk-go/portfolios"
	"github.com/coinbase-samples/prime-sdk-go/transactions"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	RailName = "prime"

	defaultPortfolioName = "Default Portfolio"
	statusDone           = "TRANSACTION_DONE"
)

var (
	ErrMissingCredentials = errors.New("missing required Prime API credentials: PRIME_ACCESS_KEY, PRIME_PASSPHRASE, PRIME_SIGNING_KEY")
	ErrInvalidTransferId  = errors.New("invalid prime transfer id")
)

// failedStatuses are terminal Prime states that did not move funds.
var failedStatuses = map[string]bool{
	"TRANSACTION_FAILED":    true,
	"TRANSACTION_REJECTED":  true,
	"TRANSACTION_CANCELLED": true,
	"TRANSACTION_EXPIRED":   true,
}

// Service sends transfers as Prime wallet withdrawals to a blockchain
// address. DestinationWalletId of a request is that address.
type Service struct {
	portfoliosSvc   portfolios.PortfoliosService
	transactionsSvc transactions.TransactionsService
	portfolioId     string
	lookback        time.Duration
	now             func() time.Time
}

var _ store.TransferRail = (*Service)(nil)

// NewService builds the rail. When no portfolio id is configured the
// account's default portfolio is looked up.
func NewService(ctx context.Context, cfg models.PrimeConfig, httpClient *http.Client) (*Service, error) {
	if cfg.AccessKey == "" || cfg.Passphrase == "" || cfg.SigningKey == "" {
		return nil, ErrMissingCredentials
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	creds := &credentials.Credentials{
		AccessKey:  cfg.AccessKey,
		Passphrase: cfg.Passphrase,
		SigningKey: cfg.SigningKey,
	}
	restClient := client.NewRestClient(creds, *httpClient)

	s := &Service{
		portfoliosSvc:   portfolios.NewPortfoliosService(restClient),
		transactionsSvc: transactions.NewTransactionsService(restClient),
		portfolioId:     cfg.PortfolioId,
		lookback:        cfg.LookbackWindow,
		now:             time.Now,
	}
	if s.lookback <= 0 {
		s.lookback = 24 * time.Hour
	}

	if s.portfolioId == "" {
		zap.L().Info("Finding default portfolio")
		id, err := s.findDefaultPortfolio(ctx)
		if err != nil {
			return nil, err
		}
		s.portfolioId = id
	}
	zap.L().Info("Using Prime portfolio", zap.String("portfolio_id", s.portfolioId))
	return s, nil
}

func (s *Service) Name() string {
	return RailName
}

func (s *Service) findDefaultPortfolio(ctx context.Context) (string, error) {
	response, err := s.portfoliosSvc.ListPortfolios(ctx, &portfolios.ListPortfoliosRequest{})
	if err != nil {
		return "", fmt.Errorf("unable to list portfolios: %w", err)
	}
	for _, p := range response.Portfolios {
		if p.Name == defaultPortfolioName {
			return p.Id, nil
		}
	}
	return "", fmt.Errorf("default portfolio not found")
}

// SendFunds creates a withdrawal. Prime settles asynchronously, so the
// returned transfer is always PENDING; GetTransfer tracks it afterwards.
func (s *Service) SendFunds(ctx context.Context, req models.TransferRequest) (*models.Transfer, error) {
	symbol := req.Currency
	if symbol == "" {
		symbol = models.DefaultCurrency
	}
	amount := req.Amount.String()

	zap.L().Info("Creating withdrawal via Prime API",
		zap.String("portfolio_id", s.portfolioId),
		zap.String("wallet_id", req.SourceWalletId),
		zap.String("symbol", symbol),
		zap.String("amount", amount),
		zap.String("destination", req.DestinationWalletId))

	response, err := s.transactionsSvc.CreateWalletWithdrawal(ctx, &transactions.CreateWalletWithdrawalRequest{
		PortfolioId:     s.portfolioId,
		SourceWalletId:  req.SourceWalletId,
		Amount:          amount,
		IdempotencyKey:  req.IdempotencyKey,
		Symbol:          symbol,
		DestinationType: "DESTINATION_BLOCKCHAIN",
		BlockchainAddress: &model.BlockchainAddress{
			Address: req.DestinationWalletId,
		},
	})
	if err != nil {
		zap.L().Error("Failed to create withdrawal",
			zap.String("wallet_id", req.SourceWalletId),
			zap.String("amount", amount),
			zap.Error(err))
		return nil, fmt.Errorf("unable to create withdrawal: %w", err)
	}

	withdrawal := models.Withdrawal{
		ActivityId:     response.ActivityId,
		Symbol:         symbol,
		Amount:         amount,
		Destination:    req.DestinationWalletId,
		IdempotencyKey: req.IdempotencyKey,
	}
	zap.L().Info("Withdrawal created successfully",
		zap.String("activity_id", withdrawal.ActivityId),
		zap.String("idempotency_key", withdrawal.IdempotencyKey))

	return &models.Transfer{
		Id:                  encodeTransferId(req.SourceWalletId, req.IdempotencyKey),
		SourceWalletId:      req.SourceWalletId,
		DestinationWalletId: withdrawal.Destination,
		Amount:              req.Amount,
		Currency:            symbol,
		Status:              models.TransferPending,
		CreateDate:          s.now().UTC(),
	}, nil
}

// GetTransfer looks the withdrawal up in the source wallet's recent history
// by idempotency key. Not finding it yet means it is still pending.
func (s *Service) GetTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	walletId, key, err := decodeTransferId(id)
	if err != nil {
		return nil, err
	}

	response, err := s.transactionsSvc.ListWalletTransactions(ctx, &transactions.ListWalletTransactionsRequest{
		PortfolioId: s.portfolioId,
		WalletId:    walletId,
		Start:       s.now().Add(-s.lookback),
		Types:       []string{"WITHDRAWAL"},
		Pagination: &model.PaginationParams{
			Limit: 500,
		},
	})
	if err != nil {
		zap.L().Error("Failed to list wallet transactions",
			zap.String("wallet_id", walletId),
			zap.Error(err))
		return nil, fmt.Errorf("unable to list wallet transactions: %w", err)
	}

	records := make([]walletTransaction, 0, len(response.Transactions))
	for _, tx := range response.Transactions {
		records = append(records, walletTransaction{
			Id:             tx.Id,
			Status:         tx.Status,
			Symbol:         tx.Symbol,
			Amount:         tx.Amount,
			Created:        tx.Created,
			BlockchainIds:  tx.BlockchainIds,
			IdempotencyKey: tx.IdempotencyKey,
		})
	}

	transfer := &models.Transfer{Id: id, SourceWalletId: walletId, Status: models.TransferPending}
	match, ok := findByIdempotencyKey(records, key)
	if !ok {
		zap.L().Debug("Withdrawal not yet visible in wallet history",
			zap.String("wallet_id", walletId),
			zap.String("idempotency_key", key))
		return transfer, nil
	}
	match.fill(transfer)
	return transfer, nil
}

// walletTransaction is the subset of a Prime wallet transaction the rail reads.
type walletTransaction struct {
	Id             string
	Status         string
	Symbol         string
	Amount         string
	Created        time.Time
	BlockchainIds  []string
	IdempotencyKey string
}

func (w walletTransaction) fill(t *models.Transfer) {
	t.Status = transferStatus(w.Status)
	t.Currency = w.Symbol
	t.CreateDate = w.Created
	if amount, err := decimal.NewFromString(w.Amount); err == nil {
		t.Amount = amount.Abs()
	}
	if len(w.BlockchainIds) > 0 {
		t.TxHash = w.BlockchainIds[0]
	}
}

func findByIdempotencyKey(txs []walletTransaction, key string) (walletTransaction, bool) {
	for _, tx := range txs {
		if tx.IdempotencyKey == key {
			return tx, true
		}
	}
	return walletTransaction{}, false
}

func transferStatus(primeStatus string) models.TransferStatus {
	switch {
	case primeStatus == statusDone:
		return models.TransferComplete
	case failedStatuses[primeStatus]:
		return models.TransferFailed
	}
	return models.TransferRunning
}

// Transfer ids carry the source wallet so the rail can poll without extra state.
func encodeTransferId(walletId, idempotencyKey string) string {
	return walletId + ":" + idempotencyKey
}

func decodeTransferId(id string) (string, string, error) {
	walletId, key, ok := strings.Cut(id, ":")
	if !ok || walletId == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTransferId, id)
	}
	return walletId, key, nil
}
