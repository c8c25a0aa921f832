package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"loopwise-go/internal/api"
	"loopwise-go/internal/common"
	"loopwise-go/internal/config"
	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type transferRequest struct {
	email     string
	password  string
	recipient string
	amount    decimal.Decimal
	notes     string
	book      string
	wait      time.Duration
	reconcile bool
}

func parseAndValidateFlags() (*transferRequest, error) {
	emailFlag := flag.String("email", "", "Account email (required)")
	passwordFlag := flag.String("password", "", "Account password")
	toFlag := flag.String("to", "", "Recipient name from the address book, or a wallet id")
	amountFlag := flag.String("amount", "", "Amount of USDC to send")
	notesFlag := flag.String("notes", "", "Optional note stored on the transaction")
	bookFlag := flag.String("book", "", "Optional path to recipients.yaml")
	waitFlag := flag.Duration("wait", 0, "Poll the rail until the transfer settles or this long has passed")
	reconcileFlag := flag.Bool("reconcile", false, "Only reconcile journaled pending transfers against the rail")
	flag.Parse()

	if *emailFlag == "" {
		return nil, fmt.Errorf("--email is required")
	}

	req := &transferRequest{
		email:     *emailFlag,
		password:  *passwordFlag,
		notes:     *notesFlag,
		book:      *bookFlag,
		wait:      *waitFlag,
		reconcile: *reconcileFlag,
	}
	if req.reconcile {
		return req, nil
	}

	if *toFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("--to and --amount are required")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	req.amount = amount
	req.recipient = *toFlag

	if req.book != "" {
		book, err := common.LoadAddressBook(req.book)
		if err != nil {
			return nil, err
		}
		req.recipient = common.ResolveRecipient(book, *toFlag)
	}
	return req, nil
}

func printTransferSummary(snapshot models.AppState, req *transferRequest, balance decimal.Decimal) {
	common.PrintHeader("TRANSFER REQUEST", common.DefaultWidth)
	fmt.Printf("User:              %s (%s)\n", snapshot.User.DisplayName, snapshot.User.Email)
	fmt.Printf("Source wallet:     %s\n", snapshot.User.WalletId)
	fmt.Printf("Recipient:         %s\n", req.recipient)
	fmt.Printf("Current Balance:   %s %s\n", balance.StringFixed(2), models.DefaultCurrency)
	fmt.Printf("Transfer Amount:   %s %s\n", req.amount.StringFixed(2), models.DefaultCurrency)
	fmt.Printf("Remaining Balance: %s %s\n", balance.Sub(req.amount).StringFixed(2), models.DefaultCurrency)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

func reconcile(ctx context.Context, controller *api.Controller) models.SettlementReport {
	report, err := controller.ReconcilePendingTransfers(ctx)
	if err != nil {
		zap.L().Fatal("Failed to reconcile transfers", zap.Error(err))
	}
	return report
}

// waitForSettlement polls until nothing is pending or the deadline passes.
func waitForSettlement(ctx context.Context, controller *api.Controller, wait time.Duration) models.SettlementReport {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var total models.SettlementReport
	for {
		report, err := controller.ReconcilePendingTransfers(ctx)
		if err != nil {
			zap.L().Warn("Reconciliation pass failed", zap.Error(err))
			return total
		}
		total.TransfersCompleted += report.TransfersCompleted
		total.TransfersFailed += report.TransfersFailed
		total.TransfersPending = report.TransfersPending
		if report.TransfersPending == 0 {
			return total
		}

		select {
		case <-ctx.Done():
			return total
		case <-ticker.C:
		}
	}
}

func printReport(report models.SettlementReport) {
	fmt.Printf("Completed: %d  Failed: %d  Still pending: %d\n",
		report.TransfersCompleted, report.TransfersFailed, report.TransfersPending)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if req.reconcile {
		common.PrintHeader("PENDING TRANSFER RECONCILIATION", common.DefaultWidth)
		printReport(reconcile(ctx, services.Controller))
		common.PrintSeparator("=", common.DefaultWidth)
		return
	}

	if err := services.Controller.Login(ctx, req.email, req.password); err != nil {
		zap.L().Fatal("Login failed", zap.String("email", req.email), zap.Error(err))
	}

	balance, err := services.Controller.Balance(models.DefaultCurrency)
	if err != nil {
		zap.L().Fatal("Failed to read balance", zap.Error(err))
	}
	printTransferSummary(services.Controller.Snapshot(), req, balance)

	zap.L().Info("Starting transfer",
		zap.String("email", req.email),
		zap.String("recipient", req.recipient),
		zap.String("amount", req.amount.String()))

	result, err := services.Controller.SendFunds(ctx, models.SendFundsRequest{
		RecipientId: req.recipient,
		Amount:      req.amount,
		Notes:       req.notes,
	})
	if err != nil {
		zap.L().Fatal("Transfer could not be attempted", zap.Error(err))
	}
	common.PrintTransferResult(result)
	if !result.Success {
		zap.L().Fatal("Transfer failed", zap.String("error", result.Error))
	}

	if req.wait > 0 && result.Status != models.TransferComplete {
		fmt.Printf("\nWaiting up to %s for the transfer to settle...\n", req.wait)
		printReport(waitForSettlement(ctx, services.Controller, req.wait))
	}

	zap.L().Info("Transfer finished",
		zap.String("transaction_id", result.TransactionId),
		zap.String("status", string(result.Status)))
}
