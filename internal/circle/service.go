/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package circle is the Circle wallet-to-wallet transfer rail.
package circle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	RailName = "circle"

	transfersPath         = "/v1/transfers"
	defaultFailureMessage = "Failed to initiate transfer."
	maxErrorBody          = 64 << 10
)

var ErrMissingAPIKey = errors.New("circle api key not configured")

// APIError is a non-2xx response from Circle.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Service struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ store.TransferRail = (*Service)(nil)

func NewService(cfg models.CircleConfig, httpClient *http.Client) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

func (s *Service) Name() string {
	return RailName
}

type endpoint struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type transferRequest struct {
	IdempotencyKey string   `json:"idempotencyKey"`
	Source         endpoint `json:"source"`
	Destination    endpoint `json:"destination"`
	Amount         money    `json:"amount"`
}

type transferData struct {
	Id          string                `json:"id"`
	Source      endpoint              `json:"source"`
	Destination endpoint              `json:"destination"`
	Amount      money                 `json:"amount"`
	TxHash      string                `json:"txHash"`
	Status      models.TransferStatus `json:"status"`
	CreateDate  time.Time             `json:"createDate"`
}

type transferResponse struct {
	Data transferData `json:"data"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SendFunds creates a wallet-to-wallet transfer. The amount is sent with two
// decimal places.
func (s *Service) SendFunds(ctx context.Context, req models.TransferRequest) (*models.Transfer, error) {
	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	body := transferRequest{
		IdempotencyKey: req.IdempotencyKey,
		Source:         endpoint{Type: "wallet", Id: req.SourceWalletId},
		Destination:    endpoint{Type: "wallet", Id: req.DestinationWalletId},
		Amount:         money{Amount: req.Amount.StringFixed(2), Currency: currency},
	}

	zap.L().Info("Creating Circle transfer",
		zap.String("idempotency_key", req.IdempotencyKey),
		zap.String("source_wallet_id", req.SourceWalletId),
		zap.String("destination_wallet_id", req.DestinationWalletId),
		zap.String("amount", body.Amount.Amount))

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("unable to encode transfer request: %w", err)
	}

	var resp transferResponse
	if err := s.do(ctx, http.MethodPost, transfersPath, payload, &resp); err != nil {
		zap.L().Error("Circle transfer failed",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Error(err))
		return nil, err
	}

	transfer, err := resp.Data.toModel()
	if err != nil {
		return nil, err
	}
	zap.L().Info("Circle transfer created",
		zap.String("transfer_id", transfer.Id),
		zap.String("status", string(transfer.Status)),
		zap.String("tx_hash", transfer.TxHash))
	return transfer, nil
}

// GetTransfer fetches the current state of a transfer by Circle id.
func (s *Service) GetTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	var resp transferResponse
	if err := s.do(ctx, http.MethodGet, transfersPath+"/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.toModel()
}

func (s *Service) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("unable to build circle request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("circle request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return decodeError(httpResp)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode circle response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: defaultFailureMessage}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}

func (d transferData) toModel() (*models.Transfer, error) {
	amount, err := decimal.NewFromString(d.Amount.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer amount %q: %w", d.Amount.Amount, err)
	}
	return &models.Transfer{
		Id:                  d.Id,
		SourceWalletId:      d.Source.Id,
		DestinationWalletId: d.Destination.Id,
		Amount:              amount,
		Currency:            d.Amount.Currency,
		TxHash:              d.TxHash,
		Status:              d.Status,
		CreateDate:          d.CreateDate,
	}, nil
}
