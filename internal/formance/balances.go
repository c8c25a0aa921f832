package formance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetUserBalance returns the mirrored balance of users:{userId}. Since the
// opening balance is not posted, this is the net of mirrored activity.
func (s *Service) GetUserBalance(ctx context.Context, userId, currency string) (decimal.Decimal, error) {
	vols, err := s.userVolumes(ctx, userId)
	if err != nil {
		return decimal.Zero, err
	}
	return bigIntToDecimal(volumeBalance(vols, formanceAsset(currency)), currency), nil
}

// GetUserBalances returns every mirrored asset balance of users:{userId},
// keyed by currency symbol. An account with no postings yields an empty map.
func (s *Service) GetUserBalances(ctx context.Context, userId string) (map[string]decimal.Decimal, error) {
	vols, err := s.userVolumes(ctx, userId)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(vols))
	for fAsset := range vols {
		symbol := assetSymbol(fAsset)
		out[symbol] = bigIntToDecimal(volumeBalance(vols, fAsset), symbol)
	}
	return out, nil
}

func (s *Service) userVolumes(ctx context.Context, userId string) (map[string]shared.V2Volume, error) {
	address := userAccount(userId)
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		// Unknown accounts are reported as not found until their first posting.
		var apiErr *sdkerrors.V2ErrorResponse
		if errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumNotFound {
			return nil, nil
		}
		zap.L().Warn("Failed to read ledger account", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("unable to read ledger account %s: %w", address, err)
	}
	return resp.V2AccountResponse.Data.Volumes, nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// bigIntToDecimal converts a *big.Int in smallest-unit to a human-readable decimal.
func bigIntToDecimal(raw *big.Int, symbol string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(precisionFor(symbol)))
}

// assetSymbol extracts the symbol from a Formance asset like "USDC/6".
func assetSymbol(fAsset string) string {
	symbol, _, _ := strings.Cut(fAsset, "/")
	return symbol
}
