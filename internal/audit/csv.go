// Package audit moves transaction history in and out of CSV files.
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNothingToExport = errors.New("no transactions to export")
	ErrMissingHeaders  = errors.New("csv file is missing required headers")
	ErrNoValidRows     = errors.New("no valid transactions found")
	ErrDuplicateFile   = errors.New("file was already imported")
	ErrUnreadable      = errors.New("failed to parse csv file")
)

// UserMessage maps an audit error to the text shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNothingToExport):
		return "No transactions to export."
	case errors.Is(err, ErrMissingHeaders):
		return "CSV file is missing required headers."
	case errors.Is(err, ErrNoValidRows):
		return "No valid transactions found in the file."
	case errors.Is(err, ErrDuplicateFile):
		return "This seems to be the same file you imported last."
	}
	return "Failed to parse CSV file."
}

// ExportColumns is the header row written by Export, in order.
var ExportColumns = []string{"id", "timestamp", "type", "description", "amount", "currency", "status", "category", "txId", "notes"}

// RequiredColumns must all be present in an imported header row.
var RequiredColumns = []string{"timestamp", "description", "amount", "type", "category"}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// accepted import timestamp layouts, most specific first
var importLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Export writes txs, newest first, as CSV.
func Export(w io.Writer, txs []models.Transaction) error {
	if len(txs) == 0 {
		return ErrNothingToExport
	}

	sorted := append([]models.Transaction(nil), txs...)
	sortNewestFirst(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, tx := range sorted {
		row := []string{
			tx.Id,
			tx.Timestamp.UTC().Format(timestampLayout),
			string(tx.Type),
			tx.Description,
			tx.Amount.String(),
			tx.Currency,
			string(tx.Status),
			tx.Category,
			tx.TxId,
			tx.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", tx.Id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Hash returns the hex SHA-256 digest of a file's raw bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Parse reads transaction drafts from CSV. Rows with an unreadable date,
// amount, type or status are skipped and counted.
func Parse(data []byte) ([]models.TransactionDraft, int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, 0, ErrMissingHeaders
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, ErrMissingHeaders
		}
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		drafts  []models.TransactionDraft
		skipped int
		line    = 1
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			zap.L().Warn("Skipping unreadable CSV row", zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}
		if isBlank(row) {
			continue
		}

		draft, err := parseRow(field, row)
		if err != nil {
			zap.L().Warn("Skipping CSV row", zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}
		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, skipped, ErrNoValidRows
	}
	return drafts, skipped, nil
}

func parseRow(field func([]string, string) string, row []string) (models.TransactionDraft, error) {
	ts, err := parseTimestamp(field(row, "timestamp"))
	if err != nil {
		return models.TransactionDraft{}, err
	}
	amount, err := decimal.NewFromString(field(row, "amount"))
	if err != nil {
		return models.TransactionDraft{}, fmt.Errorf("invalid amount %q", field(row, "amount"))
	}

	txType := models.TransactionType(field(row, "type"))
	switch txType {
	case "":
		txType = models.TransactionPayment
	case models.TransactionPayment, models.TransactionRefund, models.TransactionTransfer, models.TransactionDeposit:
	default:
		return models.TransactionDraft{}, fmt.Errorf("invalid type %q", txType)
	}

	status := models.TransactionStatus(field(row, "status"))
	switch status {
	case "":
		status = models.StatusCompleted
	case models.StatusCompleted, models.StatusPending, models.StatusFailed:
	default:
		return models.TransactionDraft{}, fmt.Errorf("invalid status %q", status)
	}

	return models.TransactionDraft{
		Type:        txType,
		Status:      status,
		Amount:      amount,
		Currency:    models.DefaultCurrency,
		Description: field(row, "description"),
		Category:    field(row, "category"),
		Notes:       field(row, "notes"),
		Timestamp:   ts,
	}, nil
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range importLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", v)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sortNewestFirst(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
}
