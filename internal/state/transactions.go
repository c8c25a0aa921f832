package state

import (
	"sort"
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

// BalanceEffect is the signed contribution of a transaction to the balance.
// Only completed transactions count.
func BalanceEffect(tx models.Transaction) decimal.Decimal {
	if tx.Status != models.StatusCompleted {
		return decimal.Zero
	}
	switch tx.Type {
	case models.TransactionDeposit, models.TransactionRefund:
		return tx.Amount
	case models.TransactionPayment, models.TransactionTransfer:
		return tx.Amount.Neg()
	}
	return decimal.Zero
}

// Fold sums the balance effect of every transaction, per currency.
func Fold(txs []models.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		cur := currencyOf(tx.Currency)
		totals[cur] = totals[cur].Add(BalanceEffect(tx))
	}
	return totals
}

// RecomputeBalances sets the user's balances to opening + fold. It is the
// only place balances are written.
func RecomputeBalances(s *models.AppState) {
	if s.User == nil {
		return
	}
	folded := Fold(s.Transactions)
	balances := make(map[string]decimal.Decimal, len(folded)+len(s.OpeningBalances))
	for cur, opening := range s.OpeningBalances {
		balances[cur] = opening
	}
	for cur, sum := range folded {
		balances[cur] = balances[cur].Add(sum)
	}
	if _, ok := balances[models.DefaultCurrency]; !ok {
		balances[models.DefaultCurrency] = decimal.Zero
	}
	s.User.Balances = balances
}

// LoadHistory installs a fetched history and derives the opening balance
// so that opening + fold reproduces the balance the backend reported.
func LoadHistory(s *models.AppState, user *models.User, txs []models.Transaction) {
	s.User = user
	s.Transactions = append([]models.Transaction(nil), txs...)
	SortTransactions(s.Transactions)

	folded := Fold(s.Transactions)
	s.OpeningBalances = make(map[string]decimal.Decimal)
	if user != nil {
		for cur, reported := range user.Balances {
			s.OpeningBalances[cur] = reported.Sub(folded[cur])
		}
	}
	RecomputeBalances(s)
}

// SortTransactions orders newest first; equal timestamps keep insertion order.
func SortTransactions(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
}

// NewTransaction materializes a draft with a generated id and hash.
func NewTransaction(draft models.TransactionDraft, timestamp time.Time) models.Transaction {
	return models.Transaction{
		Id:          NewId("txn"),
		Type:        draft.Type,
		Status:      draft.Status,
		Amount:      draft.Amount,
		Currency:    currencyOf(draft.Currency),
		Description: draft.Description,
		Timestamp:   timestamp,
		TxId:        NewTxHash(),
		Category:    draft.Category,
		Notes:       draft.Notes,
		TransferId:  draft.TransferId,
	}
}

// AddTransaction records a single transaction at timestamp (or now when
// zero) and keeps the list sorted.
func AddTransaction(s *models.AppState, draft models.TransactionDraft, timestamp, now time.Time) models.Transaction {
	if timestamp.IsZero() {
		timestamp = now
	}
	tx := NewTransaction(draft, timestamp)
	s.Transactions = append([]models.Transaction{tx}, s.Transactions...)
	SortTransactions(s.Transactions)
	RecomputeBalances(s)
	return tx
}

// ImportTransactions appends drafts in bulk. Imported history becomes the
// authoritative source, so the opening balance is dropped and the balance
// is the plain fold of all transactions.
func ImportTransactions(s *models.AppState, drafts []models.TransactionDraft, now time.Time) []models.Transaction {
	added := make([]models.Transaction, 0, len(drafts))
	for _, d := range drafts {
		ts := d.Timestamp
		if ts.IsZero() {
			ts = now
		}
		added = append(added, NewTransaction(d, ts))
	}
	s.Transactions = append(s.Transactions, added...)
	SortTransactions(s.Transactions)
	s.OpeningBalances = map[string]decimal.Decimal{}
	RecomputeBalances(s)
	return added
}

// FindTransaction returns a pointer into the list, or nil.
func FindTransaction(s *models.AppState, id string) *models.Transaction {
	for i := range s.Transactions {
		if s.Transactions[i].Id == id {
			return &s.Transactions[i]
		}
	}
	return nil
}

// PatchTxHash sets the external hash once it is known.
func PatchTxHash(s *models.AppState, id, hash string) bool {
	tx := FindTransaction(s, id)
	if tx == nil || hash == "" {
		return false
	}
	tx.TxId = hash
	return true
}

func SetNotes(s *models.AppState, id, notes string) bool {
	tx := FindTransaction(s, id)
	if tx == nil {
		return false
	}
	tx.Notes = notes
	return true
}

// SettleTransaction moves a pending transaction to completed or failed.
// Settled transactions are left untouched.
func SettleTransaction(s *models.AppState, id string, status models.TransactionStatus) bool {
	tx := FindTransaction(s, id)
	if tx == nil || tx.Status != models.StatusPending || status == models.StatusPending {
		return false
	}
	tx.Status = status
	RecomputeBalances(s)
	return true
}

// DuePayments lists pending scheduled payments whose date has passed.
// Transfers settle through their rail instead.
func DuePayments(s *models.AppState, now time.Time) []models.Transaction {
	var due []models.Transaction
	for _, tx := range s.Transactions {
		if tx.Type == models.TransactionPayment && tx.Status == models.StatusPending && !tx.Timestamp.After(now) {
			due = append(due, tx)
		}
	}
	return due
}

func currencyOf(c string) string {
	if c == "" {
		return models.DefaultCurrency
	}
	return c
}
