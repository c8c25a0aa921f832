package common

import (
	"fmt"
	"sort"
	"strings"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// ShortId truncates long ids and hashes for tabular output.
func ShortId(id string) string {
	if id == "" {
		return "none"
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}

// SignedAmount renders an amount with the sign its transaction type implies.
func SignedAmount(tx models.Transaction) string {
	switch tx.Type {
	case models.TransactionDeposit, models.TransactionRefund:
		return "+" + tx.Amount.StringFixed(2)
	}
	return "-" + tx.Amount.StringFixed(2)
}

// PrintTransactions prints at most limit transactions as a box-drawn list.
// A limit of zero prints all of them.
func PrintTransactions(txs []models.Transaction, limit int) {
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	for i, tx := range txs {
		isLast := i == len(txs)-1
		fmt.Printf("%s%s  %-28s %12s %-5s %-9s %s\n",
			BoxPrefix(isLast),
			tx.Timestamp.Format("2006-01-02"),
			truncate(tx.Description, 28),
			SignedAmount(tx),
			tx.Currency,
			tx.Status,
			ShortId(tx.TxId))
	}
}

func PrintTransferResult(result *models.TransferResult) {
	if result.Success {
		PrintHeader("TRANSFER SUBMITTED", DefaultWidth)
	} else {
		PrintHeader("TRANSFER FAILED", DefaultWidth)
	}
	if result.TransactionId != "" {
		fmt.Printf("Transaction:  %s\n", result.TransactionId)
	}
	if result.TransferId != "" {
		fmt.Printf("Transfer:     %s\n", result.TransferId)
	}
	if result.Status != "" {
		fmt.Printf("Status:       %s\n", result.Status)
	}
	if result.TxHash != "" {
		fmt.Printf("Tx hash:      %s\n", result.TxHash)
	}
	if !result.Amount.IsZero() {
		fmt.Printf("Amount:       %s\n", result.Amount.StringFixed(2))
	}
	if result.Success {
		fmt.Printf("New balance:  %s\n", result.NewBalance.StringFixed(2))
	}
	if result.Error != "" {
		fmt.Printf("Error:        %s\n", result.Error)
	}
	PrintSeparator("=", DefaultWidth)
}

func PrintSummary(summary models.Summary) {
	fmt.Printf("Active subscriptions: %d\n", summary.ActiveSubscriptions)
	fmt.Printf("Monthly cost:         %s\n", summary.TotalMonthlyCost.StringFixed(2))
	if summary.UpcomingPayment != nil {
		fmt.Printf("Next payment:         %s on %s\n",
			summary.UpcomingPayment.Name,
			summary.UpcomingPayment.NextPayment.Format("2006-01-02"))
	}
	fmt.Printf("Total income:         %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Printf("Total expense:        %s\n", summary.TotalExpense.StringFixed(2))

	if len(summary.CategorySpending) > 0 {
		fmt.Println("\n┌─ Spending by category")
		PrintAmounts(summary.CategorySpending)
	}
	if len(summary.SpendingTrend) > 0 {
		fmt.Println("\n┌─ Monthly spend")
		for i, p := range summary.SpendingTrend {
			fmt.Printf("%s%-15s: %12s\n", BoxPrefix(i == len(summary.SpendingTrend)-1), p.Month, p.Amount.StringFixed(2))
		}
	}
}

// PrintAmounts prints a label to amount map in label order.
func PrintAmounts(amounts map[string]decimal.Decimal) {
	labels := make([]string, 0, len(amounts))
	for label := range amounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for i, label := range labels {
		fmt.Printf("%s%-15s: %12s\n", BoxPrefix(i == len(labels)-1), label, amounts[label].StringFixed(2))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
