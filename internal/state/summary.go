package state

import (
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

// TrendMonths is how many calendar months the spending trend covers.
const TrendMonths = 6

const trendLayout = "Jan '06"

// Summarize derives the dashboard and audit figures from the current state.
func Summarize(s *models.AppState, now time.Time) models.Summary {
	sum := models.Summary{
		TotalMonthlyCost: decimal.Zero,
		CategorySpending: map[string]decimal.Decimal{},
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
	}

	for i := range s.Subscriptions {
		sub := s.Subscriptions[i]
		if sub.Status != models.SubscriptionActive {
			continue
		}
		sum.ActiveSubscriptions++
		cost := sub.MonthlyCost()
		sum.TotalMonthlyCost = sum.TotalMonthlyCost.Add(cost)
		sum.CategorySpending[sub.Category] = sum.CategorySpending[sub.Category].Add(cost)

		if sub.NextPayment.IsZero() {
			continue
		}
		if sum.UpcomingPayment == nil || sub.NextPayment.Before(sum.UpcomingPayment.NextPayment) {
			next := sub
			sum.UpcomingPayment = &next
		}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(TrendMonths - 1), 0)
	monthly := make(map[string]decimal.Decimal, TrendMonths)
	for _, tx := range s.Transactions {
		if tx.Status != models.StatusCompleted {
			continue
		}
		switch tx.Type {
		case models.TransactionDeposit, models.TransactionRefund:
			sum.TotalIncome = sum.TotalIncome.Add(tx.Amount)
		case models.TransactionPayment, models.TransactionTransfer:
			sum.TotalExpense = sum.TotalExpense.Add(tx.Amount)
			if !tx.Timestamp.In(now.Location()).Before(start) {
				key := tx.Timestamp.In(now.Location()).Format(trendLayout)
				monthly[key] = monthly[key].Add(tx.Amount)
			}
		}
	}

	sum.SpendingTrend = make([]models.SpendingPoint, 0, TrendMonths)
	for i := 0; i < TrendMonths; i++ {
		key := start.AddDate(0, i, 0).Format(trendLayout)
		sum.SpendingTrend = append(sum.SpendingTrend, models.SpendingPoint{Month: key, Amount: monthly[key]})
	}
	return sum
}
