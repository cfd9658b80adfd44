// Package ledger turns flat referral transaction lists into per-day
// earnings summaries.
package ledger

import (
	"sort"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/shopspring/decimal"
)

// DayLayout is the layout of a day group key
const DayLayout = "2006-01-02"

// Options controls which transactions take part in aggregation
type Options struct {
	// ExcludeCancelled drops cancelled transactions before grouping. When
	// false a cancelled row is counted and summed, and its day is "mixed".
	ExcludeCancelled bool
}

// DayKey returns the calendar date portion of t in the zone t carries.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay validates a YYYY-MM-DD day key.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DayLayout, day)
}

// AggregateDaily groups txns by day and returns one summary per day,
// most recent day first. Members keep their input order.
func AggregateDaily(txns []*models.ReferralTransaction, opts Options) []models.DailyEarningsSummary {
	groups := make(map[string]*models.DailyEarningsSummary)
	var order []string

	for _, t := range txns {
		if t == nil {
			continue
		}
		if opts.ExcludeCancelled && t.Status == models.ReferralCancelled {
			continue
		}
		key := DayKey(t.CreatedAt)
		g, ok := groups[key]
		if !ok {
			g = &models.DailyEarningsSummary{Date: key, Earnings: decimal.Zero}
			groups[key] = g
			order = append(order, key)
		}
		g.ReferralsCount++
		g.Earnings = g.Earnings.Add(t.Amount)
		g.Transactions = append(g.Transactions, t)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))

	out := make([]models.DailyEarningsSummary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.Status = DeriveStatus(g.Transactions)
		out = append(out, *g)
	}
	return out
}

// DeriveStatus applies the three-way rule: all paid, all pending, or mixed.
func DeriveStatus(txns []*models.ReferralTransaction) string {
	if len(txns) == 0 {
		return models.DailyStatusMixed
	}
	allPaid, allPending := true, true
	for _, t := range txns {
		if t.Status != models.ReferralPaidToReferrer {
			allPaid = false
		}
		if t.Status != models.ReferralPendingPayment {
			allPending = false
		}
	}
	switch {
	case allPaid:
		return string(models.ReferralPaidToReferrer)
	case allPending:
		return string(models.ReferralPendingPayment)
	default:
		return models.DailyStatusMixed
	}
}

// Total sums the amounts of txns.
func Total(txns []*models.ReferralTransaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// Pending returns the members of txns still awaiting payment.
func Pending(txns []*models.ReferralTransaction) []*models.ReferralTransaction {
	var out []*models.ReferralTransaction
	for _, t := range txns {
		if t.Status == models.ReferralPendingPayment {
			out = append(out, t)
		}
	}
	return out
}
