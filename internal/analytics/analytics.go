// Package analytics derives cross-entity views from the store
// collections: detail-joined transactions, period windows, category
// totals and the dashboard metrics. Everything here is pure computation;
// no network calls, no mutation of the inputs.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// Period is the time-window predicate applied before aggregation.
type Period string

const (
	PeriodAll     Period = "all"
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodCustom  Period = "custom"
)

// PopulateDetails resolves each transaction's account and category from
// the local caches. The account falls back to the UnknownAccount sentinel
// when the referenced id is missing; the category stays nil when the
// transaction has none.
func PopulateDetails(txs []core.Transaction, accounts []core.Account, categories []core.Category) []core.TransactionDetails {
	accountsByID := make(map[int64]core.Account, len(accounts))
	for _, a := range accounts {
		accountsByID[a.ID] = a
	}
	categoriesByID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		categoriesByID[c.ID] = c
	}

	out := make([]core.TransactionDetails, 0, len(txs))
	for _, tx := range txs {
		detail := core.TransactionDetails{Transaction: tx}

		if account, ok := accountsByID[tx.Account]; ok {
			detail.AccountDetail = account
		} else {
			detail.AccountDetail = core.UnknownAccount(tx.Account)
		}

		if tx.Category != nil {
			if category, ok := categoriesByID[*tx.Category]; ok {
				detail.CategoryDetail = &category
			}
		}

		out = append(out, detail)
	}
	return out
}

// FilterByPeriod returns the subset of transactions whose date falls in
// the window the period describes, evaluated against the current
// wall-clock date. Custom windows take an inclusive start and an end
// extended to the last instant of that day.
func FilterByPeriod(txs []core.Transaction, period Period, start, end time.Time) []core.Transaction {
	return filterByPeriodAt(txs, period, start, end, time.Now())
}

func filterByPeriodAt(txs []core.Transaction, period Period, start, end, now time.Time) []core.Transaction {
	if period == PeriodAll {
		return append([]core.Transaction(nil), txs...)
	}

	from, to, ok := periodWindow(period, start, end, now)
	if !ok {
		return append([]core.Transaction(nil), txs...)
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		d := tx.Date.Time
		if d.IsZero() {
			continue
		}
		if !d.Before(from) && !d.After(to) {
			out = append(out, tx)
		}
	}
	return out
}

// periodWindow computes the inclusive [from, to] window for a period.
// Weeks start on Sunday; everything is locale-naive.
func periodWindow(period Period, start, end, now time.Time) (time.Time, time.Time, bool) {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
	}

	switch period {
	case PeriodDaily:
		return day(now), endOfDay(now), true
	case PeriodWeekly:
		weekStart := day(now).AddDate(0, 0, -int(now.Weekday()))
		return weekStart, endOfDay(weekStart.AddDate(0, 0, 6)), true
	case PeriodMonthly:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, endOfDay(monthStart.AddDate(0, 1, -1)), true
	case PeriodYearly:
		yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return yearStart, endOfDay(time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location())), true
	case PeriodCustom:
		if start.IsZero() || end.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		return day(start), endOfDay(end), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// AggregateByCategory groups the given transactions by category id,
// summing amounts and counting records, sorted descending by total.
// Transactions without a category are excluded.
func AggregateByCategory(txs []core.Transaction, categories []core.Category) []core.CategoryTotal {
	categoriesByID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		categoriesByID[c.ID] = c
	}

	totals := make(map[int64]*core.CategoryTotal)
	order := make([]int64, 0)
	for _, tx := range txs {
		if tx.Category == nil {
			continue
		}
		id := *tx.Category
		entry, ok := totals[id]
		if !ok {
			category, known := categoriesByID[id]
			if !known {
				category = core.Category{ID: id}
			}
			entry = &core.CategoryTotal{Category: category}
			totals[id] = entry
			order = append(order, id)
		}
		entry.Total = entry.Total.Add(core.AmountOrZero(tx.Amount))
		entry.Count++
	}

	out := make([]core.CategoryTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// Metrics computes the dashboard summary: assets, liabilities and net
// worth from the account balances, plus income, expenses and cash flow
// over the current calendar month.
func Metrics(accounts []core.Account, txs []core.Transaction, categories []core.Category) core.DashboardMetrics {
	return metricsAt(accounts, txs, categories, time.Now())
}

func metricsAt(accounts []core.Account, txs []core.Transaction, categories []core.Category, now time.Time) core.DashboardMetrics {
	var m core.DashboardMetrics

	for _, a := range accounts {
		balance := core.AmountOrZero(a.Balance)
		if balance.IsNegative() {
			m.TotalLiabilities = m.TotalLiabilities.Add(balance.Abs())
		} else {
			m.TotalAssets = m.TotalAssets.Add(balance)
		}
	}
	m.NetWorth = m.TotalAssets.Sub(m.TotalLiabilities)

	categoriesByID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		categoriesByID[c.ID] = c
	}

	for _, tx := range filterByPeriodAt(txs, PeriodMonthly, time.Time{}, time.Time{}, now) {
		amount := core.AmountOrZero(tx.Amount)
		if classifyIncome(tx, categoriesByID, amount) {
			m.MonthlyIncome = m.MonthlyIncome.Add(amount.Abs())
		} else {
			m.MonthlyExpenses = m.MonthlyExpenses.Add(amount.Abs())
		}
	}
	m.MonthlyCashFlow = m.MonthlyIncome.Sub(m.MonthlyExpenses)

	return m
}

// classifyIncome decides whether a transaction counts as income: the
// resolved category's type wins, the amount's sign breaks ties for
// uncategorized records.
func classifyIncome(tx core.Transaction, categoriesByID map[int64]core.Category, amount decimal.Decimal) bool {
	if tx.Category != nil {
		if category, ok := categoriesByID[*tx.Category]; ok {
			return category.Type == core.Income
		}
	}
	return amount.IsPositive()
}
