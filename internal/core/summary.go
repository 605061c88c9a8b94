package core

import "github.com/shopspring/decimal"

// Derived views. Never persisted, recomputed from the store collections.

// TransactionDetails is a transaction with its account and category
// resolved from the local caches. Account is never nil: an unresolvable
// id yields the UnknownAccount sentinel instead.
type TransactionDetails struct {
	Transaction
	AccountDetail  Account   `json:"account_detail"`
	CategoryDetail *Category `json:"category_detail"`
}

// UnknownAccount is the sentinel used when a transaction references an
// account missing from the local cache. The id is preserved.
func UnknownAccount(id int64) Account {
	return Account{ID: id, Name: "Unknown Account", Balance: "0.00"}
}

// CategoryTotal is a category with the summed amount and record count of
// the transactions attributed to it inside a filtered window.
type CategoryTotal struct {
	Category
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// DashboardMetrics is the compact summary the dashboard renders.
type DashboardMetrics struct {
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetWorth         decimal.Decimal `json:"net_worth"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses  decimal.Decimal `json:"monthly_expenses"`
	MonthlyCashFlow  decimal.Decimal `json:"monthly_cash_flow"`
}
