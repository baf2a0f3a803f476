package model

import "github.com/shopspring/decimal"

// Summary holds aggregate totals over a set of transactions.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
	Count        int
}

// CategoryTotal is the sum of transactions filed under one category.
type CategoryTotal struct {
	Name  string
	Type  TransactionType
	Total decimal.Decimal
	Count int
}
