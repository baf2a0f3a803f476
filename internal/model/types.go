// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// TransactionType indicates whether money flows in or out. Categories carry
// the same type so they can be offered for matching transactions only.
type TransactionType string

const (
	// TypeIncome represents money received.
	TypeIncome TransactionType = "income"
	// TypeExpense represents money spent.
	TypeExpense TransactionType = "expense"
)

// IsValid reports whether t is one of the known types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType converts user input such as "Income" into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q (must be income or expense)", ErrInvalidType, s)
	}
	return t, nil
}

// TransactionTypes returns all valid types in display order.
func TransactionTypes() []TransactionType {
	return []TransactionType{TypeIncome, TypeExpense}
}
