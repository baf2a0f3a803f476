package model

import (
	"fmt"
	"strings"
)

// Category groups transactions of one type under a user-chosen name.
type Category struct {
	Name string          `json:"name"`
	Type TransactionType `json:"type"`
	ID   int64           `json:"id"`
}

// CategoryDraft is the input for creating a category.
type CategoryDraft struct {
	Name string
	Type TransactionType
}

// Normalize trims the name.
func (d CategoryDraft) Normalize() CategoryDraft {
	d.Name = strings.TrimSpace(d.Name)
	return d
}

// Validate performs presence checks. Uniqueness is checked by the ledger.
func (d CategoryDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyCategoryName
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidCategory, ErrInvalidType, d.Type)
	}
	return nil
}

// SameName reports whether two category names collide (case-insensitive, trimmed).
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// DefaultCategories returns the categories used when none have been stored yet.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Salary", Type: TypeIncome},
		{ID: 2, Name: "Freelance", Type: TypeIncome},
		{ID: 3, Name: "Food", Type: TypeExpense},
		{ID: 4, Name: "Transport", Type: TypeExpense},
	}
}
