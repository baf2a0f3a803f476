package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the format of Transaction.Date for records created here.
// Records imported from elsewhere keep whatever text they arrived with.
const DateLayout = "2006-01-02 15:04:05"

// Transaction is a single income or expense entry.
//
// Category holds a copy of the category name at the time it was assigned,
// not a reference; renaming or deleting the category does not follow it.
type Transaction struct {
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Amount   Amount          `json:"amount"`
	Date     string          `json:"date"`
	ID       int64           `json:"id"`
}

// TransactionDraft is the input for creating a transaction.
type TransactionDraft struct {
	Type     TransactionType
	Category string
	Amount   string
}

// Validate performs the presence checks required before a draft is recorded.
func (d TransactionDraft) Validate() error {
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidTransaction, ErrInvalidType, d.Type)
	}
	if strings.TrimSpace(d.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidTransaction)
	}
	if _, err := ParseAmount(d.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return nil
}

// Build turns a validated draft into a record.
func (d TransactionDraft) Build(id int64, createdAt time.Time) (Transaction, error) {
	if err := d.Validate(); err != nil {
		return Transaction{}, err
	}
	amount, _ := ParseAmount(d.Amount)
	return Transaction{
		ID:       id,
		Type:     d.Type,
		Category: strings.TrimSpace(d.Category),
		Amount:   amount,
		Date:     createdAt.Format(DateLayout),
	}, nil
}

// TransactionPatch overwrites the non-nil fields of a transaction.
// ID and Date cannot be patched.
type TransactionPatch struct {
	Type     *TransactionType
	Category *string
	Amount   *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Type == nil && p.Category == nil && p.Amount == nil
}

// Apply returns a copy of t with the patch applied.
func (p TransactionPatch) Apply(t Transaction) (Transaction, error) {
	if p.Type != nil {
		if !p.Type.IsValid() {
			return t, fmt.Errorf("%w: %w %q", ErrInvalidTransaction, ErrInvalidType, *p.Type)
		}
		t.Type = *p.Type
	}
	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		if category == "" {
			return t, fmt.Errorf("%w: category is required", ErrInvalidTransaction)
		}
		t.Category = category
	}
	if p.Amount != nil {
		amount, err := ParseAmount(*p.Amount)
		if err != nil {
			return t, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
		}
		t.Amount = amount
	}
	return t, nil
}
