package model

import "errors"

// Validation errors. Callers match them with errors.Is.
var (
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEmptyCategoryName  = errors.New("category name cannot be empty")
	ErrDuplicateCategory  = errors.New("category already exists")
	ErrCategoryInUse      = errors.New("category in use")
)
