package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DateLayout is the fixed, second precision layout of transaction dates.
const DateLayout = "2006-01-02 15:04:05"

// Bounds of a money value: at most MaxAmountScale fractional digits and
// MaxAmountDigits integer digits.
const (
	MaxAmountScale  = 8
	MaxAmountDigits = 20
)

// TransactionType is the direction of a balance movement.
type TransactionType string

// Supported transaction types.
const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

var (
	// ErrNoActiveSession indicates that ledger operations were requested without a logged in user.
	ErrNoActiveSession = errors.New("no user logged in")
	// ErrCorruptData indicates that the persisted document could not be parsed and was reset.
	ErrCorruptData = errors.New("data file is corrupted, data has been reset")
	// ErrPersistenceWrite indicates that changes were kept in memory but could not be saved.
	ErrPersistenceWrite = errors.New("failed to save data, changes may be lost on restart")
)

// Transaction holds a single income or expense record.
type Transaction struct {
	ID       string          `json:"id,omitempty"`
	Date     string          `json:"date"`
	Type     TransactionType `json:"type"`
	Amount   decimal.Decimal `json:"amount"` // always positive
	Category string          `json:"category"`
}

// Signed returns the transaction effect on the balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Income {
		return t.Amount
	}

	return t.Amount.Neg()
}

// AmountInRange reports whether d fits the money bounds. Only the exponent
// and the coefficient are inspected, so any parsed value is checked cheaply.
func AmountInRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())

	return exp >= -MaxAmountScale && exp+int64(d.NumDigits()) <= MaxAmountDigits
}

// Criterion describes a displayed transaction row to be matched by value.
type Criterion struct {
	Date     string          `json:"date" binding:"required"`
	Type     TransactionType `json:"type" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category" binding:"required"`
}

// Matches reports whether all four fields of t equal the criterion.
func (c Criterion) Matches(t Transaction) bool {
	return t.Date == c.Date &&
		t.Type == c.Type &&
		t.Amount.Equal(c.Amount) &&
		t.Category == c.Category
}

// CreateTransactionParams is the input data to add a transaction.
type CreateTransactionParams struct {
	Type     TransactionType `validate:"required,oneof=Income Expense"`
	Amount   string          `validate:"required"`
	Category string          `validate:"required"`
}
