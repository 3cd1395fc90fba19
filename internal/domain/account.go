// Package domain provides defenitions of all entities.
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and balances are persisted as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail indicates that the account with the given email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates that the email is unknown or the password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrValidation indicates an empty or malformed input field.
	ErrValidation = errors.New("invalid input")
)

// Account holds user identity, credential, balance and transaction history.
//
// Transactions are ordered most recent first. Balance always equals the
// signed sum of the transactions amounts.
type Account struct {
	Email        string          `json:"-"`
	Name         string          `json:"name"`
	Password     string          `json:"password"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

// Copy returns a deep copy of the account.
func (a Account) Copy() Account {
	c := a
	c.Transactions = make([]Transaction, len(a.Transactions))
	copy(c.Transactions, a.Transactions)

	return c
}

// SignedSum returns the balance implied by the account transactions.
func (a Account) SignedSum() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range a.Transactions {
		sum = sum.Add(t.Signed())
	}

	return sum
}

// AccountWithoutPassword is Account data excluding the credential.
type AccountWithoutPassword struct {
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

// NewAccountWithoutPassword returns account with removed sensitive data.
func NewAccountWithoutPassword(a Account) AccountWithoutPassword {
	c := a.Copy()

	return AccountWithoutPassword{
		Email:        c.Email,
		Name:         c.Name,
		Balance:      c.Balance,
		Transactions: c.Transactions,
	}
}

// Directory maps account emails to accounts.
type Directory map[string]*Account

// CreateAccountParams is the input data to register an account.
type CreateAccountParams struct {
	Email    string `validate:"required"`
	Name     string `validate:"required"`
	Password string `validate:"required"`
}

// CredentialsParams is the input data to authenticate an account.
type CredentialsParams struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}
