// Package ledgerservice manages business logic layer of account transactions.
//
// Every operation is scoped to the account of the active session and keeps
// the account balance equal to the signed sum of its transactions.
package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Directory provides the account storage needed by ledger service layer.
type Directory interface {
	Update(ctx context.Context, email string, fn func(acc *domain.Account) error) error
}

// Session provides the active account needed by ledger service layer.
type Session interface {
	Current(ctx context.Context) (domain.Account, error)
}

var errAmountOutOfRange = fmt.Errorf("%w: amount must have at most %d integer and %d fractional digits",
	domain.ErrValidation, domain.MaxAmountDigits, domain.MaxAmountScale)

// Service facilitates ledger service layer logic.
type Service struct {
	directory Directory
	session   Session
	validate  *validator.Validate
	now       func() time.Time
	newID     func() string
}

// Option configures the ledger service.
type Option func(*Service)

// WithClock sets the clock used to date new transactions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New returns ledger service struct to manage transactions bussines logic.
func New(dir Directory, sess Session, opts ...Option) *Service {
	s := &Service{
		directory: dir,
		session:   sess,
		validate:  validator.New(),
		now:       time.Now,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) parseAmount(ctx context.Context, arg domain.CreateTransactionParams) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	if err := s.validate.Struct(arg); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			if ve[0].Tag() == "oneof" {
				return decimal.Zero, fmt.Errorf("%w: type must be Income or Expense", domain.ErrValidation)
			}

			return decimal.Zero, fmt.Errorf("%w: %s is required", domain.ErrValidation, ve[0].Field())
		}

		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(arg.Amount))
	if err != nil {
		l.Info().Err(err).Send()
		return decimal.Zero, fmt.Errorf("%w: amount must be a number", domain.ErrValidation)
	}

	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	if !domain.AmountInRange(amount) {
		return decimal.Zero, errAmountOutOfRange
	}

	return amount, nil
}

// AddTransaction records a new transaction at the front of the account
// history, adjusts the balance and persists the directory.
//
// When only persisting fails the transaction is returned together with
// domain.ErrPersistenceWrite.
func (s *Service) AddTransaction(ctx context.Context, txType domain.TransactionType, amount, category string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	current, err := s.session.Current(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}

	arg := domain.CreateTransactionParams{
		Type:     txType,
		Amount:   amount,
		Category: category,
	}

	parsed, err := s.parseAmount(ctx, arg)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		ID:       s.newID(),
		Date:     s.now().Format(domain.DateLayout),
		Type:     txType,
		Amount:   parsed,
		Category: category,
	}

	err = s.directory.Update(ctx, current.Email, func(acc *domain.Account) error {
		acc.Transactions = append([]domain.Transaction{tx}, acc.Transactions...)
		acc.Balance = acc.Balance.Add(tx.Signed())

		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		return domain.Transaction{}, err
	}

	l.Info().
		Str("email", current.Email).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.String()).
		Msg("transaction added")

	return tx, err
}

// RemoveTransactions removes, for each criterion, the first transaction in
// list order whose date, type, amount and category all match, reverting its
// balance effect. Criteria without a match are skipped. The directory is
// persisted once after the whole batch and the number of removed
// transactions is returned.
//
// Identical transactions cannot be told apart by value; RemoveTransactionsByID
// removes exactly the selected ones.
func (s *Service) RemoveTransactions(ctx context.Context, criteria []domain.Criterion) (int, error) {
	for _, c := range criteria {
		if !domain.AmountInRange(c.Amount) {
			zerolog.Ctx(ctx).Info().Int32("exponent", c.Amount.Exponent()).Msg("criterion amount out of range")
			return 0, errAmountOutOfRange
		}
	}

	return s.remove(ctx, len(criteria), func(txs []domain.Transaction, i int) int {
		for idx, tx := range txs {
			if criteria[i].Matches(tx) {
				return idx
			}
		}

		return -1
	})
}

// RemoveTransactionsByID removes the transactions with the given ids,
// reverting their balance effect. Unknown ids are skipped. The directory is
// persisted once after the whole batch.
func (s *Service) RemoveTransactionsByID(ctx context.Context, ids []string) (int, error) {
	return s.remove(ctx, len(ids), func(txs []domain.Transaction, i int) int {
		for idx, tx := range txs {
			if tx.ID == ids[i] {
				return idx
			}
		}

		return -1
	})
}

// remove runs a batch of n lookups, find returns the index of the
// transaction selected by the i-th item or -1.
func (s *Service) remove(ctx context.Context, n int, find func(txs []domain.Transaction, i int) int) (int, error) {
	l := zerolog.Ctx(ctx)

	current, err := s.session.Current(ctx)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, fmt.Errorf("%w: no transactions selected", domain.ErrValidation)
	}

	var removed int

	err = s.directory.Update(ctx, current.Email, func(acc *domain.Account) error {
		for i := 0; i < n; i++ {
			idx := find(acc.Transactions, i)
			if idx < 0 {
				continue
			}

			tx := acc.Transactions[idx]
			acc.Balance = acc.Balance.Sub(tx.Signed())
			acc.Transactions = append(acc.Transactions[:idx], acc.Transactions[idx+1:]...)
			removed++
		}

		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		return 0, err
	}

	l.Info().
		Str("email", current.Email).
		Int("requested", n).
		Int("removed", removed).
		Msg("transactions removed")

	return removed, err
}

// ListTransactions returns the account transactions by date, newest first.
// Transactions sharing a date keep their stored order.
func (s *Service) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	current, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	txs := current.Copy().Transactions
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})

	return txs, nil
}

// Balance returns the balance of the active account.
func (s *Service) Balance(ctx context.Context) (decimal.Decimal, error) {
	current, err := s.session.Current(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return current.Balance, nil
}
