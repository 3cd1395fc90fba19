// Package directoryservice manages business logic layer of the account directory.
package directoryservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by directory service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package directoryservice
type Repo interface {
	Load(ctx context.Context) (domain.Directory, error)
	Save(ctx context.Context, dir domain.Directory) error
}

// Service facilitates directory service layer logic.
//
// It owns the in-memory directory, which stays the source of truth for the
// process even when saving fails. Service is not safe for concurrent use.
type Service struct {
	repo     Repo
	validate *validator.Validate
	accounts domain.Directory
}

// New returns directory service struct to manage accounts bussines logic.
// The directory is empty until Load is called.
func New(dr Repo) *Service {
	return &Service{
		repo:     dr,
		validate: validator.New(),
		accounts: domain.Directory{},
	}
}

// Load replaces the in-memory directory with the persisted one.
//
// When the persisted document is corrupted the directory is reset to empty
// and domain.ErrCorruptData is returned so that the caller can warn the user.
func (s *Service) Load(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	dir, err := s.repo.Load(ctx)
	if dir == nil {
		dir = domain.Directory{}
	}

	if err != nil {
		l.Warn().Err(err).Msg("directory reset to empty")
		s.accounts = domain.Directory{}

		return err
	}

	s.accounts = dir
	l.Info().Int("accounts", len(dir)).Msg("directory loaded")

	return nil
}

// Len returns the number of registered accounts.
func (s *Service) Len() int {
	return len(s.accounts)
}

func (s *Service) validStruct(ctx context.Context, arg any) error {
	if err := s.validate.Struct(arg); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, ve[0].Field())
		}

		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return nil
}

// Register creates, persists and returns a new account with zero balance.
//
// A persistence failure is reported with domain.ErrPersistenceWrite together
// with the created account, which stays registered in memory.
func (s *Service) Register(ctx context.Context, email, name, password string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	arg := domain.CreateAccountParams{
		Email:    email,
		Name:     name,
		Password: password,
	}
	if err := s.validStruct(ctx, arg); err != nil {
		return domain.Account{}, err
	}

	if _, ok := s.accounts[email]; ok {
		l.Info().Str("email", email).Msg("duplicate registration")
		return domain.Account{}, domain.ErrDuplicateEmail
	}

	acc := &domain.Account{
		Email:        email,
		Name:         name,
		Password:     password,
		Balance:      decimal.Zero,
		Transactions: []domain.Transaction{},
	}
	s.accounts[email] = acc

	err := s.repo.Save(ctx, s.accounts)

	return acc.Copy(), err
}

// Authenticate returns the account when the password matches the stored one.
//
// Passwords are stored and compared verbatim.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	arg := domain.CredentialsParams{
		Email:    email,
		Password: password,
	}
	if err := s.validStruct(ctx, arg); err != nil {
		return domain.Account{}, err
	}

	acc, ok := s.accounts[email]
	if !ok || acc.Password != password {
		l.Warn().Str("email", email).Msg("failed login")
		return domain.Account{}, domain.ErrInvalidCredentials
	}

	return acc.Copy(), nil
}

// Get returns a copy of the account with the given email.
func (s *Service) Get(ctx context.Context, email string) (domain.Account, error) {
	acc, ok := s.accounts[email]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return acc.Copy(), nil
}

// Update applies fn to the stored account and persists the whole directory.
//
// Nothing is persisted when fn fails; fn must leave the account untouched in
// that case. A failed save keeps the in-memory change and returns
// domain.ErrPersistenceWrite.
func (s *Service) Update(ctx context.Context, email string, fn func(acc *domain.Account) error) error {
	acc, ok := s.accounts[email]
	if !ok {
		return domain.ErrAccountNotFound
	}

	if err := fn(acc); err != nil {
		return err
	}

	return s.repo.Save(ctx, s.accounts)
}
