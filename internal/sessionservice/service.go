// Package sessionservice manages the active account of the running process.
//
// A session is either anonymous or authenticated as one account. Register
// and Login move it to authenticated, Logout back to anonymous.
package sessionservice

import (
	"context"
	"errors"

	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/rs/zerolog"
)

// Directory provides account lookups needed by session service layer.
type Directory interface {
	Register(ctx context.Context, email, name, password string) (domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (domain.Account, error)
	Get(ctx context.Context, email string) (domain.Account, error)
}

// Service facilitates session service layer logic.
type Service struct {
	directory Directory
	email     string
	active    bool
}

// New returns an anonymous session backed by the given directory.
func New(dir Directory) *Service {
	return &Service{directory: dir}
}

// Start binds the session to the given account.
func (s *Service) Start(ctx context.Context, acc domain.Account) {
	s.email = acc.Email
	s.active = true

	zerolog.Ctx(ctx).Info().Str("email", acc.Email).Msg("session started")
}

// End clears the active account. State is already persisted.
func (s *Service) End(ctx context.Context) {
	if s.active {
		zerolog.Ctx(ctx).Info().Str("email", s.email).Msg("session ended")
	}

	s.email = ""
	s.active = false
}

// Active reports whether an account is logged in.
func (s *Service) Active() bool {
	return s.active
}

// Current returns a fresh copy of the active account or domain.ErrNoActiveSession.
func (s *Service) Current(ctx context.Context) (domain.Account, error) {
	if !s.active {
		return domain.Account{}, domain.ErrNoActiveSession
	}

	acc, err := s.directory.Get(ctx, s.email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			zerolog.Ctx(ctx).Warn().Str("email", s.email).Msg("session account vanished")
			s.End(ctx)

			return domain.Account{}, domain.ErrNoActiveSession
		}

		return domain.Account{}, err
	}

	return acc, nil
}

// Register creates an account and logs it in.
//
// A persistence failure still logs the account in and is returned alongside it.
func (s *Service) Register(ctx context.Context, email, name, password string) (domain.Account, error) {
	acc, err := s.directory.Register(ctx, email, name, password)
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		return domain.Account{}, err
	}

	s.Start(ctx, acc)

	return acc, err
}

// Login authenticates the account and makes it the active one.
// A failed login leaves the session untouched.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Account, error) {
	acc, err := s.directory.Authenticate(ctx, email, password)
	if err != nil {
		return domain.Account{}, err
	}

	s.Start(ctx, acc)

	return acc, nil
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context) {
	s.End(ctx)
}
