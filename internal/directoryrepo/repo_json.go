// Package directoryrepo manages repository layer of the account directory.
//
// The whole directory is read and written as a single JSON document. There is
// no incremental persistence: every save rewrites the file in full.
package directoryrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const indent = "    "

// RepoJSON facilitates directory repository layer logic.
type RepoJSON struct {
	fs   afero.Fs
	path string
}

// NewRepoJSON returns directory RepoJSON storing the document at path on fs.
func NewRepoJSON(fs afero.Fs, path string) *RepoJSON {
	return &RepoJSON{
		fs:   fs,
		path: path,
	}
}

// Path returns the location of the persisted document.
func (r *RepoJSON) Path() string {
	return r.path
}

// Load reads the persisted directory.
//
// A missing document is an empty directory. A document that cannot be parsed
// yields an empty directory together with domain.ErrCorruptData.
func (r *RepoJSON) Load(ctx context.Context) (domain.Directory, error) {
	l := zerolog.Ctx(ctx)

	dir := domain.Directory{}

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.Debug().Str("path", r.path).Msg("no data file, starting empty")
			return dir, nil
		}

		l.Error().Err(err).Send()

		return dir, fmt.Errorf("read %s: %w", r.path, err)
	}

	var loaded domain.Directory
	if err := json.Unmarshal(data, &loaded); err != nil {
		l.Warn().Err(err).Str("path", r.path).Msg("corrupted data file")
		return dir, fmt.Errorf("%w: %v", domain.ErrCorruptData, err)
	}

	for email, acc := range loaded {
		if acc == nil {
			l.Warn().Str("email", email).Str("path", r.path).Msg("corrupted data file")
			return domain.Directory{}, fmt.Errorf("%w: null account %q", domain.ErrCorruptData, email)
		}

		acc.Email = email

		if acc.Transactions == nil {
			acc.Transactions = []domain.Transaction{}
		}

		if err := checkAmounts(acc); err != nil {
			l.Warn().Err(err).Str("email", email).Str("path", r.path).Msg("corrupted data file")
			return domain.Directory{}, fmt.Errorf("%w: %v", domain.ErrCorruptData, err)
		}

		for i := range acc.Transactions {
			if acc.Transactions[i].ID == "" {
				acc.Transactions[i].ID = uuid.NewString()
			}
		}

		if !acc.Balance.Equal(acc.SignedSum()) {
			l.Warn().
				Str("email", email).
				Str("balance", acc.Balance.String()).
				Str("sum", acc.SignedSum().String()).
				Msg("stored balance does not match transactions")
		}

		dir[email] = acc
	}

	return dir, nil
}

// checkAmounts rejects stored values whose scale would make arithmetic on
// them unbounded. The balance is a sum of amounts and only its exponent is
// bounded.
func checkAmounts(acc *domain.Account) error {
	exp := acc.Balance.Exponent()
	if exp < -domain.MaxAmountScale || exp > domain.MaxAmountDigits {
		return fmt.Errorf("balance exponent %d out of range", exp)
	}

	for i, tx := range acc.Transactions {
		if !domain.AmountInRange(tx.Amount) {
			return fmt.Errorf("transaction %d amount exponent %d out of range", i, tx.Amount.Exponent())
		}
	}

	return nil
}

// Save overwrites the persisted document with the given directory.
func (r *RepoJSON) Save(ctx context.Context, dir domain.Directory) error {
	l := zerolog.Ctx(ctx)

	data, err := json.MarshalIndent(dir, "", indent)
	if err != nil {
		l.Error().Err(err).Send()
		return fmt.Errorf("%w: %v", domain.ErrPersistenceWrite, err)
	}

	if err := afero.WriteFile(r.fs, r.path, data, 0o600); err != nil {
		l.Error().Err(err).Str("path", r.path).Send()
		return fmt.Errorf("%w: %v", domain.ErrPersistenceWrite, err)
	}

	return nil
}
