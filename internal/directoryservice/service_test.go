package directoryservice

import (
	"context"
	"errors"
	"testing"

	"github.com/go-petr/expense-tracker/internal/directoryrepo"
	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/go-petr/expense-tracker/pkg/errorspkg"
	"github.com/go-petr/expense-tracker/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var equalDecimals = cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })

func randomAccount() domain.Account {
	return domain.Account{
		Email:        randompkg.Email(),
		Name:         randompkg.Name(),
		Password:     randompkg.String(10),
		Balance:      decimal.Zero,
		Transactions: []domain.Transaction{},
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	account := randomAccount()

	type input struct {
		Email    string
		Name     string
		Password string
	}

	testCases := []struct {
		name       string
		input      input
		buildStubs func(repo *MockRepo)
		wantError  error
	}{
		{
			name:  "OK",
			input: input{account.Email, account.Name, account.Password},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Save(gomock.Any(), gomock.Len(1)).
					Times(1).
					Return(nil)
			},
		},
		{
			name:  "EmptyEmail",
			input: input{"", account.Name, account.Password},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrValidation,
		},
		{
			name:  "EmptyName",
			input: input{account.Email, "", account.Password},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrValidation,
		},
		{
			name:  "EmptyPassword",
			input: input{account.Email, account.Name, ""},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrValidation,
		},
		{
			name:  "SaveError",
			input: input{account.Email, account.Name, account.Password},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.ErrPersistenceWrite)
			},
			wantError: domain.ErrPersistenceWrite,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)

			got, err := service.Register(context.Background(), tc.input.Email, tc.input.Name, tc.input.Password)
			if !errors.Is(err, tc.wantError) {
				t.Fatalf("service.Register(ctx, %q, %q, %q) got error %v, want %v",
					tc.input.Email, tc.input.Name, tc.input.Password, err, tc.wantError)
			}

			if tc.wantError != nil && tc.wantError != domain.ErrPersistenceWrite {
				require.Empty(t, got)
				require.Zero(t, service.Len())

				return
			}

			if diff := cmp.Diff(account, got, equalDecimals); diff != "" {
				t.Errorf("service.Register() returned unexpected diff (-want +got):\n%s", diff)
			}

			stored, err := service.Get(context.Background(), account.Email)
			require.NoError(t, err)
			require.True(t, stored.Balance.IsZero())
			require.Empty(t, stored.Transactions)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(1).Return(nil)

	service := New(repo)
	ctx := context.Background()

	account := randomAccount()
	_, err := service.Register(ctx, account.Email, account.Name, account.Password)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		name, password := randompkg.Name(), randompkg.String(12)

		_, err := service.Register(ctx, account.Email, name, password)
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	}

	got, err := service.Get(ctx, account.Email)
	require.NoError(t, err)
	require.Equal(t, account.Name, got.Name)
	require.Equal(t, account.Password, got.Password)
	require.Equal(t, 1, service.Len())
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	account := randomAccount()

	testCases := []struct {
		name      string
		email     string
		password  string
		wantError error
	}{
		{
			name:     "OK",
			email:    account.Email,
			password: account.Password,
		},
		{
			name:      "WrongPassword",
			email:     account.Email,
			password:  "wrong",
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:      "UnknownEmail",
			email:     randompkg.Email(),
			password:  account.Password,
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:      "EmailCaseSensitive",
			email:     "X" + account.Email,
			password:  account.Password,
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:      "EmptyPassword",
			email:     account.Email,
			password:  "",
			wantError: domain.ErrValidation,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			repo.EXPECT().
				Load(gomock.Any()).
				Times(1).
				Return(domain.Directory{account.Email: &account}, nil)

			service := New(repo)
			require.NoError(t, service.Load(context.Background()))

			got, err := service.Authenticate(context.Background(), tc.email, tc.password)
			if !errors.Is(err, tc.wantError) {
				t.Fatalf("service.Authenticate(ctx, %q, %q) got error %v, want %v",
					tc.email, tc.password, err, tc.wantError)
			}

			if tc.wantError != nil {
				require.Empty(t, got)
				return
			}

			if diff := cmp.Diff(account, got, equalDecimals); diff != "" {
				t.Errorf("service.Authenticate() returned unexpected diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadCorruptResets(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := randomAccount()

	repo := NewMockRepo(ctrl)
	gomock.InOrder(
		repo.EXPECT().Load(gomock.Any()).Return(domain.Directory{account.Email: &account}, nil),
		repo.EXPECT().Load(gomock.Any()).Return(domain.Directory{}, domain.ErrCorruptData),
	)

	service := New(repo)
	ctx := context.Background()

	require.NoError(t, service.Load(ctx))
	require.Equal(t, 1, service.Len())

	err := service.Load(ctx)
	require.ErrorIs(t, err, domain.ErrCorruptData)
	require.Zero(t, service.Len())

	_, err = service.Get(ctx, account.Email)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := randomAccount()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().Load(gomock.Any()).Return(domain.Directory{account.Email: &account}, nil)

	service := New(repo)
	ctx := context.Background()
	require.NoError(t, service.Load(ctx))

	// Failing mutation is not persisted.
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

	err := service.Update(ctx, account.Email, func(acc *domain.Account) error {
		return errorspkg.ErrInternal
	})
	require.ErrorIs(t, err, errorspkg.ErrInternal)

	err = service.Update(ctx, randompkg.Email(), func(acc *domain.Account) error { return nil })
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	// Save failure keeps the change in memory.
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(1).Return(domain.ErrPersistenceWrite)

	err = service.Update(ctx, account.Email, func(acc *domain.Account) error {
		acc.Name = "renamed"
		return nil
	})
	require.ErrorIs(t, err, domain.ErrPersistenceWrite)

	got, err := service.Get(ctx, account.Email)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := randomAccount()
	account.Transactions = []domain.Transaction{
		{ID: "1", Date: "2024-01-01 00:00:00", Type: domain.Income, Amount: decimal.NewFromInt(1), Category: "x"},
	}
	account.Balance = decimal.NewFromInt(1)

	repo := NewMockRepo(ctrl)
	repo.EXPECT().Load(gomock.Any()).Return(domain.Directory{account.Email: &account}, nil)

	service := New(repo)
	ctx := context.Background()
	require.NoError(t, service.Load(ctx))

	got, err := service.Get(ctx, account.Email)
	require.NoError(t, err)

	got.Transactions[0].Category = "changed"

	again, err := service.Get(ctx, account.Email)
	require.NoError(t, err)
	require.Equal(t, "x", again.Transactions[0].Category)
}

func TestRegisterAfterCorruptData(t *testing.T) {
	t.Parallel()

	const path = "data.json"

	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, path, []byte("{{{ definitely not json"), 0o600))

	repo := directoryrepo.NewRepoJSON(fs, path)
	service := New(repo)

	err := service.Load(ctx)
	require.ErrorIs(t, err, domain.ErrCorruptData)
	require.Zero(t, service.Len())

	_, err = service.Register(ctx, "a@x.com", "Ann", "pw1")
	require.NoError(t, err)

	reloaded := New(directoryrepo.NewRepoJSON(fs, path))
	require.NoError(t, reloaded.Load(ctx))

	got, err := reloaded.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, "Ann", got.Name)
	require.True(t, got.Balance.IsZero())
}
