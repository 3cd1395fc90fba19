// Package transactiondelivery manages delivery layer of the ledger.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/go-petr/expense-tracker/pkg/currencypkg"
	"github.com/go-petr/expense-tracker/pkg/web"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	AddTransaction(ctx context.Context, txType domain.TransactionType, amount, category string) (domain.Transaction, error)
	RemoveTransactions(ctx context.Context, criteria []domain.Criterion) (int, error)
	RemoveTransactionsByID(ctx context.Context, ids []string) (int, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ls Service) *Handler {
	return &Handler{service: ls}
}

// Row is a transaction as displayed in the listing.
type Row struct {
	domain.Transaction
	Display string `json:"display_amount"`
}

func newRow(tx domain.Transaction) Row {
	return Row{
		Transaction: tx,
		Display:     currencypkg.Format(tx.Signed()),
	}
}

type listData struct {
	Balance        decimal.Decimal `json:"balance"`
	DisplayBalance string          `json:"display_balance"`
	Transactions   []Row           `json:"transactions"`
}

// List handles http request to show the balance and the transaction history.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	txs, err := h.service.ListTransactions(ctx)
	if err != nil {
		gctx.JSON(web.Status(err))
		return
	}

	balance, err := h.service.Balance(ctx)
	if err != nil {
		gctx.JSON(web.Status(err))
		return
	}

	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, newRow(tx))
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: listData{
			Balance:        balance,
			DisplayBalance: currencypkg.Format(balance),
			Transactions:   rows,
		},
	})
}

type createRequest struct {
	Type     domain.TransactionType `json:"type" binding:"required"`
	Amount   string                 `json:"amount" binding:"required"`
	Category string                 `json:"category" binding:"required"`
}

type createData struct {
	Transaction Row             `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
}

// Create handles http request to add an income or an expense.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	tx, err := h.service.AddTransaction(ctx, req.Type, req.Amount, req.Category)
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		gctx.JSON(web.Status(err))
		return
	}

	balance, balanceErr := h.service.Balance(ctx)
	if balanceErr != nil {
		gctx.JSON(web.Status(balanceErr))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: createData{
			Transaction: newRow(tx),
			Balance:     balance,
		},
		Warning: web.Warning(err),
	})
}

type removeRequest struct {
	IDs      []string           `json:"ids"`
	Criteria []domain.Criterion `json:"criteria" binding:"omitempty,dive"`
}

type removeData struct {
	Removed int             `json:"removed"`
	Balance decimal.Decimal `json:"balance"`
}

// Remove handles http request to remove selected transactions, by id when
// ids are given, by displayed values otherwise.
func (h *Handler) Remove(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req removeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	var (
		removed int
		err     error
	)

	if len(req.IDs) > 0 {
		removed, err = h.service.RemoveTransactionsByID(ctx, req.IDs)
	} else {
		removed, err = h.service.RemoveTransactions(ctx, req.Criteria)
	}

	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		gctx.JSON(web.Status(err))
		return
	}

	balance, balanceErr := h.service.Balance(ctx)
	if balanceErr != nil {
		gctx.JSON(web.Status(balanceErr))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: removeData{
			Removed: removed,
			Balance: balance,
		},
		Warning: web.Warning(err),
	})
}
