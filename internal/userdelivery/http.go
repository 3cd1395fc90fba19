// Package userdelivery manages delivery layer of accounts and their session.
package userdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/go-petr/expense-tracker/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Register(ctx context.Context, email, name, password string) (domain.Account, error)
	Login(ctx context.Context, email, password string) (domain.Account, error)
	Logout(ctx context.Context)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns user handler.
func NewHandler(ss Service) *Handler {
	return &Handler{service: ss}
}

type accountData struct {
	Account domain.AccountWithoutPassword `json:"account"`
}

type createRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Create handles http request to register an account and log it in.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	acc, err := h.service.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		gctx.JSON(web.Status(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data:    accountData{domain.NewAccountWithoutPassword(acc)},
		Warning: web.Warning(err),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles http login request and returns the account data.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	acc, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		gctx.JSON(web.Status(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: accountData{domain.NewAccountWithoutPassword(acc)},
	})
}

// Logout handles http request to end the session.
func (h *Handler) Logout(gctx *gin.Context) {
	h.service.Logout(gctx.Request.Context())
	gctx.JSON(http.StatusOK, web.Response{})
}
