// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/go-petr/expense-tracker/internal/directoryrepo"
	"github.com/go-petr/expense-tracker/internal/directoryservice"
	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/go-petr/expense-tracker/internal/ledgerservice"
	"github.com/go-petr/expense-tracker/internal/middleware"
	"github.com/go-petr/expense-tracker/internal/sessionservice"
	"github.com/go-petr/expense-tracker/internal/transactiondelivery"
	"github.com/go-petr/expense-tracker/internal/userdelivery"
	"github.com/go-petr/expense-tracker/pkg/configpkg"
)

// Server holds the loaded directory, handlers router and configuration.
type Server struct {
	Engine *gin.Engine
	Config configpkg.Config
	// LoadErr is the error reported while loading the directory, if any.
	// A corrupted data file is reported here and the server starts empty.
	LoadErr error
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with loaded directory and routes.
//
// Only a data file that exists but cannot be read prevents the creation;
// overwriting it on the next save would lose the data.
func New(fs afero.Fs, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	ctx := logger.WithContext(context.Background())

	directoryRepo := directoryrepo.NewRepoJSON(fs, config.DataFile)
	directoryService := directoryservice.New(directoryRepo)

	loadErr := directoryService.Load(ctx)
	if loadErr != nil {
		if !errors.Is(loadErr, domain.ErrCorruptData) {
			return nil, loadErr
		}

		logger.Warn().Err(loadErr).Str("path", directoryRepo.Path()).Msg("starting with an empty directory")
	}

	sessionService := sessionservice.New(directoryService)
	ledgerService := ledgerservice.New(directoryService, sessionService)

	userHandler := userdelivery.NewHandler(sessionService)
	transactionHandler := transactiondelivery.NewHandler(ledgerService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Serialize())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/users/logout", userHandler.Logout)

	engine.GET("/transactions", transactionHandler.List)
	engine.POST("/transactions", transactionHandler.Create)
	engine.POST("/transactions/remove", transactionHandler.Remove)

	server := &Server{
		Engine:  engine,
		Config:  config,
		LoadErr: loadErr,
	}

	return server, nil
}
