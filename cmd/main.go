// Package main runs the expense tracker API on the configured local address.
package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/go-petr/expense-tracker/cmd/httpserver"
	"github.com/go-petr/expense-tracker/internal/middleware"
	"github.com/go-petr/expense-tracker/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	server, err := httpserver.New(afero.NewOsFs(), logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("data_file", config.DataFile).Msg("EXPENSE TRACKER SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
