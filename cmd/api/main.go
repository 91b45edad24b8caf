package main

import (
	"flag"
	"os"

	"github.com/yigit/campusconnect/internal/bootstrap"
	"github.com/yigit/campusconnect/internal/pkg/logger"
	"github.com/yigit/campusconnect/internal/server"
)

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML configuration file")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
