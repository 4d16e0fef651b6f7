package main

import (
	"log/slog"
	"os"

	_ "taskflow/docs"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/server"
)

// @title           Taskflow API
// @version         1.0
// @description     Personal task tracking with dependency cycle detection and priority scoring.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.LogLevel)

	s, err := server.Init(cfg, log)
	if err != nil {
		log.Error("server initialization failed", "error", err)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
