// Package main is the entry point for the applytrack API server.
//
// main stays minimal: read configuration, build the logger, hand both to
// internal/server and block until shutdown.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sakif/applytrack/internal/server"
)

func main() {
	// A .env file is a convenience for local runs; real deployments set the
	// environment directly, so a missing file is fine.
	envErr := godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not load .env file", slog.String("error", envErr.Error()))
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until Ctrl+C or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads server settings from the environment.
//
//	PORT          default 5001
//	DB_DRIVER     sqlite | postgres, default sqlite
//	DB_PATH       default data/applytrack.db
//	DATABASE_URL  postgres DSN
//	CORS_ORIGINS  comma separated, default *
func loadConfig() (server.Config, error) {
	cfg := server.Config{
		Port:        5001,
		DBDriver:    getEnv("DB_DRIVER", server.DriverSQLite),
		DBPath:      getEnv("DB_PATH", "data/applytrack.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cfg, errors.New("PORT must be a number, got " + strconv.Quote(portStr))
		}
		cfg.Port = port
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
