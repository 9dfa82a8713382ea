// Command token issues a bearer token for a user id, signed with JWT_SECRET.
// It is meant for local development and smoke tests against the API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/taitfuller/feedr-backend/internal/auth"
	"github.com/taitfuller/feedr-backend/internal/config"
)

func main() {
	userID := flag.String("user", "", "user id to put in the token subject")
	flag.Parse()

	if _, err := uuid.Parse(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "Usage: token -user <uuid>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry).GenerateToken(*userID)
	if err != nil {
		slog.Error("failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
}
