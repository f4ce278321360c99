// Command addoperator creates an API operator account with a
// bcrypt-hashed password.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/clubkasse/membership-tally/internal/config"
	"github.com/clubkasse/membership-tally/internal/lib/jwt"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/migrations"
	authservice "github.com/clubkasse/membership-tally/internal/services/auth"
	"github.com/clubkasse/membership-tally/internal/storage/repository"
)

func main() {
	username := flag.String("username", "", "operator username")
	password := flag.String("password", "", "operator password")
	role := flag.String("role", "operator", "operator role")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *username == "" || *password == "" {
		logger.Error("username and password are required")
		os.Exit(1)
	}

	cfg := config.MustLoad()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer db.DB.Close()
	if err := migrations.Run(db.DB, "./migrations"); err != nil {
		logger.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	auth := authservice.NewService(db, jwt.NewMaker(cfg.JWTSecretKey, time.Hour))

	uid, err := auth.Register(context.Background(), *username, *password, *role)
	if err != nil {
		logger.Error("failed to create operator", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("operator created",
		slog.String("uid", uid),
		slog.String("username", *username),
		slog.String("role", *role))
}
