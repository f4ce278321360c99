// Command tallygen assembles one direct-debit tally from the command
// line, without the HTTP server. It connects to the database, runs the
// pending migrations, creates the tally for the given collection date
// and prints the committed record.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/clubkasse/membership-tally/internal/config"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/migrations"
	feesservice "github.com/clubkasse/membership-tally/internal/services/fees"
	tallyservice "github.com/clubkasse/membership-tally/internal/services/tally"
	"github.com/clubkasse/membership-tally/internal/storage/repository"
)

func main() {
	collectionDateFlag := flag.String("collection-date", "", "collection date of the batch, format 2006-01-02")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	collectionDate, err := time.Parse("2006-01-02", *collectionDateFlag)
	if err != nil {
		logger.Error("collection-date must be in format 2006-01-02", sl.Err(err))
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

	// No cache and no broker: the one-shot run always computes fresh and
	// publishes nothing.
	feesService := feesservice.NewService(db, nil, logger)
	tallyService := tallyservice.NewService(db, feesService, nil, logger, cfg.OutputDir)

	result, err := tallyService.Create(context.Background(), collectionDate)
	if err != nil {
		logger.Error("failed to create tally", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("tally created",
		slog.Int64("tally_id", result.ID),
		slog.String("collection_date", result.CollectionDate.Format("2006-01-02")),
		sl.Amount("total", result.TotalAmount))
}
