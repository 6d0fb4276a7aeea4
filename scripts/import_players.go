package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/koacards/koa-server-go/internal/config"
	"github.com/koacards/koa-server-go/internal/repository"
	"go.uber.org/zap"
)

// Imports player records from a CSV export into the configured repository:
//
//	go run ./scripts -config config/config.yaml data/players.csv
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	csvPath := "data/players.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open player repository", zap.Error(err))
	}
	defer repo.Close()

	file, err := os.Open(csvPath)
	if err != nil {
		logger.Fatal("failed to open csv file", zap.String("path", csvPath), zap.Error(err))
	}
	defer file.Close()

	records, parseErr := repository.ReadPlayersCSV(file)
	if parseErr != nil {
		logger.Warn("some rows were skipped", zap.Error(parseErr))
	}
	logger.Info("parsed players", zap.Int("count", len(records)))

	start := time.Now()
	imported, failed := 0, 0
	for _, rec := range records {
		if err := repo.Save(ctx, rec); err != nil {
			logger.Error("failed to save player", zap.String("player", rec.Name), zap.Error(err))
			failed++
			continue
		}
		imported++
	}

	logger.Info("import complete",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("imported", imported),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
}
