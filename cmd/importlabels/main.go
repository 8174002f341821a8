// Команда importlabels загружает датасет ton-labels в known_wallets.
//
//	go run ./cmd/importlabels --file ton-labels-compiled.json
//	go run ./cmd/importlabels --file ton-labels-compiled.json --dry-run
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"memescan/internal/infrastructure/persistence"
	"memescan/internal/infrastructure/tonlabels"
	"memescan/pkg/application/connectors"
	"memescan/pkg/contextx"
	"memescan/pkg/logx"
)

type options struct {
	file   string
	dsn    string
	dryRun bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	log := logx.New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	ctx = contextx.WithLogger(ctx, log)

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error("import failed", logx.Error(err))
		cancel()
		os.Exit(1) //nolint:gocritic
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "importlabels",
		Short:         "Import the ton-labels dataset into known_wallets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "ton-labels-compiled.json", "path to the compiled ton-labels JSON")
	cmd.Flags().StringVar(&opts.dsn, "dsn", os.Getenv("PG_DSN"), "postgres DSN (defaults to $PG_DSN)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and report without writing")

	return cmd
}

func run(ctx context.Context, opts options) error {
	log := contextx.LoggerFromContextOrDefault(ctx)

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	ds, err := tonlabels.Parse(f)
	if err != nil {
		return fmt.Errorf("tonlabels.Parse: %w", err)
	}

	log.Info("dataset loaded",
		slog.Int("total", ds.Total),
		slog.Int("valid", len(ds.Records)),
		slog.Int("rejected", len(ds.Rejected)),
		slog.Any("stats", ds.Stats),
	)

	for _, rejected := range ds.Rejected {
		log.Warn("record rejected", logx.Error(rejected))
	}

	if opts.dryRun {
		log.Info("dry run, nothing written", slog.Any("by-category", ds.CountByCategory()))
		return nil
	}

	if opts.dsn == "" {
		return errors.New("--dsn or PG_DSN is required")
	}

	pg := &connectors.Postgres{
		DSN:             opts.dsn,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	repo := persistence.NewLabelRepository(db)

	imported, err := repo.UpsertMany(ctx, ds.Records)
	if err != nil {
		return fmt.Errorf("labelRepository.UpsertMany: %w", err)
	}

	counts, err := repo.CountByCategory(ctx)
	if err != nil {
		return fmt.Errorf("labelRepository.CountByCategory: %w", err)
	}

	log.Info("import complete",
		slog.Int("imported", imported),
		slog.Int("skipped", len(ds.Rejected)),
		slog.Any("by-category", counts),
	)

	return nil
}
