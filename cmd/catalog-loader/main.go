package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/config"
	dbElastic "github.com/kailas-cloud/moviesearch/internal/db/elastic"
	logpkg "github.com/kailas-cloud/moviesearch/internal/logger"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
	repocatalog "github.com/kailas-cloud/moviesearch/internal/repository/catalog"
	cataloguc "github.com/kailas-cloud/moviesearch/internal/usecase/catalog"
	"github.com/kailas-cloud/moviesearch/internal/version"
)

var errNoFiles = errors.New("at least one parquet file is required")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "catalog-loader",
		Usage:   "Create the movie index and load the catalog into Elasticsearch",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Index name (overrides elasticsearch.index)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "ensure-index",
				Usage:  "Create the movie index if it does not exist",
				Action: ensureIndexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "drop",
						Usage: "Delete and recreate an existing index",
					},
				},
			},
			{
				Name:      "load",
				Usage:     "Bulk index movie records from parquet files",
				ArgsUsage: "FILE [FILE...]",
				Action:    loadCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "ensure-index",
						Usage: "Create the index first when missing",
					},
					&cli.BoolFlag{
						Name:  "drop",
						Usage: "With --ensure-index, recreate the index before loading",
					},
				},
			},
		},
	}
}

// loader bundles what every command needs.
type loader struct {
	svc    *cataloguc.Service
	logger *zap.Logger
}

func newLoader(c *cli.Context) (*loader, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	index := cfg.Elasticsearch.Index
	if v := c.String("index"); v != "" {
		index = v
	}

	store, err := dbElastic.NewStore(dbElastic.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		APIKey:    cfg.Elasticsearch.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create search store: %w", err)
	}
	if err := store.WaitForReady(c.Context, time.Duration(cfg.Elasticsearch.ReadinessTimeout)*time.Second); err != nil {
		return nil, fmt.Errorf("elasticsearch not ready: %w", err)
	}

	metrics.RegisterSearchMetrics()
	logger.Info("Connected to Elasticsearch",
		zap.Strings("addresses", cfg.Elasticsearch.Addresses),
		zap.String("index", index),
	)
	return &loader{svc: cataloguc.New(store, store, index, logger), logger: logger}, nil
}

func ensureIndexCommand(c *cli.Context) error {
	l, err := newLoader(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.logger.Sync() }()

	if _, err := l.svc.EnsureIndex(c.Context, c.Bool("drop")); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}

func loadCommand(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errNoFiles
	}

	l, err := newLoader(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.logger.Sync() }()

	if c.Bool("ensure-index") {
		if _, err := l.svc.EnsureIndex(c.Context, c.Bool("drop")); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}

	start := time.Now()
	st, err := l.svc.Load(c.Context, repocatalog.NewParquetSource(files...))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	l.logger.Info("Load finished",
		zap.Strings("files", files),
		zap.Int("read", st.Read),
		zap.Int("skipped", st.Skipped),
		zap.Uint64("indexed", st.Indexed),
		zap.Uint64("failed", st.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
