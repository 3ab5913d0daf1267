package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/config"
	"github.com/cmdbkit/cmdbkit/pkg/db"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/entry"
	"github.com/cmdbkit/cmdbkit/pkg/job"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
	"github.com/cmdbkit/cmdbkit/pkg/search"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the CMDB job worker",
	Long: `Run the CMDB job worker.

The worker claims pending jobs from the queue, waits for their dependencies,
and executes the entry lifecycle mutations they describe. Multiple workers
can share one queue.`,
	Run: func(cmd *cobra.Command, args []string) {
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		logger, err := newLogger(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to DB: %v\n", err)
			os.Exit(1)
		}

		idx := index.NewElastic(cfg.ESURL, cfg.ESIndex, cfg.SearchResultLimit)
		registry := schema.NewGormRegistry(database)
		evaluator := acl.NewEvaluator(database)
		values := eav.NewStore(database, registry, evaluator, logger)
		indexer := search.NewIndexer(database, values, idx, logger)
		svc := entry.NewService(database, values, evaluator, indexer, logger)

		scheduler := job.NewScheduler(database, cfg.JobTimeout(), cfg.JobPollInterval(), logger)
		handlers := job.NewRegistry()
		entry.RegisterJobHandlers(handlers, svc, evaluator, indexer, database)

		runner := job.NewRunner(database, scheduler, handlers, cfg.JobWorkers, cfg.JobPollInterval(), logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("shutting down worker")
			cancel()
		}()

		if err := runner.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Worker failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
