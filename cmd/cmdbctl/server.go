package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmdbkit/cmdbkit/pkg/config"
	"github.com/cmdbkit/cmdbkit/pkg/db"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
	"github.com/cmdbkit/cmdbkit/pkg/server"
	"github.com/cmdbkit/cmdbkit/pkg/server/endpoints"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the CMDB API server",
	Long: `Run the CMDB API server.

Running the server requires the DATABASE_URL environment variable.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
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
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
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

		s := server.NewServer(database, idx, cfg, logger)
		endpoints.RegisterAll(s)

		// Pick up config file edits without a restart.
		go func() {
			_ = config.Watch(context.Background(), logger, nil)
		}()

		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
