package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/config"
	"github.com/cmdbkit/cmdbkit/pkg/db"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
	"github.com/cmdbkit/cmdbkit/pkg/search"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the search index",
	Long:  `Manage the external search index.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'index' requires a subcommand (rebuild)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Reindex every active entry",
	Long: `Reindex every active entry.

Run this after an index loss or a mapping change. Documents are rebuilt as
the named user, so only attributes that user can read end up indexed; use a
superuser for a complete index.

Example:
  cmdbctl index rebuild --as admin`,
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("as")

		count, err := rebuildIndex(username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Reindexed %d entries\n", count)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	indexRebuildCmd.Flags().String("as", "admin", "Username to read attribute values as")
}

func rebuildIndex(username string) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return 0, err
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Connect(db.Config{})
	if err != nil {
		return 0, err
	}

	var user model.User
	if err := database.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		return 0, fmt.Errorf("user '%s' not found", username)
	}

	idx := index.NewElastic(cfg.ESURL, cfg.ESIndex, cfg.SearchResultLimit)
	registry := schema.NewGormRegistry(database)
	evaluator := acl.NewEvaluator(database)
	values := eav.NewStore(database, registry, evaluator, logger)
	indexer := search.NewIndexer(database, values, idx, logger)

	return indexer.RebuildAll(user.ID)
}
