package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/config"
	"github.com/cmdbkit/cmdbkit/pkg/db"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/entry"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
	"github.com/cmdbkit/cmdbkit/pkg/search"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import entries from a YAML export",
	Long: `Import entries from a YAML export.

The file must be in the format produced by an export job. Entities and
attribute definitions named in the document must already exist. Entries are
created if missing; values identical to the current version are skipped.

Example:
  cmdbctl import backup.yml --as admin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("as")

		result, err := runImport(args[0], username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Import complete: %d created, %d updated, %d skipped\n",
			result.Created, result.Updated, result.Skipped)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("as", "admin", "Username to perform the import as")
}

func runImport(path, username string) (*entry.ImportResult, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Connect(db.Config{})
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := database.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user '%s' not found", username)
	}

	idx := index.NewElastic(cfg.ESURL, cfg.ESIndex, cfg.SearchResultLimit)
	registry := schema.NewGormRegistry(database)
	evaluator := acl.NewEvaluator(database)
	values := eav.NewStore(database, registry, evaluator, logger)
	indexer := search.NewIndexer(database, values, idx, logger)
	svc := entry.NewService(database, values, evaluator, indexer, logger)

	principal, err := evaluator.LoadPrincipal(user.ID)
	if err != nil {
		return nil, err
	}

	return svc.Import(principal, doc)
}
