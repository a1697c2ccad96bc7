package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/importer"
	"github.com/orbitnotes/orbit-cli/internal/snapshot"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import contacts from files",
	Long:  "Commands for importing parsed contact batches and portable snapshot documents.",
}

// -- import batch --

var importBatchFile string

var importBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Import a JSON array of parsed contacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(importBatchFile)
		if err != nil {
			return eris.Wrap(err, "import batch: read file")
		}

		batch, err := importer.JSONParser{}.Parse(data)
		if err != nil {
			return eris.Wrap(err, "import batch")
		}
		if cfg.Import.MaxBatchSize > 0 && len(batch) > cfg.Import.MaxBatchSize {
			return eris.Errorf("import batch: %d records exceeds the configured maximum of %d", len(batch), cfg.Import.MaxBatchSize)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		summary, _, err := importer.Run(ctx, st, cfg.Owner.ID, batch)
		if err != nil {
			return eris.Wrap(err, "import batch")
		}

		zap.L().Info("batch import complete",
			zap.String("file", importBatchFile),
			zap.Int("created", summary.Created),
			zap.Int("skipped", summary.Skipped),
			zap.Int("dropped", summary.Dropped),
		)
		return json.NewEncoder(os.Stdout).Encode(summary)
	},
}

// -- import snapshot --

var importSnapshotFile string

var importSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Import a portable snapshot document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(importSnapshotFile)
		if err != nil {
			return eris.Wrap(err, "import snapshot: read file")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		res, err := snapshot.Import(ctx, st, cfg.Owner.ID, data)
		if err != nil {
			return eris.Wrap(err, "import snapshot")
		}

		return json.NewEncoder(os.Stdout).Encode(res)
	},
}

func init() {
	importBatchCmd.Flags().StringVar(&importBatchFile, "file", "", "path to JSON batch file (required)")
	_ = importBatchCmd.MarkFlagRequired("file")
	importSnapshotCmd.Flags().StringVar(&importSnapshotFile, "file", "", "path to snapshot JSON file (required)")
	_ = importSnapshotCmd.MarkFlagRequired("file")
	importCmd.AddCommand(importBatchCmd)
	importCmd.AddCommand(importSnapshotCmd)
	rootCmd.AddCommand(importCmd)
}
