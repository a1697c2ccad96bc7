package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/snapshot"
)

var exportFile string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus as a portable snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		doc, err := snapshot.Export(ctx, st, cfg.Owner.ID)
		if err != nil {
			return eris.Wrap(err, "export")
		}

		out := os.Stdout
		if exportFile != "" {
			f, err := os.Create(exportFile)
			if err != nil {
				return eris.Wrap(err, "export: create file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "export: write document")
		}

		zap.L().Info("export complete",
			zap.Int("contacts", len(doc.Contacts)),
			zap.String("file", exportFile),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFile, "file", "", "write the snapshot to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
