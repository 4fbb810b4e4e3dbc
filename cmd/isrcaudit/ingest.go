package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/ingest"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var tsvPath, dbPath string
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the local store from the unclaimed works TSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tsv") {
				cfg.TSVPath = tsvPath
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("chunk-size") {
				cfg.ChunkSize = chunkSize
			}
			if err := cfg.ValidateIngest(); err != nil {
				return err
			}

			log := ctx.logger()
			db, err := store.NewSQLiteDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
			}
			defer db.Close()

			loader := ingest.NewLoader(db, ingest.Options{
				ChunkSize:    cfg.ChunkSize,
				HasHeader:    cfg.HasHeader,
				ShowProgress: isTerminal(os.Stderr.Fd()),
			}, log)

			stats, err := loader.Load(cmd.Context(), cfg.TSVPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loadStatsTable(stats, cfg.DBPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&tsvPath, "tsv", "", "Unclaimed works TSV file (default $TSV_FILE)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default $DB_FILE)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Rows per insert transaction (default $CHUNK_SIZE)")

	return cmd
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
