package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/store"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var dbPath string

	cmd := &cobra.Command{
		Use:   "lookup ISRC",
		Short: "Show the unclaimed works stored for an ISRC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}

			db, err := openExistingStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			isrc := args[0]
			var works []domain.UnclaimedWork
			if all {
				works, err = db.WorksByISRC(cmd.Context(), isrc, 0)
				if err != nil {
					return err
				}
			} else {
				w, err := db.FirstWorkByISRC(cmd.Context(), isrc)
				if err != nil && !errors.Is(err, store.ErrNotFound) {
					return err
				}
				if w != nil {
					works = append(works, *w)
				}
			}

			out := cmd.OutOrStdout()
			if len(works) == 0 {
				fmt.Fprintf(out, "No unclaimed works for ISRC %s\n", isrc)
				return nil
			}
			fmt.Fprintln(out, worksTable(works))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show every row for the ISRC, not just the first")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default $DB_FILE)")

	return cmd
}
