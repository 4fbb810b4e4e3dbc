package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/app"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/catalog"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/config"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/httpclient"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/report"
)

type artistAnalyzer interface {
	Analyze(ctx context.Context, artistName string) (*app.Analysis, error)
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var dbPath, outDir string

	cmd := &cobra.Command{
		Use:   "analyze [ARTIST]",
		Short: "Fetch an artist's catalog, match it against the store and write a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			artist := cfg.ArtistName
			if len(args) == 1 {
				artist = args[0]
			}
			artist = strings.TrimSpace(artist)
			if artist == "" {
				return errors.New("artist name is required: pass ARTIST or set ARTIST_NAME")
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("out") {
				cfg.OutputDir = outDir
			}
			if err := cfg.ValidateCatalog(); err != nil {
				return err
			}

			log := ctx.logger()
			db, err := openExistingStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			analyzer, err := newSpotifyAnalyzer(cmd.Context(), cfg, db, log)
			if err != nil {
				return err
			}
			return analyzeAndReport(cmd.Context(), cmd.OutOrStdout(), analyzer, artist, cfg.OutputDir)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default $DB_FILE)")
	cmd.Flags().StringVar(&outDir, "out", "", "Report output directory (default $OUTPUT_DIR)")

	return cmd
}

// newSpotifyAnalyzer authenticates against the Spotify API and wires the
// analysis pipeline onto works.
func newSpotifyAnalyzer(ctx context.Context, cfg *config.Config, works app.WorkStore, log *logger.Logger) (*app.Analyzer, error) {
	client, err := catalog.NewSpotifyClient(ctx, catalog.SpotifyConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Market:       cfg.Market,
		BaseURL:      cfg.BaseURL,
		HTTP: httpclient.Options{
			Logger:     log,
			RateLimit:  cfg.RateLimit,
			RetryCount: cfg.RetryCount,
			Timeout:    cfg.Timeout,
		},
	})
	if err != nil {
		return nil, err
	}
	provider := catalog.NewSpotifyProvider(client, cfg.Market, log)
	return app.NewAnalyzer(provider, works, app.FetcherOptions{
		PageDelay:    cfg.PageDelay,
		TrackWorkers: cfg.TrackWorkers,
	}, log), nil
}

// analyzeAndReport runs one analysis and writes its workbook to outDir.
// An unknown artist prints a notice and is not an error.
func analyzeAndReport(ctx context.Context, out io.Writer, analyzer artistAnalyzer, artist, outDir string) error {
	res, err := analyzer.Analyze(ctx, artist)
	if errors.Is(err, catalog.ErrArtistNotFound) {
		fmt.Fprintf(out, "Artist %q was not found; no report written.\n", artist)
		return nil
	}
	if err != nil {
		return err
	}

	path, err := report.WriteFile(outDir, res.Catalog.Tracks, res.Matches, res.Summary)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Fprintln(out, analysisTable(res, path))
	for _, note := range res.Summary.Notes {
		fmt.Fprintf(out, "Note: %s\n", note)
	}
	return nil
}
