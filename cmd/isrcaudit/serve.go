package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	httpapp "github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/http"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store and on-demand analyses over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := ctx.logger()
			db, err := openExistingStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			var analyzer httpapp.ArtistAnalyzer
			if err := cfg.ValidateCatalog(); err != nil {
				log.Warn("Analysis endpoint disabled", "reason", err)
			} else {
				a, err := newSpotifyAnalyzer(cmd.Context(), cfg, db, log)
				if err != nil {
					return err
				}
				analyzer = a
			}

			r := chi.NewRouter()
			r.Use(middleware.Logger)
			r.Use(middleware.Recoverer)
			httpapp.NewHandler(db, analyzer, log).RegisterRoutes(r)

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("Server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			log.Info("Server exiting")
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default $PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default $DB_FILE)")

	return cmd
}
