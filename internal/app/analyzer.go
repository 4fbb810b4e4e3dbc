package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/catalog"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

// WorkStore is the read side of the store the analysis needs.
type WorkStore interface {
	WorkLookup
	CountWorks(ctx context.Context) (int64, error)
}

// Analysis is the outcome of one artist run.
type Analysis struct {
	RunID   string               `json:"run_id"`
	Catalog domain.Catalog       `json:"catalog"`
	Matches []domain.MatchRecord `json:"matches"`
	Summary domain.Summary       `json:"summary"`
}

// Analyzer runs fetch then match for a single artist.
type Analyzer struct {
	fetcher *CatalogFetcher
	matcher *Matcher
	works   WorkStore
	logger  *logger.Logger
	now     func() time.Time
}

func NewAnalyzer(provider catalog.Provider, works WorkStore, opts FetcherOptions, log *logger.Logger) *Analyzer {
	log = logger.OrDefault(log)
	return &Analyzer{
		fetcher: NewCatalogFetcher(provider, opts, log),
		matcher: NewMatcher(works, log),
		works:   works,
		logger:  log,
		now:     time.Now,
	}
}

// Analyze fetches the artist's catalog and matches it against the store.
// An unknown artist returns catalog.ErrArtistNotFound before any matching.
func (a *Analyzer) Analyze(ctx context.Context, artistName string) (*Analysis, error) {
	runID := uuid.New().String()
	log := a.logger.WithRun(runID, artistName)
	log.Info("Analysis started")

	cat, err := a.fetcher.WithLogger(log).Fetch(ctx, artistName)
	if err != nil {
		return nil, err
	}

	matches, err := a.matcher.WithLogger(log).Match(ctx, cat.Tracks)
	if err != nil {
		return nil, err
	}

	rows, err := a.works.CountWorks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count store rows: %w", err)
	}

	summary := domain.Summarize(runID, *cat, matches, rows, a.now())
	log.Info("Analysis complete",
		"tracks", summary.TotalTracks,
		"with_isrc", summary.WithISRC,
		"matches", summary.Matches,
		"match_rate", summary.MatchRate,
	)

	return &Analysis{
		RunID:   runID,
		Catalog: *cat,
		Matches: matches,
		Summary: summary,
	}, nil
}
