package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/store"
)

// WorkLookup finds the first stored work for an ISRC, or store.ErrNotFound.
type WorkLookup interface {
	FirstWorkByISRC(ctx context.Context, isrc string) (*domain.UnclaimedWork, error)
}

type Matcher struct {
	works  WorkLookup
	logger *logger.Logger
}

func NewMatcher(works WorkLookup, log *logger.Logger) *Matcher {
	return &Matcher{
		works:  works,
		logger: logger.OrDefault(log).WithComponent("matcher"),
	}
}

// WithLogger returns a copy of the matcher that logs to l.
func (m *Matcher) WithLogger(l *logger.Logger) *Matcher {
	c := *m
	c.logger = l.WithComponent("matcher")
	return &c
}

// Match returns one record per track whose ISRC is in the store, in track
// order. Tracks without an ISRC are not looked up. The result is never nil.
func (m *Matcher) Match(ctx context.Context, tracks []domain.CatalogTrack) ([]domain.MatchRecord, error) {
	matches := []domain.MatchRecord{}
	looked := 0

	for _, t := range tracks {
		if !t.HasISRC() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		looked++
		w, err := m.works.FirstWorkByISRC(ctx, t.ISRC)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", t.ISRC, err)
		}

		m.logger.Debug("Matched track", "isrc", t.ISRC, "track", t.TrackName, "record_id", w.RightShareRecordID)
		matches = append(matches, domain.NewMatchRecord(t, *w))
	}

	m.logger.Info("Matching complete", "looked_up", looked, "matches", len(matches))
	return matches, nil
}
