package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/catalog"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

func TestAnalyze(t *testing.T) {
	p := newStatic()
	p.AddRelease(artistID, domain.AlbumTypeAlbum, domain.Release{ID: "lp", Name: "LP"},
		track(p, "t1", "Song A", "FR9876543210"),
		track(p, "t2", "Song B", "US0000000001"),
		track(p, "t3", "Song C", ""),
	)
	works := newCountingLookup(
		domain.UnclaimedWork{RightShareRecordID: "RS1", ISRC: "FR9876543210", ResourceTitle: "Song A"},
		domain.UnclaimedWork{RightShareRecordID: "RS2", ISRC: "ZZ0000000000", ResourceTitle: "Unrelated"},
	)

	a := NewAnalyzer(p, works, FetcherOptions{}, logger.Discard())
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	res, err := a.Analyze(context.Background(), "Test Artist")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", res.RunID, err)
	}
	if res.Summary.RunID != res.RunID {
		t.Error("Summary should carry the run id")
	}
	if len(res.Matches) != 1 || res.Matches[0].UnclaimedTitle != "Song A" {
		t.Errorf("unexpected matches: %+v", res.Matches)
	}

	s := res.Summary
	if s.TotalTracks != 3 || s.WithISRC != 2 || s.WithoutISRC != 1 {
		t.Errorf("unexpected track counts: %+v", s)
	}
	if s.Matches != 1 || s.MatchRate != "33.33%" || s.StoreRows != 2 {
		t.Errorf("unexpected match summary: %+v", s)
	}
	if !s.AnalyzedAt.Equal(fixed) || s.ArtistName != "Test Artist" {
		t.Errorf("unexpected identity: %+v", s)
	}
}

func TestAnalyze_ArtistNotFoundSkipsMatching(t *testing.T) {
	works := newCountingLookup(domain.UnclaimedWork{ISRC: "X"})
	a := NewAnalyzer(catalog.NewStaticProvider(), works, FetcherOptions{}, logger.Discard())

	res, err := a.Analyze(context.Background(), "Nobody")
	if !errors.Is(err, catalog.ErrArtistNotFound) {
		t.Fatalf("Expected ErrArtistNotFound, got %v", err)
	}
	if res != nil {
		t.Errorf("Expected no analysis, got %+v", res)
	}
	if len(works.looked) != 0 {
		t.Errorf("Matcher should not run, but looked up %v", works.looked)
	}
}

func TestAnalyze_RunIDsDiffer(t *testing.T) {
	p := newStatic()
	a := NewAnalyzer(p, newCountingLookup(), FetcherOptions{}, logger.Discard())

	first, err := a.Analyze(context.Background(), "Test Artist")
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Analyze(context.Background(), "Test Artist")
	if err != nil {
		t.Fatal(err)
	}
	if first.RunID == second.RunID {
		t.Error("Expected a fresh run id per analysis")
	}
	if first.Summary.MatchRate != "0%" || first.Matches == nil {
		t.Errorf("Expected empty analysis with 0%% rate, got %+v", first.Summary)
	}
}
