package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/store"
)

func setupStore(t *testing.T, works ...domain.UnclaimedWork) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "works.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.InsertWorks(context.Background(), works); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return db
}

func TestMatch_NeverLooksUpSentinel(t *testing.T) {
	lookup := newCountingLookup()
	m := NewMatcher(lookup, logger.Discard())

	_, err := m.Match(context.Background(), []domain.CatalogTrack{
		{ISRC: "N/A"}, {ISRC: "US1"}, {ISRC: "N/A"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(lookup.looked) != 1 || lookup.looked[0] != "US1" {
		t.Errorf("Expected only US1 looked up, got %v", lookup.looked)
	}
}

func TestMatch_FirstStoreRowWins(t *testing.T) {
	db := setupStore(t,
		domain.UnclaimedWork{RightShareRecordID: "first", ISRC: "X", ResourceTitle: "First"},
		domain.UnclaimedWork{RightShareRecordID: "second", ISRC: "X", ResourceTitle: "Second"},
	)
	m := NewMatcher(db, logger.Discard())

	matches, err := m.Match(context.Background(), []domain.CatalogTrack{{TrackName: "Song", ISRC: "X"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected exactly one match, got %d", len(matches))
	}
	if matches[0].UnclaimedRecordID != "first" {
		t.Errorf("Expected first row, got %s", matches[0].UnclaimedRecordID)
	}
}

func TestMatch_EmptyStore(t *testing.T) {
	db := setupStore(t)
	m := NewMatcher(db, logger.Discard())

	matches, err := m.Match(context.Background(), []domain.CatalogTrack{{ISRC: "A"}, {ISRC: "B"}})
	if err != nil {
		t.Fatalf("Expected no error on empty store, got %v", err)
	}
	if matches == nil || len(matches) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", matches)
	}
}

func TestMatch_JoinsStoreFields(t *testing.T) {
	dur := int64(215)
	db := setupStore(t, domain.UnclaimedWork{
		RightShareRecordID: "RS42",
		ISRC:               "FR9876543210",
		ResourceTitle:      "Song A",
		DisplayArtistName:  "Someone",
		Duration:           &dur,
	})
	m := NewMatcher(db, logger.Discard())

	matches, err := m.Match(context.Background(), []domain.CatalogTrack{
		{TrackName: "Song A (Remastered)", Album: "LP", ReleaseDate: "2001", ISRC: "FR9876543210", SpotifyURL: "u"},
		{TrackName: "Other", ISRC: "US0000000000"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	got := matches[0]
	if got.UnclaimedTitle != "Song A" || got.UnclaimedArtist != "Someone" || got.UnclaimedRecordID != "RS42" {
		t.Errorf("unexpected store side: %+v", got)
	}
	if got.UnclaimedDuration == nil || *got.UnclaimedDuration != 215 {
		t.Errorf("UnclaimedDuration = %v", got.UnclaimedDuration)
	}
	if got.TrackName != "Song A (Remastered)" || got.Album != "LP" || got.SpotifyURL != "u" {
		t.Errorf("unexpected catalog side: %+v", got)
	}
}
