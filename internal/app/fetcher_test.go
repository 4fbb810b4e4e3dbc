package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/catalog"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

const artistID = "art1"

func newStatic() *catalog.StaticProvider {
	p := catalog.NewStaticProvider()
	p.AddArtist(domain.Artist{ID: artistID, Name: "Test Artist"})
	return p
}

func TestFetch_DedupesByISRC(t *testing.T) {
	p := newStatic()
	p.AddRelease(artistID, domain.AlbumTypeAlbum, domain.Release{ID: "lp", Name: "LP", ReleaseDate: "2020"},
		track(p, "t1", "One", "US1234567890"),
		track(p, "t2", "Two", "GB0000000001"),
		track(p, "t3", "Three", ""),
	)
	p.AddRelease(artistID, domain.AlbumTypeSingle, domain.Release{ID: "sg", Name: "One - Single", ReleaseDate: "2019"},
		track(p, "t4", "One (Single)", "US1234567890"),
		track(p, "t5", "B-side", ""),
	)

	f := NewCatalogFetcher(p, FetcherOptions{}, logger.Discard())
	cat, err := f.Fetch(context.Background(), "Test Artist")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(cat.Tracks) != 4 {
		t.Fatalf("Expected 4 tracks, got %d: %+v", len(cat.Tracks), cat.Tracks)
	}
	if cat.Tracks[0].TrackName != "One" || cat.Tracks[0].Album != "LP" {
		t.Errorf("Expected first occurrence kept, got %+v", cat.Tracks[0])
	}

	seen := make(map[string]bool)
	sentinels := 0
	for _, tr := range cat.Tracks {
		if !tr.HasISRC() {
			sentinels++
			continue
		}
		if seen[tr.ISRC] {
			t.Errorf("duplicate ISRC %s", tr.ISRC)
		}
		seen[tr.ISRC] = true
	}
	if sentinels != 2 {
		t.Errorf("Expected both tracks without ISRC kept as N/A, got %d", sentinels)
	}
	if cat.Artist.ID != artistID {
		t.Errorf("Artist = %+v", cat.Artist)
	}
}

func TestFetch_CatalogFields(t *testing.T) {
	p := newStatic()
	p.AddRelease(artistID, domain.AlbumTypeCompilation, domain.Release{ID: "c1", Name: "Best Of", ReleaseDate: "2015-06-01"},
		track(p, "t1", "Hit", "FR9876543210"),
	)

	cat, err := NewCatalogFetcher(p, FetcherOptions{}, logger.Discard()).Fetch(context.Background(), "Test Artist")
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Tracks) != 1 {
		t.Fatalf("Expected 1 track, got %d", len(cat.Tracks))
	}
	got := cat.Tracks[0]
	want := domain.CatalogTrack{
		TrackName:   "Hit",
		Album:       "Best Of",
		AlbumType:   domain.AlbumTypeCompilation,
		ReleaseDate: "2015-06-01",
		ISRC:        "FR9876543210",
		DurationMs:  180000,
		SpotifyID:   "t1",
		SpotifyURL:  "https://open.spotify.com/track/t1",
	}
	if got != want {
		t.Errorf("track = %+v, want %+v", got, want)
	}
}

func TestFetch_SkipsReleasesSeenInEarlierCategory(t *testing.T) {
	static := newStatic()
	rel := domain.Release{ID: "shared", Name: "Shared", AlbumType: domain.AlbumTypeAlbum}
	static.AddRelease(artistID, domain.AlbumTypeAlbum, rel, track(static, "t1", "One", "A1"))
	static.AddRelease(artistID, domain.AlbumTypeCompilation, rel)
	p := newFakeProvider(static)

	cat, err := NewCatalogFetcher(p, FetcherOptions{}, logger.Discard()).Fetch(context.Background(), "Test Artist")
	if err != nil {
		t.Fatal(err)
	}
	if p.releaseCalls["shared"] != 1 {
		t.Errorf("Expected release tracks fetched once, got %d", p.releaseCalls["shared"])
	}
	if len(cat.Tracks) != 1 {
		t.Errorf("Expected 1 track, got %d", len(cat.Tracks))
	}
}

func TestFetch_PaginatesUntilNoNextPage(t *testing.T) {
	static := newStatic()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("lp%d", i)
		static.AddRelease(artistID, domain.AlbumTypeAlbum, domain.Release{ID: id, Name: id},
			track(static, id+"-t", "Track", "ISRC"+id))
	}
	p := newFakeProvider(static)

	cat, err := NewCatalogFetcher(p, FetcherOptions{PageSize: 2}, logger.Discard()).Fetch(context.Background(), "Test Artist")
	if err != nil {
		t.Fatal(err)
	}

	offsets := p.releasePages[domain.AlbumTypeAlbum]
	if len(offsets) != 3 || offsets[0] != 0 || offsets[1] != 2 || offsets[2] != 4 {
		t.Errorf("Expected offsets 0,2,4, got %v", offsets)
	}
	if len(cat.Tracks) != 5 {
		t.Errorf("Expected 5 tracks, got %d", len(cat.Tracks))
	}

	// every category is enumerated, appears_on never
	for _, c := range domain.ReleaseCategories {
		if len(p.releasePages[c]) == 0 {
			t.Errorf("category %s never requested", c)
		}
	}
	if len(p.releasePages["appears_on"]) != 0 {
		t.Error("appears_on must not be requested")
	}
}

func TestFetch_FailingCategoryIsRecorded(t *testing.T) {
	static := newStatic()
	static.AddRelease(artistID, domain.AlbumTypeAlbum, domain.Release{ID: "lp", Name: "LP"}, track(static, "a", "A", "ISRC-A"))
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("s%d", i)
		static.AddRelease(artistID, domain.AlbumTypeSingle, domain.Release{ID: id, Name: id}, track(static, id+"-t", id, "ISRC-"+id))
	}
	static.AddRelease(artistID, domain.AlbumTypeCompilation, domain.Release{ID: "comp", Name: "Comp"}, track(static, "c", "C", "ISRC-C"))

	p := newFakeProvider(static)
	p.failCategory = domain.AlbumTypeSingle
	p.failAtOffset = 2

	cat, err := NewCatalogFetcher(p, FetcherOptions{PageSize: 2}, logger.Discard()).Fetch(context.Background(), "Test Artist")
	if err != nil {
		t.Fatalf("Fetch should survive a category failure, got %v", err)
	}

	if len(cat.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %+v", cat.Failures)
	}
	f := cat.Failures[0]
	if f.Category != domain.AlbumTypeSingle || f.Offset != 2 || f.Err == nil || f.Message == "" {
		t.Errorf("unexpected failure: %+v", f)
	}

	// album + first page of singles + compilation
	names := make(map[string]bool)
	for _, tr := range cat.Tracks {
		names[tr.TrackName] = true
	}
	for _, want := range []string{"A", "s0", "s1", "C"} {
		if !names[want] {
			t.Errorf("Expected track %s to be kept, got %v", want, names)
		}
	}
	if names["s2"] {
		t.Error("Track after the failed page should not be present")
	}
}

func TestFetch_KeepsTracksBeforeFailedLookup(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			static := newStatic()
			static.AddRelease(artistID, domain.AlbumTypeAlbum, domain.Release{ID: "lp", Name: "LP"},
				track(static, "t1", "One", "ISRC-1"),
				track(static, "t2", "Two", "ISRC-2"),
				track(static, "t3", "Three", "ISRC-3"),
			)
			p := newFakeProvider(static)
			p.failISRC["t3"] = true

			cat, err := NewCatalogFetcher(p, FetcherOptions{TrackWorkers: workers}, logger.Discard()).Fetch(context.Background(), "Test Artist")
			if err != nil {
				t.Fatalf("Fetch should survive a failed lookup, got %v", err)
			}
			if len(cat.Failures) != 1 || cat.Failures[0].Category != domain.AlbumTypeAlbum {
				t.Fatalf("Expected the album category to be recorded as failed, got %+v", cat.Failures)
			}
			if len(cat.Tracks) != 2 || cat.Tracks[0].TrackName != "One" || cat.Tracks[1].TrackName != "Two" {
				t.Errorf("Expected One and Two kept, got %+v", cat.Tracks)
			}
		})
	}
}

func TestNewCatalogFetcher_CapsPageSize(t *testing.T) {
	f := NewCatalogFetcher(newStatic(), FetcherOptions{PageSize: 200}, logger.Discard())
	if f.opts.PageSize != constants.MaxPageSize {
		t.Errorf("PageSize = %d, want %d", f.opts.PageSize, constants.MaxPageSize)
	}
}

func TestFetch_ArtistNotFound(t *testing.T) {
	p := newFakeProvider(newStatic())

	_, err := NewCatalogFetcher(p, FetcherOptions{}, logger.Discard()).Fetch(context.Background(), "Nobody")
	if !errors.Is(err, catalog.ErrArtistNotFound) {
		t.Errorf("Expected ErrArtistNotFound, got %v", err)
	}
	if len(p.releasePages) != 0 {
		t.Error("No releases should be requested for an unknown artist")
	}
}

func TestFetch_SearchTransportErrorIsFatal(t *testing.T) {
	p := newFakeProvider(newStatic())
	p.searchErr = errors.New("dial tcp: connection refused")

	_, err := NewCatalogFetcher(p, FetcherOptions{}, logger.Discard()).Fetch(context.Background(), "Test Artist")
	if err == nil || errors.Is(err, catalog.ErrArtistNotFound) {
		t.Errorf("Expected transport error, got %v", err)
	}
}

func TestFetch_ConcurrentLookupsKeepOrder(t *testing.T) {
	p := newStatic()
	var tracks []domain.ReleaseTrack
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("t%02d", i)
		tracks = append(tracks, track(p, id, id, "ISRC"+id))
	}
	p.AddRelease(artistID, domain.AlbumTypeAlbum, domain.Release{ID: "lp", Name: "LP"}, tracks...)

	cat, err := NewCatalogFetcher(p, FetcherOptions{TrackWorkers: 4}, logger.Discard()).Fetch(context.Background(), "Test Artist")
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Tracks) != 20 {
		t.Fatalf("Expected 20 tracks, got %d", len(cat.Tracks))
	}
	for i, tr := range cat.Tracks {
		if want := fmt.Sprintf("t%02d", i); tr.SpotifyID != want {
			t.Errorf("track %d = %s, want %s", i, tr.SpotifyID, want)
		}
	}
}

func TestFetch_Cancelled(t *testing.T) {
	p := newStatic()
	p.AddRelease(artistID, domain.AlbumTypeAlbum, domain.Release{ID: "lp", Name: "LP"}, track(p, "t", "T", "X"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// static provider ignores ctx, so cancellation surfaces through the category loop
	fp := newFakeProvider(p)
	fp.failCategory = domain.AlbumTypeAlbum
	fp.failAtOffset = 0

	_, err := NewCatalogFetcher(fp, FetcherOptions{}, logger.Discard()).Fetch(ctx, "Test Artist")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
