package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/catalog"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

type FetcherOptions struct {
	PageSize     int
	PageDelay    time.Duration
	TrackWorkers int // concurrent ISRC lookups within one release
}

// CatalogFetcher collects an artist's full discography from a Provider.
type CatalogFetcher struct {
	provider catalog.Provider
	opts     FetcherOptions
	logger   *logger.Logger
}

func NewCatalogFetcher(provider catalog.Provider, opts FetcherOptions, log *logger.Logger) *CatalogFetcher {
	if opts.PageSize <= 0 {
		opts.PageSize = constants.DefaultPageSize
	}
	// offsets advance by PageSize, so it cannot exceed what one API page returns
	if opts.PageSize > constants.MaxPageSize {
		opts.PageSize = constants.MaxPageSize
	}
	if opts.PageDelay < 0 {
		opts.PageDelay = 0
	}
	if opts.TrackWorkers <= 0 {
		opts.TrackWorkers = constants.DefaultTrackWorkers
	}
	return &CatalogFetcher{
		provider: provider,
		opts:     opts,
		logger:   logger.OrDefault(log).WithComponent("fetcher"),
	}
}

// WithLogger returns a copy of the fetcher that logs to l.
func (f *CatalogFetcher) WithLogger(l *logger.Logger) *CatalogFetcher {
	c := *f
	c.logger = l.WithComponent("fetcher")
	return &c
}

// Fetch resolves artistName and returns its deduplicated tracks across all
// release categories. A failing category is recorded in Catalog.Failures and
// does not stop the others; cancellation of ctx stops everything.
func (f *CatalogFetcher) Fetch(ctx context.Context, artistName string) (*domain.Catalog, error) {
	artist, err := f.provider.SearchArtist(ctx, artistName)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Found artist", "artist_id", artist.ID, "name", artist.Name, "uri", artist.URI, "followers", artist.Followers)

	seen := make(map[string]struct{})
	var tracks []domain.CatalogTrack
	var failures []domain.CategoryFailure

	for _, category := range domain.ReleaseCategories {
		collected, failure, err := f.fetchCategory(ctx, artist.ID, category, seen)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, collected...)
		if failure != nil {
			failures = append(failures, *failure)
		}
	}

	unique := domain.DedupeByISRC(tracks)
	f.logger.Info("Retrieved catalog",
		"tracks", len(tracks),
		"unique_tracks", len(unique),
		"failed_categories", len(failures),
	)

	return &domain.Catalog{
		Artist:   *artist,
		Tracks:   unique,
		Failures: failures,
	}, nil
}

// fetchCategory pages through one release category. The returned error is
// non-nil only when ctx is done; other failures come back as a CategoryFailure
// together with the tracks collected up to that point.
func (f *CatalogFetcher) fetchCategory(ctx context.Context, artistID string, category domain.AlbumType, seen map[string]struct{}) ([]domain.CatalogTrack, *domain.CategoryFailure, error) {
	log := f.logger.WithCategory(string(category))

	var tracks []domain.CatalogTrack
	fail := func(offset int, err error) ([]domain.CatalogTrack, *domain.CategoryFailure, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		log.Error("Category aborted", "offset", offset, "error", err, "tracks_kept", len(tracks))
		return tracks, &domain.CategoryFailure{Category: category, Offset: offset, Err: err, Message: err.Error()}, nil
	}

	offset := 0
	for {
		page, err := f.provider.GetArtistReleases(ctx, artistID, category, f.opts.PageSize, offset)
		if err != nil {
			return fail(offset, err)
		}
		log.Debug("Fetched releases page", "offset", offset, "releases", len(page.Releases))

		for _, release := range page.Releases {
			if _, dup := seen[release.ID]; dup {
				continue
			}
			seen[release.ID] = struct{}{}

			if release.AlbumType == "" {
				release.AlbumType = category
			}
			rt, err := f.releaseTracks(ctx, log, release)
			tracks = append(tracks, rt...)
			if err != nil {
				return fail(offset, err)
			}
		}

		if !page.HasNext {
			break
		}
		offset += f.opts.PageSize

		if err := sleepCtx(ctx, f.opts.PageDelay); err != nil {
			return nil, nil, err
		}
	}

	log.Info("Category complete", "tracks", len(tracks))
	return tracks, nil, nil
}

// releaseTracks lists a release and looks up the ISRC of each track. On a
// failed lookup it returns the tracks resolved so far, in listing order,
// together with the error.
func (f *CatalogFetcher) releaseTracks(ctx context.Context, log *logger.Logger, release domain.Release) ([]domain.CatalogTrack, error) {
	listing, err := f.provider.GetReleaseTracks(ctx, release.ID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CatalogTrack, len(listing))
	done := make([]bool, len(listing))
	lookup := func(ctx context.Context, i int) error {
		rt := listing[i]
		isrc, err := f.provider.GetTrackISRC(ctx, rt.ID)
		if err != nil {
			return fmt.Errorf("isrc for track %s on %q: %w", rt.ID, release.Name, err)
		}
		out[i] = domain.CatalogTrack{
			TrackName:   rt.Name,
			Album:       release.Name,
			AlbumType:   release.AlbumType,
			ReleaseDate: release.ReleaseDate,
			ISRC:        domain.NormalizeISRC(isrc),
			DurationMs:  rt.DurationMs,
			SpotifyID:   rt.ID,
			SpotifyURL:  rt.URL,
		}
		done[i] = true
		log.Debug("Added track", "track", rt.Name, "isrc", out[i].ISRC, "release", release.Name)
		return nil
	}

	if f.opts.TrackWorkers == 1 {
		for i := range listing {
			if err := lookup(ctx, i); err != nil {
				return out[:i], err
			}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.TrackWorkers)
	for i := range listing {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return lookup(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		resolved := make([]domain.CatalogTrack, 0, len(out))
		for i, ok := range done {
			if ok {
				resolved = append(resolved, out[i])
			}
		}
		return resolved, err
	}
	return out, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
