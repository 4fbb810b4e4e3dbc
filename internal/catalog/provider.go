// Package catalog talks to the music catalog API that supplies an artist's
// releases, tracks and ISRCs.
package catalog

import (
	"context"
	"errors"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
)

// ErrArtistNotFound is returned when an artist search has no result.
var ErrArtistNotFound = errors.New("artist not found")

type Provider interface {
	// SearchArtist returns the top search result for name.
	SearchArtist(ctx context.Context, name string) (*domain.Artist, error)
	// GetArtistReleases returns one page of the artist's releases of one type.
	GetArtistReleases(ctx context.Context, artistID string, albumType domain.AlbumType, limit, offset int) (*domain.ReleasePage, error)
	// GetReleaseTracks returns every track listed on a release.
	GetReleaseTracks(ctx context.Context, releaseID string) ([]domain.ReleaseTrack, error)
	// GetTrackISRC returns the ISRC of a track, or "" when it has none.
	GetTrackISRC(ctx context.Context, trackID string) (string, error)
}
