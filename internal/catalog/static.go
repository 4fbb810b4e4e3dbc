package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
)

// StaticProvider serves a fixed in-memory catalog. Artist search is a
// case-insensitive exact name match.
type StaticProvider struct {
	mu       sync.RWMutex
	artists  []domain.Artist
	releases map[string]map[domain.AlbumType][]domain.Release
	tracks   map[string][]domain.ReleaseTrack
	isrcs    map[string]string
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		releases: make(map[string]map[domain.AlbumType][]domain.Release),
		tracks:   make(map[string][]domain.ReleaseTrack),
		isrcs:    make(map[string]string),
	}
}

// AddArtist registers an artist for search.
func (p *StaticProvider) AddArtist(a domain.Artist) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artists = append(p.artists, a)
}

// AddRelease lists a release under the artist and category. The same release
// may be added under several categories.
func (p *StaticProvider) AddRelease(artistID string, category domain.AlbumType, r domain.Release, tracks ...domain.ReleaseTrack) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.releases[artistID] == nil {
		p.releases[artistID] = make(map[domain.AlbumType][]domain.Release)
	}
	if r.AlbumType == "" {
		r.AlbumType = category
	}
	p.releases[artistID][category] = append(p.releases[artistID][category], r)
	if len(tracks) > 0 {
		p.tracks[r.ID] = tracks
	}
}

// SetISRC sets the ISRC returned for a track id.
func (p *StaticProvider) SetISRC(trackID, isrc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isrcs[trackID] = isrc
}

func (p *StaticProvider) SearchArtist(ctx context.Context, name string) (*domain.Artist, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, a := range p.artists {
		if strings.EqualFold(a.Name, name) {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrArtistNotFound, name)
}

func (p *StaticProvider) GetArtistReleases(ctx context.Context, artistID string, albumType domain.AlbumType, limit, offset int) (*domain.ReleasePage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	all := p.releases[artistID][albumType]
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	page := &domain.ReleasePage{
		Releases: append([]domain.Release(nil), all[offset:end]...),
		HasNext:  end < len(all),
	}
	return page, nil
}

func (p *StaticProvider) GetReleaseTracks(ctx context.Context, releaseID string) ([]domain.ReleaseTrack, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]domain.ReleaseTrack(nil), p.tracks[releaseID]...), nil
}

func (p *StaticProvider) GetTrackISRC(ctx context.Context, trackID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isrcs[trackID], nil
}
