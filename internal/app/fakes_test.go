package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/catalog"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/store"
)

// fakeProvider wraps a static catalog with call counting and failure injection.
type fakeProvider struct {
	catalog.Provider

	mu            sync.Mutex
	searchErr     error
	failCategory  domain.AlbumType
	failAtOffset  int
	failISRC      map[string]bool
	releaseCalls  map[string]int
	releasePages  map[domain.AlbumType][]int
	searchedNames []string
}

func newFakeProvider(static *catalog.StaticProvider) *fakeProvider {
	return &fakeProvider{
		Provider:     static,
		failAtOffset: -1,
		failISRC:     make(map[string]bool),
		releaseCalls: make(map[string]int),
		releasePages: make(map[domain.AlbumType][]int),
	}
}

func (p *fakeProvider) SearchArtist(ctx context.Context, name string) (*domain.Artist, error) {
	p.mu.Lock()
	p.searchedNames = append(p.searchedNames, name)
	p.mu.Unlock()
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.Provider.SearchArtist(ctx, name)
}

func (p *fakeProvider) GetArtistReleases(ctx context.Context, artistID string, albumType domain.AlbumType, limit, offset int) (*domain.ReleasePage, error) {
	p.mu.Lock()
	p.releasePages[albumType] = append(p.releasePages[albumType], offset)
	p.mu.Unlock()
	if albumType == p.failCategory && offset == p.failAtOffset {
		return nil, errors.New("giving up after 3 attempts: transient response (status 503)")
	}
	return p.Provider.GetArtistReleases(ctx, artistID, albumType, limit, offset)
}

func (p *fakeProvider) GetReleaseTracks(ctx context.Context, releaseID string) ([]domain.ReleaseTrack, error) {
	p.mu.Lock()
	p.releaseCalls[releaseID]++
	p.mu.Unlock()
	return p.Provider.GetReleaseTracks(ctx, releaseID)
}

func (p *fakeProvider) GetTrackISRC(ctx context.Context, trackID string) (string, error) {
	if p.failISRC[trackID] {
		return "", fmt.Errorf("track %s: status 500", trackID)
	}
	return p.Provider.GetTrackISRC(ctx, trackID)
}

// countingLookup is an in-memory WorkStore that records every lookup.
type countingLookup struct {
	mu     sync.Mutex
	works  map[string][]domain.UnclaimedWork
	looked []string
}

func newCountingLookup(works ...domain.UnclaimedWork) *countingLookup {
	c := &countingLookup{works: make(map[string][]domain.UnclaimedWork)}
	for _, w := range works {
		c.works[w.ISRC] = append(c.works[w.ISRC], w)
	}
	return c
}

func (c *countingLookup) FirstWorkByISRC(ctx context.Context, isrc string) (*domain.UnclaimedWork, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.looked = append(c.looked, isrc)
	ws := c.works[isrc]
	if len(ws) == 0 {
		return nil, store.ErrNotFound
	}
	w := ws[0]
	return &w, nil
}

func (c *countingLookup) CountWorks(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, ws := range c.works {
		n += int64(len(ws))
	}
	return n, nil
}

// track builds a release track and registers its ISRC.
func track(p *catalog.StaticProvider, id, name, isrc string) domain.ReleaseTrack {
	if isrc != "" {
		p.SetISRC(id, isrc)
	}
	return domain.ReleaseTrack{ID: id, Name: name, DurationMs: 180000, URL: fmt.Sprintf("https://open.spotify.com/track/%s", id)}
}
