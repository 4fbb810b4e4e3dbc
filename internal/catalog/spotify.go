package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/httpclient"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

// SpotifyConfig holds what is needed to reach the Spotify Web API.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	Market       string
	BaseURL      string // API root, empty for the public endpoint
	TokenURL     string // empty for Spotify's accounts service
	HTTP         httpclient.Options
}

// SpotifyProvider implements Provider over the Spotify Web API.
type SpotifyProvider struct {
	client *spotify.Client
	market string
	logger *logger.Logger
}

// NewSpotifyClient authenticates with the client-credentials flow and returns
// an API client. The first token is fetched eagerly so bad credentials fail here.
func NewSpotifyClient(ctx context.Context, cfg SpotifyConfig) (*spotify.Client, error) {
	base := httpclient.NewClient(cfg.HTTP)

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	// The token source outlives ctx; only its values are kept.
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, base)

	tok, err := creds.Token(context.WithValue(ctx, oauth2.HTTPClient, base))
	if err != nil {
		return nil, fmt.Errorf("spotify authentication failed: %w", err)
	}

	authed := oauth2.NewClient(tokenCtx, oauth2.ReuseTokenSource(tok, creds.TokenSource(tokenCtx)))

	var opts []spotify.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}
	return spotify.New(authed, opts...), nil
}

func NewSpotifyProvider(client *spotify.Client, market string, log *logger.Logger) *SpotifyProvider {
	if market == "" {
		market = constants.DefaultMarket
	}
	return &SpotifyProvider{
		client: client,
		market: market,
		logger: logger.OrDefault(log).WithComponent("spotify"),
	}
}

func (p *SpotifyProvider) SearchArtist(ctx context.Context, name string) (*domain.Artist, error) {
	res, err := p.client.Search(ctx, "artist:"+name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("search artist %q: %w", name, err)
	}
	if res.Artists == nil || len(res.Artists.Artists) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrArtistNotFound, name)
	}

	a := res.Artists.Artists[0]
	return &domain.Artist{
		ID:        string(a.ID),
		Name:      a.Name,
		URI:       string(a.URI),
		URL:       a.ExternalURLs[constants.ExternalURLKey],
		Followers: int(a.Followers.Count),
	}, nil
}

func (p *SpotifyProvider) GetArtistReleases(ctx context.Context, artistID string, albumType domain.AlbumType, limit, offset int) (*domain.ReleasePage, error) {
	t, err := toSpotifyAlbumType(albumType)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	page, err := p.client.GetArtistAlbums(ctx, spotify.ID(artistID), []spotify.AlbumType{t},
		spotify.Limit(limit),
		spotify.Offset(offset),
		spotify.Market(p.market),
	)
	if err != nil {
		return nil, fmt.Errorf("get %s releases at offset %d: %w", albumType, offset, err)
	}

	out := &domain.ReleasePage{
		Releases: make([]domain.Release, 0, len(page.Albums)),
		HasNext:  page.Next != "",
	}
	for _, al := range page.Albums {
		kind := domain.AlbumType(strings.ToLower(al.AlbumType))
		if kind == "" {
			kind = albumType
		}
		out.Releases = append(out.Releases, domain.Release{
			ID:          string(al.ID),
			Name:        al.Name,
			AlbumType:   kind,
			ReleaseDate: al.ReleaseDate,
		})
	}
	return out, nil
}

func (p *SpotifyProvider) GetReleaseTracks(ctx context.Context, releaseID string) ([]domain.ReleaseTrack, error) {
	page, err := p.client.GetAlbumTracks(ctx, spotify.ID(releaseID),
		spotify.Limit(constants.DefaultPageSize),
		spotify.Market(p.market),
	)
	if err != nil {
		return nil, fmt.Errorf("get tracks of release %s: %w", releaseID, err)
	}

	var tracks []domain.ReleaseTrack
	for {
		for _, t := range page.Tracks {
			tracks = append(tracks, domain.ReleaseTrack{
				ID:         string(t.ID),
				Name:       t.Name,
				DurationMs: int(t.Duration),
				URL:        t.ExternalURLs[constants.ExternalURLKey],
			})
		}

		err = p.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return tracks, fmt.Errorf("release %s pagination error: %w", releaseID, err)
		}
	}
	return tracks, nil
}

func (p *SpotifyProvider) GetTrackISRC(ctx context.Context, trackID string) (string, error) {
	t, err := p.client.GetTrack(ctx, spotify.ID(trackID), spotify.Market(p.market))
	if err != nil {
		return "", fmt.Errorf("get track %s: %w", trackID, err)
	}
	return t.ExternalIDs[constants.ExternalISRCKey], nil
}

func toSpotifyAlbumType(t domain.AlbumType) (spotify.AlbumType, error) {
	switch t {
	case domain.AlbumTypeAlbum:
		return spotify.AlbumTypeAlbum, nil
	case domain.AlbumTypeSingle:
		return spotify.AlbumTypeSingle, nil
	case domain.AlbumTypeCompilation:
		return spotify.AlbumTypeCompilation, nil
	}
	return 0, fmt.Errorf("unsupported release category %q", t)
}
