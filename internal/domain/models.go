package domain

import (
	"time"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
)

// UnclaimedWork is one row of the unclaimed right-shares dataset.
// Field order matches the source file column order.
type UnclaimedWork struct { //nolint:govet // field ordering mirrors the source columns
	ID                            int64    `json:"id" db:"id"`
	RightShareRecordID            string   `json:"right_share_record_id" db:"right_share_record_id"`
	ResourceRecordID              string   `json:"resource_record_id" db:"resource_record_id"`
	MusicalWorkRecordID           string   `json:"musical_work_record_id" db:"musical_work_record_id"`
	ISRC                          string   `json:"isrc" db:"isrc"`
	DspResourceID                 string   `json:"dsp_resource_id" db:"dsp_resource_id"`
	ResourceTitle                 string   `json:"resource_title" db:"resource_title"`
	ResourceSubTitle              string   `json:"resource_sub_title" db:"resource_sub_title"`
	AlternativeResourceTitle      string   `json:"alternative_resource_title" db:"alternative_resource_title"`
	DisplayArtistName             string   `json:"display_artist_name" db:"display_artist_name"`
	DisplayArtistISNI             string   `json:"display_artist_isni" db:"display_artist_isni"`
	Duration                      *int64   `json:"duration" db:"duration"`
	UnclaimedRightSharePercentage *float64 `json:"unclaimed_right_share_percentage" db:"unclaimed_right_share_percentage"`
	PercentileForPrioritisation   *float64 `json:"percentile_for_prioritisation" db:"percentile_for_prioritisation"`
}

// AlbumType is the release category requested from the catalog API.
type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeCompilation AlbumType = "compilation"
)

// ReleaseCategories lists the categories enumerated for an artist, in order.
// "appears_on" is intentionally absent.
var ReleaseCategories = []AlbumType{AlbumTypeAlbum, AlbumTypeSingle, AlbumTypeCompilation}

// Artist is the canonical artist resolved from a name search.
type Artist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URI       string `json:"uri"`
	URL       string `json:"url"`
	Followers int    `json:"followers"`
}

// Release is an album, single or compilation listed for an artist.
type Release struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AlbumType   AlbumType `json:"album_type"`
	ReleaseDate string    `json:"release_date"`
}

// ReleasePage is one page of an artist's releases.
type ReleasePage struct {
	Releases []Release
	HasNext  bool
}

// ReleaseTrack is a track as listed on a release, before the ISRC lookup.
type ReleaseTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMs int    `json:"duration_ms"`
	URL        string `json:"url"`
}

// CatalogTrack is a track of the artist's discography annotated with its ISRC.
type CatalogTrack struct {
	TrackName   string    `json:"track_name"`
	Album       string    `json:"album"`
	AlbumType   AlbumType `json:"album_type"`
	ReleaseDate string    `json:"release_date"`
	ISRC        string    `json:"isrc"`
	DurationMs  int       `json:"duration_ms"`
	SpotifyID   string    `json:"spotify_id"`
	SpotifyURL  string    `json:"spotify_url"`
}

// HasISRC reports whether the track carries a real ISRC.
func (t CatalogTrack) HasISRC() bool {
	return t.ISRC != constants.ISRCNotAvailable
}

// CategoryFailure records a release category whose enumeration was cut short.
type CategoryFailure struct {
	Err      error     `json:"-"`
	Category AlbumType `json:"category"`
	Message  string    `json:"error"`
	Offset   int       `json:"offset"`
}

// Catalog is the deduplicated discography of one artist.
type Catalog struct {
	Artist   Artist            `json:"artist"`
	Tracks   []CatalogTrack    `json:"tracks"`
	Failures []CategoryFailure `json:"failures,omitempty"`
}

// MatchRecord pairs a catalog track with the first unclaimed work sharing its ISRC.
type MatchRecord struct {
	TrackName                string   `json:"track_name"`
	Album                    string   `json:"album"`
	ReleaseDate              string   `json:"release_date"`
	ISRC                     string   `json:"isrc"`
	SpotifyURL               string   `json:"spotify_url"`
	UnclaimedTitle           string   `json:"unclaimed_title"`
	UnclaimedArtist          string   `json:"unclaimed_artist"`
	UnclaimedDuration        *int64   `json:"unclaimed_duration"`
	UnclaimedRecordID        string   `json:"unclaimed_record_id"`
	UnclaimedSharePercentage *float64 `json:"unclaimed_share_percentage"`
}

// NewMatchRecord joins a catalog track with a store row.
func NewMatchRecord(t CatalogTrack, w UnclaimedWork) MatchRecord {
	return MatchRecord{
		TrackName:                t.TrackName,
		Album:                    t.Album,
		ReleaseDate:              t.ReleaseDate,
		ISRC:                     t.ISRC,
		SpotifyURL:               t.SpotifyURL,
		UnclaimedTitle:           w.ResourceTitle,
		UnclaimedArtist:          w.DisplayArtistName,
		UnclaimedDuration:        w.Duration,
		UnclaimedRecordID:        w.RightShareRecordID,
		UnclaimedSharePercentage: w.UnclaimedRightSharePercentage,
	}
}

// NormalizeISRC maps an empty ISRC to the sentinel. Anything else is kept
// as returned by the API.
func NormalizeISRC(isrc string) string {
	if isrc == "" {
		return constants.ISRCNotAvailable
	}
	return isrc
}

// DedupeByISRC keeps the first track for each ISRC, preserving order.
// Tracks with the sentinel ISRC are all kept.
func DedupeByISRC(tracks []CatalogTrack) []CatalogTrack {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]CatalogTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.HasISRC() {
			if _, dup := seen[t.ISRC]; dup {
				continue
			}
			seen[t.ISRC] = struct{}{}
		}
		out = append(out, t)
	}
	return out
}

// Summary is the headline of one analysis run.
type Summary struct {
	AnalyzedAt  time.Time `json:"analyzed_at"`
	RunID       string    `json:"run_id"`
	ArtistName  string    `json:"artist_name"`
	MatchRate   string    `json:"match_rate"`
	Notes       []string  `json:"notes,omitempty"`
	TotalTracks int       `json:"total_tracks"`
	WithISRC    int       `json:"with_isrc"`
	WithoutISRC int       `json:"without_isrc"`
	Matches     int       `json:"matches"`
	Failures    int       `json:"category_failures"`
	StoreRows   int64     `json:"store_rows"`
}
