// Package report renders an analysis into a formatted spreadsheet.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
)

var catalogHeader = []interface{}{
	"track_name", "album", "album_type", "release_date", "isrc", "duration_ms", "spotify_id", "spotify_url",
}

var matchesHeader = []interface{}{
	"track_name", "album", "release_date", "isrc", "spotify_url",
	"unclaimed_title", "unclaimed_artist", "unclaimed_duration", "unclaimed_record_id", "unclaimed_share_percentage",
}

const (
	interpretation = "Matches indicate songs that may have unclaimed royalties or rights issues."
	apiInfo        = "Retrieved via the Spotify Web API with full catalog access"
	methodNote     = "ISRC codes used as primary matching key. Analysis performed using SQLite for efficient searching."
	dateLayout     = "2006-01-02 15:04:05"
)

// Build assembles the three-sheet workbook. The caller must close it.
func Build(tracks []domain.CatalogTrack, matches []domain.MatchRecord, s domain.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			_ = f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", constants.SheetCatalog); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeCatalog(f, tracks); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(constants.SheetMatches); err != nil {
		return nil, fmt.Errorf("create matches sheet: %w", err)
	}
	if err := writeMatches(f, matches); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(constants.SheetSummary); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, s); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	ok = true
	return f, nil
}

// Write renders the workbook to w.
func Write(w io.Writer, tracks []domain.CatalogTrack, matches []domain.MatchRecord, s domain.Summary) error {
	f, err := Build(tracks, matches, s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook under dir using FileName and returns its path.
func WriteFile(dir string, tracks []domain.CatalogTrack, matches []domain.MatchRecord, s domain.Summary) (string, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f, err := Build(tracks, matches, s)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(s.ArtistName))
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	if err := f.Write(out); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("save workbook: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// FileName returns the report file name for an artist, with spaces turned
// into underscores and characters unsafe in paths removed.
func FileName(artist string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(constants.InvalidPathChars, r) || r < 0x20 {
			return -1
		}
		if r == ' ' {
			return '_'
		}
		return r
	}, strings.TrimSpace(artist))
	if name == "" {
		name = "artist"
	}
	return name + constants.ReportSuffix
}

func writeCatalog(f *excelize.File, tracks []domain.CatalogTrack) error {
	sheet := constants.SheetCatalog
	if err := writeRow(f, sheet, 1, catalogHeader); err != nil {
		return err
	}
	for i, t := range tracks {
		row := []interface{}{
			t.TrackName, t.Album, string(t.AlbumType), t.ReleaseDate, t.ISRC, t.DurationMs, t.SpotifyID, t.SpotifyURL,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, sheet, len(catalogHeader), &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: constants.HeaderFontColor},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{constants.CatalogHeaderColor}},
	}); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "H", 24)
}

func writeMatches(f *excelize.File, matches []domain.MatchRecord) error {
	sheet := constants.SheetMatches
	header := matchesHeader
	if len(matches) == 0 {
		header = []interface{}{"Message"}
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	if len(matches) == 0 {
		if err := writeRow(f, sheet, 2, []interface{}{constants.NoMatchesMessage}); err != nil {
			return err
		}
	}

	for i, m := range matches {
		row := []interface{}{
			m.TrackName, m.Album, m.ReleaseDate, m.ISRC, m.SpotifyURL,
			m.UnclaimedTitle, m.UnclaimedArtist, intOrBlank(m.UnclaimedDuration), m.UnclaimedRecordID,
			floatOrBlank(m.UnclaimedSharePercentage),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := styleHeader(f, sheet, len(header), &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: constants.HeaderFontColor},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{constants.MatchesHeaderColor}},
	}); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", last, 24)
}

func writeSummary(f *excelize.File, s domain.Summary) error {
	sheet := constants.SheetSummary
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Artist Name", s.ArtistName},
		{"Analysis Date", s.AnalyzedAt.Format(dateLayout)},
		{"Run ID", s.RunID},
		{"Total Tracks in Catalog", s.TotalTracks},
		{"Tracks with ISRCs", s.WithISRC},
		{"Tracks without ISRCs", s.WithoutISRC},
		{"Matches Found in Unclaimed Works", s.Matches},
		{"Match Rate", s.MatchRate},
		{"", ""},
		{"Interpretation", interpretation},
		{"", ""},
		{"Database Info", fmt.Sprintf("Unclaimed works store: %s rows", humanize.Comma(s.StoreRows))},
		{"Spotify API", apiInfo},
	}
	if s.Failures > 0 {
		rows = append(rows, []interface{}{"Incomplete Categories", s.Failures})
	}
	rows = append(rows, []interface{}{"", ""}, []interface{}{"Notes", methodNote})
	for _, n := range s.Notes {
		rows = append(rows, []interface{}{"", n})
	}

	for i, r := range rows {
		if err := writeRow(f, sheet, i+1, r); err != nil {
			return err
		}
	}
	if err := styleHeader(f, sheet, 2, &excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 34); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 90)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols int, style *excelize.Style) error {
	id, err := f.NewStyle(style)
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, id)
}

func intOrBlank(v *int64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
