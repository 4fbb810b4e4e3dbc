package domain

import (
	"fmt"
	"time"
)

// MatchRate formats matches as a percentage of total. "0%" when either is zero.
func MatchRate(matches, total int) string {
	if total == 0 || matches == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(matches)/float64(total)*100)
}

// Summarize computes the run summary from a catalog and its matches.
func Summarize(runID string, c Catalog, matches []MatchRecord, storeRows int64, at time.Time) Summary {
	s := Summary{
		AnalyzedAt:  at,
		RunID:       runID,
		ArtistName:  c.Artist.Name,
		TotalTracks: len(c.Tracks),
		Matches:     len(matches),
		Failures:    len(c.Failures),
		StoreRows:   storeRows,
	}
	for _, t := range c.Tracks {
		if t.HasISRC() {
			s.WithISRC++
		} else {
			s.WithoutISRC++
		}
	}
	s.MatchRate = MatchRate(s.Matches, s.TotalTracks)

	for _, f := range c.Failures {
		s.Notes = append(s.Notes, fmt.Sprintf("%s releases incomplete after offset %d: %s", f.Category, f.Offset, f.Message))
	}
	return s
}
