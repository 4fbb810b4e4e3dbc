package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
)

// Source column positions.
const (
	colRightShareRecordID = iota
	colResourceRecordID
	colMusicalWorkRecordID
	colISRC
	colDspResourceID
	colResourceTitle
	colResourceSubTitle
	colAlternativeResourceTitle
	colDisplayArtistName
	colDisplayArtistISNI
	colDuration
	colUnclaimedRightSharePercentage
	colPercentileForPrioritisation
)

const numColumns = constants.SourceColumns

// parseWork maps source fields to a work by position. It returns the number
// of non-empty numeric fields that could not be parsed and were stored as NULL.
func parseWork(fields []string) (domain.UnclaimedWork, int) {
	coerced := 0

	duration, bad := parseInt(fields[colDuration])
	if bad {
		coerced++
	}
	share, bad := parseFloat(fields[colUnclaimedRightSharePercentage])
	if bad {
		coerced++
	}
	percentile, bad := parseFloat(fields[colPercentileForPrioritisation])
	if bad {
		coerced++
	}

	return domain.UnclaimedWork{
		RightShareRecordID:            fields[colRightShareRecordID],
		ResourceRecordID:              fields[colResourceRecordID],
		MusicalWorkRecordID:           fields[colMusicalWorkRecordID],
		ISRC:                          fields[colISRC],
		DspResourceID:                 fields[colDspResourceID],
		ResourceTitle:                 fields[colResourceTitle],
		ResourceSubTitle:              fields[colResourceSubTitle],
		AlternativeResourceTitle:      fields[colAlternativeResourceTitle],
		DisplayArtistName:             fields[colDisplayArtistName],
		DisplayArtistISNI:             fields[colDisplayArtistISNI],
		Duration:                      duration,
		UnclaimedRightSharePercentage: share,
		PercentileForPrioritisation:   percentile,
	}, coerced
}

// parseInt accepts integers and float spellings of integers ("215000.0"),
// truncating any fraction. Empty input is NULL and not reported as bad.
func parseInt(s string) (*int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
		return nil, true
	}
	n := int64(f)
	return &n, false
}

func parseFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, true
	}
	return &f, false
}
