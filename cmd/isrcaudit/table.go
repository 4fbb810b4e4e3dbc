package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/app"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/ingest"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func renderMetrics(rows [][]string) string {
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func analysisTable(res *app.Analysis, reportPath string) string {
	s := res.Summary
	rows := [][]string{
		{"Artist", s.ArtistName},
		{"Spotify URL", res.Catalog.Artist.URL},
		{"Total Tracks", humanize.Comma(int64(s.TotalTracks))},
		{"Tracks with ISRC", humanize.Comma(int64(s.WithISRC))},
		{"Tracks without ISRC", humanize.Comma(int64(s.WithoutISRC))},
		{"Unclaimed Matches", humanize.Comma(int64(s.Matches))},
		{"Match Rate", s.MatchRate},
		{"Store Rows", humanize.Comma(s.StoreRows)},
	}
	if s.Failures > 0 {
		rows = append(rows, []string{"Incomplete Categories", strconv.Itoa(s.Failures)})
	}
	rows = append(rows, []string{"Report", reportPath})
	return renderMetrics(rows)
}

func loadStatsTable(stats *ingest.LoadStats, dbPath string) string {
	rows := [][]string{
		{"Store", dbPath},
		{"Rows Loaded", humanize.Comma(stats.Rows)},
		{"Lines Skipped", humanize.Comma(stats.Skipped)},
	}
	reasons := make([]string, 0, len(stats.SkippedByReason))
	for reason := range stats.SkippedByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		rows = append(rows, []string{"  " + reason, humanize.Comma(int64(stats.SkippedByReason[reason]))})
	}
	rows = append(rows,
		[]string{"Numbers Coerced to NULL", humanize.Comma(stats.CoercedNumbers)},
		[]string{"Chunks", strconv.Itoa(stats.Chunks)},
		[]string{"Bytes Read", humanize.Bytes(uint64(stats.Bytes))},
		[]string{"Elapsed", stats.Elapsed.Round(time.Millisecond).String()},
	)
	return renderMetrics(rows)
}

func worksTable(works []domain.UnclaimedWork) string {
	headers := []string{"Record ID", "ISRC", "Title", "Artist", "Duration", "Unclaimed %", "Percentile"}
	rows := make([][]string, 0, len(works))
	for _, w := range works {
		rows = append(rows, []string{
			w.RightShareRecordID,
			w.ISRC,
			w.ResourceTitle,
			w.DisplayArtistName,
			optionalInt(w.Duration),
			optionalFloat(w.UnclaimedRightSharePercentage),
			optionalFloat(w.PercentileForPrioritisation),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight})
}

func optionalInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
