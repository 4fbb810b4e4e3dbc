// Package ingest loads the unclaimed works TSV into the store.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
)

// ErrStoreLocked is returned when another loader holds the store lock.
var ErrStoreLocked = errors.New("store is locked by another ingest")

// Skip reasons reported in LoadStats.SkippedByReason.
const (
	SkipColumnCount = "column_count"
	SkipEncoding    = "encoding"
)

// WorkWriter is the part of the store the loader writes to.
type WorkWriter interface {
	Rebuild(ctx context.Context) error
	InsertWorks(ctx context.Context, works []domain.UnclaimedWork) error
	Path() string
}

type Options struct {
	ChunkSize    int
	HasHeader    bool
	ShowProgress bool
}

// LoadStats describes a completed load.
type LoadStats struct {
	SkippedByReason map[string]int
	Rows            int64
	Skipped         int64
	Chunks          int
	CoercedNumbers  int64
	Bytes           int64
	Elapsed         time.Duration
}

type Loader struct {
	store  WorkWriter
	opts   Options
	logger *logger.Logger
}

func NewLoader(store WorkWriter, opts Options, log *logger.Logger) *Loader {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = constants.DefaultChunkSize
	}
	return &Loader{
		store:  store,
		opts:   opts,
		logger: logger.OrDefault(log).WithComponent("loader"),
	}
}

// Load drops and rebuilds the works table from the file at path.
// Each chunk commits on its own; a failure part way leaves earlier chunks.
func (l *Loader) Load(ctx context.Context, path string) (*LoadStats, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	unlock, err := l.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	if err := l.store.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("rebuild store: %w", err)
	}

	counter := &countingReader{r: f}
	var src io.Reader = counter
	if l.opts.ShowProgress {
		bar := progressbar.DefaultBytes(size, "ingesting")
		defer bar.Finish() //nolint:errcheck // cosmetic
		src = io.TeeReader(counter, bar)
	}

	reader := bufio.NewReaderSize(
		transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())),
		1<<20,
	)

	stats := &LoadStats{SkippedByReason: make(map[string]int)}
	chunk := make([]domain.UnclaimedWork, 0, l.opts.ChunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := l.store.InsertWorks(ctx, chunk); err != nil {
			return fmt.Errorf("insert chunk %d: %w", stats.Chunks+1, err)
		}
		stats.Chunks++
		stats.Rows += int64(len(chunk))
		chunk = chunk[:0]
		l.logger.Info(fmt.Sprintf("Processed %s rows", humanize.Comma(stats.Rows)), "chunk", stats.Chunks)
		return nil
	}

	lineNo := 0
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return stats, fmt.Errorf("read line %d: %w", lineNo+1, readErr)
		}
		if readErr == io.EOF && line == "" {
			break
		}
		lineNo++

		line = strings.TrimRight(line, "\r\n")
		switch {
		case lineNo == 1 && l.opts.HasHeader:
			// header, names are not checked
		case line == "":
		default:
			if reason := l.addLine(line, &chunk, stats); reason != "" {
				l.skip(stats, lineNo, reason)
			}
		}

		if len(chunk) >= l.opts.ChunkSize {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if err := flush(); err != nil {
				return stats, err
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	stats.Bytes = counter.n
	stats.Elapsed = time.Since(start)

	l.logger.Info("Ingest complete",
		"rows", humanize.Comma(stats.Rows),
		"skipped", stats.Skipped,
		"coerced_numbers", stats.CoercedNumbers,
		"chunks", stats.Chunks,
		"bytes", humanize.Bytes(uint64(stats.Bytes)),
		"elapsed", stats.Elapsed.Round(time.Millisecond),
	)
	return stats, nil
}

// addLine parses a line onto the chunk. It returns a skip reason, or "" when
// the line was accepted.
func (l *Loader) addLine(line string, chunk *[]domain.UnclaimedWork, stats *LoadStats) string {
	if strings.ContainsRune(line, utf8.RuneError) {
		return SkipEncoding
	}
	fields := strings.Split(line, "\t")
	if len(fields) != numColumns {
		return SkipColumnCount
	}
	work, coerced := parseWork(fields)
	stats.CoercedNumbers += int64(coerced)
	*chunk = append(*chunk, work)
	return ""
}

func (l *Loader) skip(stats *LoadStats, lineNo int, reason string) {
	stats.Skipped++
	stats.SkippedByReason[reason]++
	if stats.Skipped <= constants.MaxSkipWarnings {
		l.logger.Warn("Skipping malformed line", "line", lineNo, "reason", reason)
	} else {
		l.logger.Debug("Skipping malformed line", "line", lineNo, "reason", reason)
	}
}

func (l *Loader) lock() (func(), error) {
	path := l.store.Path()
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.HasPrefix(path, "file::memory:") {
		return func() {}, nil
	}

	fl := flock.New(path + constants.LockSuffix)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoreLocked, fl.Path())
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			l.logger.Warn("failed to release store lock", "error", err)
		}
	}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
