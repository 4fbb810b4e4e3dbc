// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultDBPath       = "unclaimed_works.db"
	DefaultOutputDir    = "."
	DefaultPort         = "8080"
	DefaultMarket       = "US"
	DefaultChunkSize    = 50000
	DefaultPageSize     = 50
	MaxPageSize         = 50
	DefaultPageDelay    = 100 * time.Millisecond
	DefaultRateLimit    = 10.0
	DefaultRetryCount   = 3
	DefaultRetryBase    = 1 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultTrackWorkers = 1
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultEnvFile      = ".env"
)

// Database
const (
	WorksTable     = "unclaimed_works"
	WorksISRCIndex = "idx_unclaimed_works_isrc"
	SourceColumns  = 13
	LockSuffix     = ".lock"
)

// Catalog
const (
	ISRCNotAvailable = "N/A"
	ExternalURLKey   = "spotify"
	ExternalISRCKey  = "isrc"
)

// Report sheets and styling
const (
	SheetCatalog       = "Artist Catalog"
	SheetMatches       = "Unclaimed Matches"
	SheetSummary       = "Analysis Summary"
	ReportSuffix       = "_rights_analysis.xlsx"
	NoMatchesMessage   = "No matches found in unclaimed works database"
	CatalogHeaderColor = "366092"
	MatchesHeaderColor = "C65911"
	HeaderFontColor    = "FFFFFF"
	MimeTypeXLSX       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Logging
const (
	MaxSkipWarnings = 10
	MaxLookupRows   = 100
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
