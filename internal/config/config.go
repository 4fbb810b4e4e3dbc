package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"
)

// Config holds all application configuration
type Config struct {
	TSVPath      string
	DBPath       string
	OutputDir    string
	ArtistName   string
	ClientID     string
	ClientSecret string
	Market       string
	BaseURL      string
	ChunkSize    int
	HasHeader    bool
	PageDelay    time.Duration
	RateLimit    float64
	RetryCount   int
	Timeout      time.Duration
	TrackWorkers int
	Port         string
	LogLevel     string
	LogFormat    string
}

// fileConfig mirrors Config for the optional TOML file. Zero values mean
// "not set" so the file only overrides what it names.
type fileConfig struct {
	TSVFile      string  `toml:"tsv_file"`
	DBFile       string  `toml:"db_file"`
	OutputDir    string  `toml:"output_dir"`
	ArtistName   string  `toml:"artist_name"`
	Port         string  `toml:"port"`
	LogLevel     string  `toml:"log_level"`
	LogFormat    string  `toml:"log_format"`
	ChunkSize    int     `toml:"chunk_size"`
	HasHeader    *bool   `toml:"tsv_has_header"`
	TrackWorkers int     `toml:"track_workers"`
	Spotify      spotify `toml:"spotify"`
}

type spotify struct {
	ClientID     string  `toml:"client_id"`
	ClientSecret string  `toml:"client_secret"`
	Market       string  `toml:"market"`
	BaseURL      string  `toml:"base_url"`
	PageDelay    string  `toml:"page_delay"`
	RateLimit    float64 `toml:"rate_limit"`
	RetryCount   int     `toml:"retry_count"`
	Timeout      string  `toml:"timeout"`
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		DBPath:       constants.DefaultDBPath,
		OutputDir:    constants.DefaultOutputDir,
		Market:       constants.DefaultMarket,
		ChunkSize:    constants.DefaultChunkSize,
		HasHeader:    true,
		PageDelay:    constants.DefaultPageDelay,
		RateLimit:    constants.DefaultRateLimit,
		RetryCount:   constants.DefaultRetryCount,
		Timeout:      constants.DefaultHTTPTimeout,
		TrackWorkers: constants.DefaultTrackWorkers,
		Port:         constants.DefaultPort,
		LogLevel:     constants.DefaultLogLevel,
		LogFormat:    constants.DefaultLogFormat,
	}
}

// Load builds the configuration from defaults, an optional TOML file, a .env
// file in the working directory and the process environment, in increasing
// order of precedence. An empty configPath skips the TOML layer.
func Load(configPath string) (*Config, error) {
	return load(configPath, constants.DefaultEnvFile, os.LookupEnv)
}

func load(configPath, dotenvPath string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.applyFile(configPath); err != nil {
			return nil, err
		}
	}

	dotenv, err := godotenv.Read(dotenvPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
	}

	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var fc fileConfig
	if err := toml.NewDecoder(file).Decode(&fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.TSVPath, fc.TSVFile)
	setString(&c.DBPath, fc.DBFile)
	setString(&c.OutputDir, fc.OutputDir)
	setString(&c.ArtistName, fc.ArtistName)
	setString(&c.Port, fc.Port)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.ClientID, fc.Spotify.ClientID)
	setString(&c.ClientSecret, fc.Spotify.ClientSecret)
	setString(&c.Market, fc.Spotify.Market)
	setString(&c.BaseURL, fc.Spotify.BaseURL)
	if fc.ChunkSize != 0 {
		c.ChunkSize = fc.ChunkSize
	}
	if fc.HasHeader != nil {
		c.HasHeader = *fc.HasHeader
	}
	if fc.TrackWorkers != 0 {
		c.TrackWorkers = fc.TrackWorkers
	}
	if fc.Spotify.RateLimit != 0 {
		c.RateLimit = fc.Spotify.RateLimit
	}
	if fc.Spotify.RetryCount != 0 {
		c.RetryCount = fc.Spotify.RetryCount
	}

	var problems []string
	if fc.Spotify.PageDelay != "" {
		d, err := time.ParseDuration(fc.Spotify.PageDelay)
		if err != nil {
			problems = append(problems, fmt.Sprintf("spotify.page_delay is not a duration: %s", fc.Spotify.PageDelay))
		}
		c.PageDelay = d
	}
	if fc.Spotify.Timeout != "" {
		d, err := time.ParseDuration(fc.Spotify.Timeout)
		if err != nil {
			problems = append(problems, fmt.Sprintf("spotify.timeout is not a duration: %s", fc.Spotify.Timeout))
		}
		c.Timeout = d
	}
	return joinProblems(problems)
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	var problems []string

	str := func(key string, dst *string) {
		if v, ok := env(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := env(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s must be a valid number, got: %s", key, v))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := env(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s must be a duration like 100ms, got: %s", key, v))
				return
			}
			*dst = d
		}
	}

	str("TSV_FILE", &c.TSVPath)
	str("DB_FILE", &c.DBPath)
	str("OUTPUT_DIR", &c.OutputDir)
	str("ARTIST_NAME", &c.ArtistName)
	str("SPOTIFY_CLIENT_ID", &c.ClientID)
	str("SPOTIFY_CLIENT_SECRET", &c.ClientSecret)
	str("SPOTIFY_MARKET", &c.Market)
	str("SPOTIFY_BASE_URL", &c.BaseURL)
	str("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	integer("CHUNK_SIZE", &c.ChunkSize)
	integer("API_RETRY_COUNT", &c.RetryCount)
	integer("TRACK_WORKERS", &c.TrackWorkers)
	duration("PAGE_DELAY", &c.PageDelay)
	duration("API_TIMEOUT", &c.Timeout)

	if v, ok := env("TSV_HAS_HEADER"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			problems = append(problems, fmt.Sprintf("TSV_HAS_HEADER must be true or false, got: %s", v))
		} else {
			c.HasHeader = b
		}
	}
	if v, ok := env("API_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("API_RATE_LIMIT must be a number, got: %s", v))
		} else {
			c.RateLimit = f
		}
	}

	return joinProblems(problems)
}

// Validate validates the shared configuration and returns detailed errors
func (c *Config) Validate() error {
	return joinProblems(c.problems())
}

func (c *Config) problems() []string {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_FILE cannot be empty")
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	return errors
}

// ValidateIngest checks the settings the bulk loader needs on top of Validate.
func (c *Config) ValidateIngest() error {
	errors := c.problems()

	if c.TSVPath == "" {
		errors = append(errors, "TSV_FILE cannot be empty")
	}
	if c.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE must be positive, got: %d", c.ChunkSize))
	}

	return joinProblems(errors)
}

// ValidateCatalog checks the settings the catalog fetcher needs on top of Validate.
func (c *Config) ValidateCatalog() error {
	errors := c.problems()

	if c.ClientID == "" {
		errors = append(errors, "SPOTIFY_CLIENT_ID cannot be empty")
	}
	if c.ClientSecret == "" {
		errors = append(errors, "SPOTIFY_CLIENT_SECRET cannot be empty")
	}
	if len(c.Market) != 2 {
		errors = append(errors, fmt.Sprintf("SPOTIFY_MARKET must be a two-letter country code, got: %s", c.Market))
	}
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("SPOTIFY_BASE_URL is not a valid URL: %s", c.BaseURL))
		}
	}
	if c.PageDelay < 0 {
		errors = append(errors, fmt.Sprintf("PAGE_DELAY cannot be negative, got: %s", c.PageDelay))
	}
	if c.RateLimit <= 0 {
		errors = append(errors, fmt.Sprintf("API_RATE_LIMIT must be positive, got: %g", c.RateLimit))
	}
	if c.RetryCount < 1 {
		errors = append(errors, fmt.Sprintf("API_RETRY_COUNT must be at least 1, got: %d", c.RetryCount))
	}
	if c.Timeout <= 0 {
		errors = append(errors, fmt.Sprintf("API_TIMEOUT must be positive, got: %s", c.Timeout))
	}
	if c.TrackWorkers < 1 {
		errors = append(errors, fmt.Sprintf("TRACK_WORKERS must be at least 1, got: %d", c.TrackWorkers))
	}

	return joinProblems(errors)
}

// String renders the configuration with secrets masked.
func (c Config) String() string {
	return fmt.Sprintf(
		"tsv=%q db=%q out=%q artist=%q client_id=%s client_secret=%s market=%s base_url=%q chunk=%d header=%t delay=%s rate=%g retries=%d timeout=%s workers=%d port=%s log=%s/%s",
		c.TSVPath, c.DBPath, c.OutputDir, c.ArtistName, mask(c.ClientID), mask(c.ClientSecret),
		c.Market, c.BaseURL, c.ChunkSize, c.HasHeader, c.PageDelay, c.RateLimit, c.RetryCount,
		c.Timeout, c.TrackWorkers, c.Port, c.LogLevel, c.LogFormat,
	)
}

func mask(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return "****"
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
}
