package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/config"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/logger"
	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/store"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && *c.logLevelFlag != "" {
			cfg.LogLevel = strings.ToLower(*c.logLevelFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger writes to stderr so tables on stdout stay clean.
func (c *commandContext) logger() *logger.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logger.Default()
	}
	log := logger.New(logger.Config{
		Output: os.Stderr,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Debug("Configuration loaded", "config", cfg.String())
	return log
}

// openExistingStore opens the store at path, refusing to create an empty one.
func openExistingStore(path string) (*store.DB, error) {
	if path != ":memory:" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("store %s does not exist; run `isrcaudit ingest` first", path)
		}
	}
	db, err := store.NewSQLiteDB(path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return db, nil
}
