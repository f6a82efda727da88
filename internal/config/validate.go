package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Source.PageURL); err != nil {
		return fmt.Errorf("source.page_url: %w", err)
	}
	if c.Source.ProbeParallelism < 1 {
		return fmt.Errorf("source.probe_parallelism must be >= 1 (got %d)", c.Source.ProbeParallelism)
	}
	if c.Source.FetchTimeout <= 0 {
		return fmt.Errorf("source.fetch_timeout must be > 0 (got %v)", c.Source.FetchTimeout)
	}
	if c.Watcher.MinInterval <= 0 || c.Watcher.MaxInterval < c.Watcher.MinInterval {
		return fmt.Errorf("watcher: need 0 < min_interval <= max_interval (got %v, %v)",
			c.Watcher.MinInterval, c.Watcher.MaxInterval)
	}
	switch strings.ToLower(c.Extract.Dialect) {
	case "fallback", "paired":
	default:
		return fmt.Errorf("extract.dialect must be fallback or paired (got %q)", c.Extract.Dialect)
	}
	return nil
}

// ValidateBot checks what the Telegram bot needs on top of Validate.
func (c *Config) ValidateBot() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if err := c.ValidateDatabase(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateDatabase checks that a database is configured.
func (c *Config) ValidateDatabase() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}
