// Package config holds the settings shared by the chessfinder commands.
// Values start from defaults, are overridden by CHESSFINDER_* environment
// variables and then by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hailam/chessfinder/internal/finder"
	"github.com/hailam/chessfinder/internal/storage"
)

// AutoCacheDir selects the platform data directory for the result cache.
const AutoCacheDir = "auto"

// Config is the resolved configuration.
type Config struct {
	Strict   bool
	Match    string // "placement" or "canonical"
	LogLevel string
	// CacheDir is the badger directory: empty for an in-memory cache,
	// AutoCacheDir for the platform data directory.
	CacheDir   string
	CacheTTL   time.Duration
	NoCache    bool
	Workers    int
	Limit      int
	CPUProfile string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Match:    finder.MatchPlacement.String(),
		LogLevel: "info",
		Limit:    finder.StopSearchIfFound,
	}
}

// Load returns the defaults overridden by the process environment.
func Load() (Config, error) {
	c := Default()
	err := c.ApplyEnv(os.LookupEnv)
	return c, err
}

// ApplyEnv overrides c with the variables lookup finds.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	boolean("CHESSFINDER_STRICT", &c.Strict)
	str("CHESSFINDER_MATCH", &c.Match)
	str("CHESSFINDER_LOG_LEVEL", &c.LogLevel)
	str("CHESSFINDER_CACHE_DIR", &c.CacheDir)
	boolean("CHESSFINDER_NO_CACHE", &c.NoCache)
	integer("CHESSFINDER_WORKERS", &c.Workers)
	integer("CHESSFINDER_LIMIT", &c.Limit)
	if v, ok := lookup("CHESSFINDER_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CHESSFINDER_CACHE_TTL: %w", err))
		} else {
			c.CacheTTL = d
		}
	}
	str("CPUPROFILE", &c.CPUProfile)

	return errors.Join(errs...)
}

// RegisterFlags binds the configuration to flags on fs. Current values
// become the flag defaults, so call it after ApplyEnv.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Strict, "strict", c.Strict, "verify capture markers, check suffixes and castling")
	fs.StringVar(&c.Match, "match", c.Match, "position comparison: placement or canonical")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&c.CacheDir, "cache-dir", c.CacheDir, `result cache directory ("" in memory, "auto" for the data directory)`)
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "expire cached results after this long (0 keeps them)")
	fs.BoolVar(&c.NoCache, "no-cache", c.NoCache, "disable the result cache")
	fs.IntVar(&c.Workers, "workers", c.Workers, "concurrent game searches (0 uses all CPUs)")
	fs.IntVar(&c.Limit, "limit", c.Limit, "stop after this many matching games (-1 for no limit)")
	fs.StringVar(&c.CPUProfile, "cpuprofile", c.CPUProfile, "write cpu profile to file")
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if _, err := finder.ParseMatchMode(c.Match); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Limit == 0 || c.Limit < -1 {
		return fmt.Errorf("limit must be positive or -1, got %d", c.Limit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// FinderOptions returns the finder options the configuration selects.
func (c *Config) FinderOptions() ([]finder.Option, error) {
	mode, err := finder.ParseMatchMode(c.Match)
	if err != nil {
		return nil, err
	}
	return []finder.Option{finder.WithStrict(c.Strict), finder.WithMatchMode(mode)}, nil
}

// CacheOptions resolves the result cache location.
func (c *Config) CacheOptions() (storage.Options, error) {
	dir := c.CacheDir
	if dir == AutoCacheDir {
		var err error
		if dir, err = storage.CacheDir(); err != nil {
			return storage.Options{}, err
		}
	}
	return storage.Options{Dir: dir, TTL: c.CacheTTL}, nil
}
