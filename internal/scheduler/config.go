package scheduler

import "time"

// Config controls the finalization loop. Batch size normally comes from
// the hot-reloadable billing config; BatchSize here is the fallback when
// that holder is absent.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	BatchSize   int
	// LeaderLockTTL guards multi-instance deployments; it only matters
	// when a redis locker is wired in.
	LeaderLockTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:   time.Minute,
		JobTimeout:    30 * time.Second,
		BatchSize:     100,
		LeaderLockTTL: 2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.LeaderLockTTL <= 0 {
		c.LeaderLockTTL = defaults.LeaderLockTTL
	}
	return c
}
