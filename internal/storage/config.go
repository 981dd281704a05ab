package storage

import (
	"fmt"
	"time"
)

// Config tunes the sqlite connections. The write side always runs a
// single connection; reads go through a small pool.
type Config struct {
	ReadPoolSize int
	BusyTimeout  time.Duration
	CacheSizeKB  int
}

func DefaultConfig() *Config {
	return &Config{
		ReadPoolSize: 5,
		BusyTimeout:  5 * time.Second,
		CacheSizeKB:  64000,
	}
}

// pragmas lists the statements applied to the write connection on open.
// foreign_keys must be ON or the message cascade never fires.
func (c *Config) pragmas() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = memory",
		fmt.Sprintf("PRAGMA busy_timeout = %d", c.BusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA cache_size = -%d", c.CacheSizeKB),
	}
}
