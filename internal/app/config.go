package app

import "time"

// Config holds runtime configuration for one preview run.
type Config struct {
	URL       string
	Timeout   time.Duration
	UserAgent string

	// CacheDir enables the on-disk preview cache when non-empty.
	CacheDir    string
	CacheMaxAge time.Duration

	// CardPath enables PDF card rendering when non-empty.
	CardPath string

	Verbose bool
}
