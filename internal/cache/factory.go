// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "time"

// Options holds configuration for cache creation.
type Options struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix is the Redis key prefix.
	Prefix string

	// DefaultTTL is the default expiry for entries with no explicit TTL.
	DefaultTTL time.Duration
}

// New creates a cache: Redis when a URL is configured, in-memory otherwise.
func New(opts Options) (Cache, error) {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Minute
	}
	if opts.RedisURL != "" {
		return NewRedisCache(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
	}
	return NewMemoryCache(opts.DefaultTTL), nil
}
