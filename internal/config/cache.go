package config

import "strings"

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled. Methods lists the HTTP methods to cache. KeyStrategy decides
// which parts of the request contribute to the cache key.
type CacheConfig struct {
	Enabled      bool   `envconfig:"CACHE_ENABLED" default:"true"`
	RawMethods   string `envconfig:"CACHE_METHODS" default:"GET"`
	TTLSeconds   int    `envconfig:"CACHE_TTL_SECONDS" default:"30"`
	KeyStrategy  string `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
	Prefix       string `envconfig:"CACHE_PREFIX" default:"cache"`
	MaxBodyBytes int    `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// Methods returns the upper-cased set of cacheable methods.
func (c CacheConfig) Methods() map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(c.RawMethods, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
