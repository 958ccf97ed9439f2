package config

import (
    "os"
    "strconv"
    "time"
)

// CacheConfig tunes the response cache sitting in front of the status
// endpoints.  When Enabled is false or no Redis client is available
// caching is a pass-through.  The TTL default is short: day and week
// status go stale the moment a spot is taken or freed, so entries only
// smooth over request bursts.  MaxBodyBytes skips caching oversized
// payloads.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        TTL:          parseDur(getenv("CACHE_TTL", "5s")),
        Prefix:       getenv("CACHE_PREFIX", "status"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
