package config

import (
	"os"
	"strings"
	"time"
)

// RevenueCacheEnabled puts the redis revenue cache in front of the database fetcher.
//
// Set via env:
// - REVENUE_CACHE_ENABLED=true (default true)
func RevenueCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("REVENUE_CACHE_ENABLED"))
	if v == "" {
		return true
	}
	return isTruthy(v)
}

// RequireExplicitTenant rejects authenticated principals that carry no tenant id,
// instead of resolving them to the empty default bucket.
//
// Set via env:
// - REQUIRE_EXPLICIT_TENANT=true
func RequireExplicitTenant() bool {
	return isTruthy(os.Getenv("REQUIRE_EXPLICIT_TENANT"))
}

// RevenueCacheTTL is REVENUE_CACHE_TTL_SECONDS (default 300).
func RevenueCacheTTL() time.Duration {
	return time.Duration(intFromEnv("REVENUE_CACHE_TTL_SECONDS", 300)) * time.Second
}

// RevenueFetchTimeout is REVENUE_FETCH_TIMEOUT_SECONDS (default 10).
func RevenueFetchTimeout() time.Duration {
	return time.Duration(intFromEnv("REVENUE_FETCH_TIMEOUT_SECONDS", 10)) * time.Second
}

func isTruthy(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
