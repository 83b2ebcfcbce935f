package config

import (
	"testing"
	"time"
)

func TestRevenueCacheEnabled(t *testing.T) {
	cases := map[string]bool{"": true, "true": true, "1": true, "false": false, "no": false}
	for v, want := range cases {
		t.Setenv("REVENUE_CACHE_ENABLED", v)
		if got := RevenueCacheEnabled(); got != want {
			t.Fatalf("REVENUE_CACHE_ENABLED=%q expected %v, got %v", v, want, got)
		}
	}
}

func TestRequireExplicitTenant(t *testing.T) {
	t.Setenv("REQUIRE_EXPLICIT_TENANT", "")
	if RequireExplicitTenant() {
		t.Fatalf("expected default false")
	}
	t.Setenv("REQUIRE_EXPLICIT_TENANT", " Yes ")
	if !RequireExplicitTenant() {
		t.Fatalf("expected true")
	}
}

func TestDurationsFromEnv(t *testing.T) {
	t.Setenv("REVENUE_CACHE_TTL_SECONDS", "")
	t.Setenv("REVENUE_FETCH_TIMEOUT_SECONDS", "bogus")
	if got := RevenueCacheTTL(); got != 5*time.Minute {
		t.Fatalf("expected 5m default ttl, got %s", got)
	}
	if got := RevenueFetchTimeout(); got != 10*time.Second {
		t.Fatalf("expected 10s default timeout, got %s", got)
	}
	t.Setenv("REVENUE_FETCH_TIMEOUT_SECONDS", "3")
	if got := RevenueFetchTimeout(); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
}

func TestBackoffCaps(t *testing.T) {
	if got := backoff(1); got != 2*time.Second {
		t.Fatalf("expected 2s, got %s", got)
	}
	if got := backoff(10); got != 30*time.Second {
		t.Fatalf("expected 30s cap, got %s", got)
	}
}
