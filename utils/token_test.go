package utils

import "testing"

func TestJwt_SecretIsReadAtUseTime(t *testing.T) {
	t.Setenv("API_SECRET", "first-secret")
	token, err := JwtGenerate(9, "erin", "tenant-b")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	parsed, err := JwtValidate(token)
	if err != nil || !parsed.Valid {
		t.Fatalf("expected valid token: %v", err)
	}
	if claim := parsed.Claims.(*JwtCustomClaim); claim.TenantId != "tenant-b" {
		t.Fatalf("unexpected tenant %q", claim.TenantId)
	}

	t.Setenv("API_SECRET", "second-secret")
	if _, err := JwtValidate(token); err == nil {
		t.Fatalf("token signed with the old secret must be rejected")
	}
}

func TestJwt_FallbackSecret(t *testing.T) {
	t.Setenv("API_SECRET", "")
	if got := getJwtSecret(); got != "Dashboard-Secret" {
		t.Fatalf("expected fallback secret, got %q", got)
	}
}
