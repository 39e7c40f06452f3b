package auth

import "testing"

func TestPolicyServiceOpenByDefault(t *testing.T) {
	policy := NewPolicyService("", "")

	if !policy.IsAllowed(42) {
		t.Error("empty allowed list should admit everyone")
	}
	if policy.CanIngest(42) {
		t.Error("writes should stay admin-only")
	}
}

func TestPolicyServiceAllowedList(t *testing.T) {
	policy := NewPolicyService("1", "2, 3,bogus")

	if !policy.IsAllowed(1) {
		t.Error("admins are always allowed")
	}
	if !policy.IsAllowed(2) || !policy.IsAllowed(3) {
		t.Error("listed users should be allowed")
	}
	if policy.IsAllowed(4) {
		t.Error("unlisted user should be rejected")
	}
	if !policy.CanIngest(1) {
		t.Error("admin should be able to ingest")
	}
	if policy.CanIngest(2) {
		t.Error("non-admin should not be able to ingest")
	}
}
