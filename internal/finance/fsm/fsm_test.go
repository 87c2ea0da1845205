package fsm

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusDraft, StatusSent) {
		t.Fatalf("draft -> sent must be allowed")
	}
	if CanTransition(StatusDraft, StatusApproved) {
		t.Fatalf("draft -> approved must be rejected")
	}
	if !CanTransition(StatusSent, StatusCounterOffered) {
		t.Fatalf("sent -> counter_offered must be allowed")
	}
	if !CanTransition(StatusPending, StatusApproved) {
		t.Fatalf("pending -> approved must be allowed")
	}
	if CanTransition(StatusApproved, StatusWithdrawn) {
		t.Fatalf("approved is terminal")
	}
	if CanTransition(StatusCounterOffered, StatusExpired) {
		t.Fatalf("counter_offered parents are superseded and never expire")
	}
	if CanTransition(StatusExpired, StatusSent) {
		t.Fatalf("expired is terminal")
	}
}

func TestEveryActiveStatusCanExpireAndWithdraw(t *testing.T) {
	for _, s := range ActiveStatuses() {
		if !CanTransition(s, StatusExpired) {
			t.Fatalf("%s -> expired must be allowed", s)
		}
		if !CanTransition(s, StatusWithdrawn) {
			t.Fatalf("%s -> withdrawn must be allowed", s)
		}
	}
}

func TestActiveAndTerminal(t *testing.T) {
	for _, s := range []string{StatusDraft, StatusSent, StatusPending} {
		if !IsActive(s) {
			t.Fatalf("%s must be active", s)
		}
	}
	for _, s := range []string{StatusApproved, StatusRejected, StatusCounterOffered, StatusExpired, StatusWithdrawn} {
		if !IsTerminal(s) {
			t.Fatalf("%s must be terminal", s)
		}
	}
	if CanBeResponded(StatusDraft) {
		t.Fatalf("draft proposals cannot be responded to")
	}
	if !CanBeResponded(StatusSent) || !CanBeResponded(StatusPending) {
		t.Fatalf("sent and pending proposals must be respondable")
	}
}
