package repositories

import (
	"strings"
	"testing"
	"time"

	"finvoiceBack/internal/finance/fsm"
	"finvoiceBack/internal/models"
)

// The active-status set drives both the single-active-proposal conflict check
// in Create and the WHERE clause of the expiry sweep.
func TestActiveStatusPlaceholders(t *testing.T) {
	marks, args := activeStatusPlaceholders()

	if want := strings.Repeat("?, ", len(args)-1) + "?"; marks != want {
		t.Fatalf("placeholders %q do not match %d args", marks, len(args))
	}

	got := map[string]bool{}
	for _, a := range args {
		status, ok := a.(string)
		if !ok {
			t.Fatalf("non-string status arg %v", a)
		}
		got[status] = true
	}
	for _, status := range []string{fsm.StatusDraft, fsm.StatusSent, fsm.StatusPending} {
		if !got[status] {
			t.Fatalf("status %q missing from the active set", status)
		}
	}
	// settled rows must never match: a rejected or withdrawn proposal does not
	// block a new one, and a second sweep run finds nothing to expire
	for _, status := range []string{fsm.StatusApproved, fsm.StatusRejected, fsm.StatusCounterOffered, fsm.StatusExpired, fsm.StatusWithdrawn} {
		if got[status] {
			t.Fatalf("status %q must not be in the active set", status)
		}
	}
}

func TestNewCounterOfferChild(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	parent := models.InvestmentProposal{
		ID:            42,
		InvestorID:    7,
		InvoiceID:     9,
		Status:        fsm.StatusSent,
		OperationType: models.OperationFactoring,
	}
	child := newCounterOfferChild(parent, models.InvestmentProposal{
		Terms:     models.ProposalTerms{Amount: 80000, TermDays: 60, InterestRate: 9},
		Message:   "we can do 80k",
		ExpiresAt: &expires,
	})

	if child.InvestorID != 7 || child.InvoiceID != 9 {
		t.Fatalf("child must keep the parent's investor and invoice, got %d/%d", child.InvestorID, child.InvoiceID)
	}
	if child.OperationType != models.OperationFactoring {
		t.Fatalf("child operation type %q", child.OperationType)
	}
	if child.ParentProposalID == nil || *child.ParentProposalID != 42 {
		t.Fatalf("child must link back to parent 42, got %v", child.ParentProposalID)
	}
	if child.Status != fsm.StatusPending {
		t.Fatalf("child must start pending, got %q", child.Status)
	}
	if child.Terms.Amount != 80000 || child.ExpiresAt == nil || !child.ExpiresAt.Equal(expires) {
		t.Fatalf("child must keep its own terms and deadline")
	}
}

func TestHasCompanyResponse(t *testing.T) {
	// investor withdrawal: no responder, no text, no audit record
	if hasCompanyResponse("", nil) {
		t.Fatalf("withdrawal must not be recorded as a company response")
	}

	responder := 11
	if !hasCompanyResponse("rejected", &responder) {
		t.Fatalf("rejection must be recorded")
	}
	if !hasCompanyResponse("", &responder) {
		t.Fatalf("a responder without notes must still be recorded")
	}
}
