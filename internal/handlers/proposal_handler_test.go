package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finvoiceBack/internal/models"
)

func respondRequest(t *testing.T, target, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	return r.WithContext(context.WithValue(r.Context(), "user_id", 7))
}

func TestApproveRejectsMalformedBody(t *testing.T) {
	h := &ProposalHandler{}
	w := httptest.NewRecorder()

	h.Approve(w, respondRequest(t, "/proposals/1/approve?:id=1", `{"notes":`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body must yield 400, got %d", w.Code)
	}
}

func TestRejectRejectsMalformedBody(t *testing.T) {
	h := &ProposalHandler{}
	w := httptest.NewRecorder()

	h.Reject(w, respondRequest(t, "/proposals/1/reject?:id=1", `not json`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body must yield 400, got %d", w.Code)
	}
}

func TestDecodeOptionalToleratesEmptyBody(t *testing.T) {
	var req models.RespondRequest
	if err := decodeOptional(respondRequest(t, "/proposals/1/approve?:id=1", ""), &req); err != nil {
		t.Fatalf("empty body must be accepted: %v", err)
	}
	if req.Notes != "" || req.Reason != "" {
		t.Fatalf("empty body must leave the request zeroed")
	}

	if err := decodeOptional(respondRequest(t, "/proposals/1/reject?:id=1", `{"reason":"price"}`), &req); err != nil {
		t.Fatalf("valid body rejected: %v", err)
	}
	if req.Reason != "price" {
		t.Fatalf("reason not decoded, got %q", req.Reason)
	}
}
