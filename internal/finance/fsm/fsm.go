package fsm

import (
	"context"
	"database/sql"
	"errors"
)

// Status constants used by the proposal state machine.
const (
	StatusDraft          = "draft"
	StatusSent           = "sent"
	StatusPending        = "pending"
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
	StatusCounterOffered = "counter_offered"
	StatusExpired        = "expired"
	StatusWithdrawn      = "withdrawn"
)

var transitions = map[string]map[string]struct{}{
	StatusDraft: {
		StatusSent:      {},
		StatusWithdrawn: {},
		StatusExpired:   {},
	},
	StatusSent: {
		StatusPending:        {},
		StatusApproved:       {},
		StatusRejected:       {},
		StatusCounterOffered: {},
		StatusWithdrawn:      {},
		StatusExpired:        {},
	},
	StatusPending: {
		StatusApproved:       {},
		StatusRejected:       {},
		StatusCounterOffered: {},
		StatusWithdrawn:      {},
		StatusExpired:        {},
	},
	StatusApproved:       {},
	StatusRejected:       {},
	StatusCounterOffered: {},
	StatusExpired:        {},
	StatusWithdrawn:      {},
}

// CanTransition returns whether a proposal can move from one status to another.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsActive reports whether a status still blocks a new proposal for the same
// investor and invoice. A counter_offered parent is superseded by its child
// and no longer counts as active.
func IsActive(status string) bool {
	switch status {
	case StatusDraft, StatusSent, StatusPending:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(status string) bool {
	return !IsActive(status)
}

// CanBeResponded reports whether the company may approve, reject or counter.
func CanBeResponded(status string) bool {
	return status == StatusSent || status == StatusPending
}

// ActiveStatuses lists the statuses enforced by the single-active-proposal
// invariant, in the order used by SQL IN clauses.
func ActiveStatuses() []string {
	return []string{StatusDraft, StatusSent, StatusPending}
}

// Apply updates a proposal status using optimistic validation: the row is
// only touched if it still carries the expected current status.
func Apply(ctx context.Context, tx *sql.Tx, proposalID int, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return errors.New("invalid status transition")
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE investment_proposals SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		toStatus, proposalID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
