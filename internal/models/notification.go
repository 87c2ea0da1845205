package models

import "time"

// NotificationEvent is published on the negotiation event channel and fanned
// out to websocket clients and push devices.
type NotificationEvent struct {
	Type         string    `json:"type"`
	ProposalID   int       `json:"proposal_id,omitempty"`
	InvoiceID    int       `json:"invoice_id,omitempty"`
	InvestmentID int       `json:"investment_id,omitempty"`
	UserIDs      []int     `json:"user_ids,omitempty"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
