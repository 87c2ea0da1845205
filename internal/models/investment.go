package models

import "time"

// Investment statuses.
const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
	InvestmentStatusCancelled = "cancelled"
)

// Payment types and statuses (confirming operations only).
const (
	PaymentTypeSupplierPayment   = "supplier_payment"
	PaymentTypeCompanyCollection = "company_collection"

	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusPaid      = "paid"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusCancelled = "cancelled"
)

// Investment is the binding result of an approved proposal. Created exactly
// once per approval; amount and return rate never change afterwards except
// through return processing or cancellation.
type Investment struct {
	ID             int        `json:"id"`
	InvestorID     int        `json:"investor_id"`
	InvoiceID      int        `json:"invoice_id"`
	ProposalID     int        `json:"proposal_id"`
	Amount         float64    `json:"amount"`
	ExpectedReturn float64    `json:"expected_return"`
	ActualReturn   *float64   `json:"actual_return,omitempty"`
	ReturnRate     float64    `json:"return_rate"`
	InvestmentDate time.Time  `json:"investment_date"`
	MaturityDate   time.Time  `json:"maturity_date"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Payment is a scheduled money movement derived from a confirming investment
// with an advance request: the discounted supplier payout and the full
// collection from the company.
type Payment struct {
	ID            int        `json:"id"`
	InvestmentID  int        `json:"investment_id"`
	Type          string     `json:"type"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	Reference     string     `json:"reference"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
