package models

import "time"

// Invoice operation types.
const (
	OperationFactoring  = "factoring"
	OperationConfirming = "confirming"
)

// Invoice statuses.
const (
	InvoiceStatusPending  = "pending"
	InvoiceStatusApproved = "approved"
	InvoiceStatusFunded   = "funded"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusRejected = "rejected"
	InvoiceStatusExpired  = "expired"
)

// Invoice is a receivable published by a company. Only invoices in status
// "approved" accept investment proposals.
type Invoice struct {
	ID            int       `json:"id"`
	CompanyID     int       `json:"company_id"`
	Number        string    `json:"number"`
	DebtorName    string    `json:"debtor_name,omitempty"`
	Amount        float64   `json:"amount"`
	OperationType string    `json:"operation_type"`
	Status        string    `json:"status"`
	DueDate       time.Time `json:"due_date"`

	// Factoring fields.
	AdvancePercentage float64 `json:"advance_percentage,omitempty"`
	CommissionRate    float64 `json:"commission_rate,omitempty"`

	// Confirming fields.
	EarlyPaymentDiscount float64 `json:"early_payment_discount,omitempty"`
	ConfirmingCommission float64 `json:"confirming_commission,omitempty"`
	AdvanceRequest       bool    `json:"advance_request,omitempty"`

	DocumentURL string     `json:"document_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Company owns invoices and responds to proposals.
type Company struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	TaxNumber string    `json:"tax_number,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
