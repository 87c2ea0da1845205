package models

import "time"

// FactoringTerms are the operation-specific terms an investor proposes for a
// factoring invoice. Percentages use the 0-100 scale.
type FactoringTerms struct {
	AdvancePercentage float64 `json:"advance_percentage"`
	CommissionRate    float64 `json:"commission_rate"`
}

// ConfirmingTerms are the operation-specific terms for a confirming invoice.
type ConfirmingTerms struct {
	ConfirmingCommission float64 `json:"confirming_commission"`
	EarlyPaymentDiscount float64 `json:"early_payment_discount"`
	AdvanceRequest       bool    `json:"advance_request"`
}

// ProposalTerms is a tagged variant: exactly one of Factoring or Confirming
// is set, matching the invoice operation type. InterestRate and DiscountRate
// are generic fallbacks; the operation-specific commission always wins when
// both are present.
type ProposalTerms struct {
	Amount           float64          `json:"amount"`
	InterestRate     float64          `json:"interest_rate,omitempty"`
	DiscountRate     float64          `json:"discount_rate,omitempty"`
	TermDays         int              `json:"term_days"`
	Factoring        *FactoringTerms  `json:"factoring,omitempty"`
	Confirming       *ConfirmingTerms `json:"confirming,omitempty"`
	NegotiationTerms string           `json:"negotiation_terms,omitempty"`
}

// InvestmentProposal is a single negotiation round between an investor and
// the company owning the invoice. Counter offers link back through
// ParentProposalID, forming an auditable chain.
type InvestmentProposal struct {
	ID               int    `json:"id"`
	InvestorID       int    `json:"investor_id"`
	InvoiceID        int    `json:"invoice_id"`
	ParentProposalID *int   `json:"parent_proposal_id,omitempty"`
	Status           string `json:"status"`
	OperationType    string `json:"operation_type"`

	Terms   ProposalTerms `json:"terms"`
	Message string        `json:"message,omitempty"`

	CompanyResponse string     `json:"company_response,omitempty"`
	RespondedBy     *int       `json:"responded_by,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CreateProposalRequest is the payload for opening a new negotiation.
type CreateProposalRequest struct {
	InvoiceID int           `json:"invoice_id"`
	Terms     ProposalTerms `json:"terms"`
	Message   string        `json:"message,omitempty"`
}

// CounterOfferRequest is the payload for responding with new terms.
type CounterOfferRequest struct {
	Terms   ProposalTerms `json:"terms"`
	Message string        `json:"message,omitempty"`
}

// RespondRequest carries approve/reject metadata from the company side.
type RespondRequest struct {
	Notes  string `json:"notes,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ProposalDetail is the read model for a single proposal, including the
// computed negotiation block consumed by dashboards.
type ProposalDetail struct {
	Proposal        InvestmentProposal   `json:"proposal"`
	Parent          *InvestmentProposal  `json:"parent,omitempty"`
	CounterOffers   []InvestmentProposal `json:"counter_offers,omitempty"`
	ExpectedReturn  float64              `json:"expected_return"`
	TermsDifference map[string]float64   `json:"terms_difference,omitempty"`
	CanBeResponded  bool                 `json:"can_be_responded"`
	IsExpired       bool                 `json:"is_expired"`
}
