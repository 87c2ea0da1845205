package services

import (
	"context"
	"math"
	"strings"
	"time"

	"finvoiceBack/internal/finance/fsm"
	"finvoiceBack/internal/finance/pricing"
	"finvoiceBack/internal/finance/risk"
	"finvoiceBack/internal/models"
	"finvoiceBack/internal/repositories"
)

// ProposalService owns the negotiation lifecycle: creation, sending, company
// responses, counter-offer chains and settlement into investments.
type ProposalService struct {
	ProposalRepo   *repositories.ProposalRepository
	InvoiceRepo    *repositories.InvoiceRepository
	InvestorRepo   *repositories.InvestorRepository
	InvestmentRepo *repositories.InvestmentRepository
	UserRepo       *repositories.UserRepository
	Notifier       *NotificationService

	// ResponseWindow is how long a proposal stays open before the sweeper
	// expires it.
	ResponseWindow time.Duration

	// Now is injected for deterministic tests; defaults to time.Now UTC.
	Now func() time.Time
}

func (s *ProposalService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create validates terms and capacity, then opens a draft proposal. The
// repository enforces the single-active-proposal invariant transactionally.
func (s *ProposalService) Create(ctx context.Context, userID int, req models.CreateProposalRequest) (models.InvestmentProposal, error) {
	investor, err := s.InvestorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	invoice, err := s.InvoiceRepo.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if invoice.Status != models.InvoiceStatusApproved {
		return models.InvestmentProposal{}, models.ErrInvoiceNotProposable
	}

	terms := req.Terms
	if terms.Amount == 0 {
		terms.Amount = invoice.Amount
	}
	if err := validateProposalTerms(invoice.OperationType, terms); err != nil {
		return models.InvestmentProposal{}, err
	}
	if err := risk.Validate(investor, terms.Amount); err != nil {
		return models.InvestmentProposal{}, err
	}

	now := s.now()
	proposal := models.InvestmentProposal{
		InvestorID:    investor.ID,
		InvoiceID:     invoice.ID,
		Status:        fsm.StatusDraft,
		OperationType: invoice.OperationType,
		Terms:         terms,
		Message:       strings.TrimSpace(req.Message),
	}
	if s.ResponseWindow > 0 {
		expires := now.Add(s.ResponseWindow)
		proposal.ExpiresAt = &expires
	}

	return s.ProposalRepo.Create(ctx, proposal)
}

// validateProposalTerms checks the operation-specific field rules. The
// operation-specific commission wins over the generic discount_rate; the
// generic rates only substitute when the specific field is absent.
func validateProposalTerms(operationType string, terms models.ProposalTerms) error {
	if terms.Amount <= 0 {
		return models.NewFieldError("amount", "must be greater than zero")
	}
	if terms.TermDays < 0 {
		return models.NewFieldError("term_days", "must not be negative")
	}
	if terms.InterestRate < 0 || terms.InterestRate > 100 {
		return models.NewFieldError("interest_rate", "must be between 0 and 100")
	}
	if terms.DiscountRate < 0 || terms.DiscountRate > 100 {
		return models.NewFieldError("discount_rate", "must be between 0 and 100")
	}

	switch operationType {
	case models.OperationFactoring:
		t := terms.Factoring
		if t == nil {
			return models.NewFieldError("factoring", "factoring terms are required for this invoice")
		}
		if t.AdvancePercentage < 70 || t.AdvancePercentage > 90 {
			return models.NewFieldError("advance_percentage", "must be between 70 and 90")
		}
		if t.CommissionRate != 0 && (t.CommissionRate < 0.5 || t.CommissionRate > 10) {
			return models.NewFieldError("commission_rate", "must be between 0.5 and 10")
		}
		if t.CommissionRate == 0 && terms.DiscountRate == 0 && terms.InterestRate == 0 {
			return models.NewFieldError("commission_rate", "a commission, discount or interest rate is required")
		}
	case models.OperationConfirming:
		t := terms.Confirming
		if t == nil {
			return models.NewFieldError("confirming", "confirming terms are required for this invoice")
		}
		if t.ConfirmingCommission != 0 && (t.ConfirmingCommission < 0.5 || t.ConfirmingCommission > 10) {
			return models.NewFieldError("confirming_commission", "must be between 0.5 and 10")
		}
		if t.ConfirmingCommission == 0 && terms.DiscountRate == 0 && terms.InterestRate == 0 {
			return models.NewFieldError("confirming_commission", "a commission, discount or interest rate is required")
		}
		if t.EarlyPaymentDiscount < 0 || t.EarlyPaymentDiscount > 20 {
			return models.NewFieldError("early_payment_discount", "must be between 0 and 20")
		}
	default:
		return models.NewFieldError("operation_type", "unknown operation type")
	}
	return nil
}

// validateCounterOfferTerms is looser than creation: amount and term days are
// required, operation-specific fields stay optional but still range-checked.
func validateCounterOfferTerms(terms models.ProposalTerms) error {
	if terms.Amount <= 0 {
		return models.NewFieldError("amount", "must be greater than zero")
	}
	if terms.TermDays <= 0 {
		return models.NewFieldError("term_days", "must be greater than zero")
	}
	if terms.InterestRate == 0 && terms.DiscountRate == 0 &&
		(terms.Factoring == nil || terms.Factoring.CommissionRate == 0) &&
		(terms.Confirming == nil || terms.Confirming.ConfirmingCommission == 0) {
		return models.NewFieldError("interest_rate", "a rate is required for a counter offer")
	}
	if t := terms.Factoring; t != nil {
		if t.AdvancePercentage != 0 && (t.AdvancePercentage < 70 || t.AdvancePercentage > 90) {
			return models.NewFieldError("advance_percentage", "must be between 70 and 90")
		}
		if t.CommissionRate != 0 && (t.CommissionRate < 0.5 || t.CommissionRate > 10) {
			return models.NewFieldError("commission_rate", "must be between 0.5 and 10")
		}
	}
	if t := terms.Confirming; t != nil {
		if t.ConfirmingCommission != 0 && (t.ConfirmingCommission < 0.5 || t.ConfirmingCommission > 10) {
			return models.NewFieldError("confirming_commission", "must be between 0.5 and 10")
		}
		if t.EarlyPaymentDiscount < 0 || t.EarlyPaymentDiscount > 20 {
			return models.NewFieldError("early_payment_discount", "must be between 0 and 20")
		}
	}
	return nil
}

func (s *ProposalService) ownedByInvestor(ctx context.Context, userID int, proposal models.InvestmentProposal) error {
	investor, err := s.InvestorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if investor.ID != proposal.InvestorID {
		return models.ErrForbidden
	}
	return nil
}

func (s *ProposalService) authorizeCompanyResponder(ctx context.Context, userID int, invoice models.Invoice) error {
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	return authorizeCompanyUser(user, invoice)
}

// authorizeCompanyUser is the company-side authorization rule: admins pass,
// everyone else must belong to the company owning the invoice.
func authorizeCompanyUser(user models.User, invoice models.Invoice) error {
	if user.Role == models.RoleAdmin {
		return nil
	}
	if user.CompanyID == nil || *user.CompanyID != invoice.CompanyID {
		return models.ErrForbidden
	}
	return nil
}

func (s *ProposalService) pastDeadline(p models.InvestmentProposal, now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

// Send moves a draft proposal to sent and notifies the company.
func (s *ProposalService) Send(ctx context.Context, userID, proposalID int) (models.InvestmentProposal, error) {
	proposal, err := s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if err := s.ownedByInvestor(ctx, userID, proposal); err != nil {
		return models.InvestmentProposal{}, err
	}
	if err := s.ProposalRepo.MarkSent(ctx, proposalID, s.now()); err != nil {
		return models.InvestmentProposal{}, err
	}

	proposal, err = s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	s.notifyInvoiceCompany(ctx, proposal, EventProposalSent, "New investment proposal received")
	return proposal, nil
}

// Approve settles a sent or pending proposal into an investment. The
// repository performs the whole settlement in one transaction.
func (s *ProposalService) Approve(ctx context.Context, userID, proposalID int, notes string) (models.InvestmentProposal, models.Investment, error) {
	proposal, err := s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, models.Investment{}, err
	}
	if !fsm.CanBeResponded(proposal.Status) {
		return models.InvestmentProposal{}, models.Investment{}, models.ErrInvalidTransition
	}
	now := s.now()
	if s.pastDeadline(proposal, now) {
		return models.InvestmentProposal{}, models.Investment{}, models.ErrInvalidTransition
	}

	invoice, err := s.InvoiceRepo.GetByID(ctx, proposal.InvoiceID)
	if err != nil {
		return models.InvestmentProposal{}, models.Investment{}, err
	}
	if err := s.authorizeCompanyResponder(ctx, userID, invoice); err != nil {
		return models.InvestmentProposal{}, models.Investment{}, err
	}

	investment, payments := pricing.Settlement(invoice, proposal, now)

	// capacity is re-checked at the settlement boundary, not only at creation
	investor, err := s.InvestorRepo.GetByID(ctx, proposal.InvestorID)
	if err != nil {
		return models.InvestmentProposal{}, models.Investment{}, err
	}
	if err := risk.Validate(investor, investment.Amount); err != nil {
		return models.InvestmentProposal{}, models.Investment{}, err
	}

	settled, err := s.InvestmentRepo.SettleProposal(ctx, proposal, investment, payments, &userID, strings.TrimSpace(notes), now)
	if err != nil {
		return models.InvestmentProposal{}, models.Investment{}, err
	}

	proposal, err = s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, models.Investment{}, err
	}
	s.notifyInvestor(ctx, proposal, EventProposalApproved, "Your proposal was approved and settled")
	s.notifyInvestor(ctx, proposal, EventInvestmentCreated, "A new investment was created")
	return proposal, settled, nil
}

// Reject finalises a proposal with the company's reason.
func (s *ProposalService) Reject(ctx context.Context, userID, proposalID int, reason string) (models.InvestmentProposal, error) {
	proposal, err := s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if !fsm.CanBeResponded(proposal.Status) {
		return models.InvestmentProposal{}, models.ErrInvalidTransition
	}
	invoice, err := s.InvoiceRepo.GetByID(ctx, proposal.InvoiceID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if err := s.authorizeCompanyResponder(ctx, userID, invoice); err != nil {
		return models.InvestmentProposal{}, err
	}

	response := strings.TrimSpace(reason)
	if response == "" {
		response = "rejected"
	}
	if err := s.ProposalRepo.Respond(ctx, proposalID, proposal.Status, fsm.StatusRejected, response, &userID, s.now()); err != nil {
		return models.InvestmentProposal{}, err
	}

	proposal, err = s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	s.notifyInvestor(ctx, proposal, EventProposalRejected, "Your proposal was rejected")
	return proposal, nil
}

// CounterOffer marks the parent counter_offered and creates the linked child
// proposal in one transaction.
func (s *ProposalService) CounterOffer(ctx context.Context, userID, proposalID int, req models.CounterOfferRequest) (models.InvestmentProposal, models.InvestmentProposal, error) {
	parent, err := s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, models.InvestmentProposal{}, err
	}
	if !fsm.CanBeResponded(parent.Status) {
		return models.InvestmentProposal{}, models.InvestmentProposal{}, models.ErrInvalidTransition
	}
	invoice, err := s.InvoiceRepo.GetByID(ctx, parent.InvoiceID)
	if err != nil {
		return models.InvestmentProposal{}, models.InvestmentProposal{}, err
	}
	if err := s.authorizeCompanyResponder(ctx, userID, invoice); err != nil {
		return models.InvestmentProposal{}, models.InvestmentProposal{}, err
	}
	if err := validateCounterOfferTerms(req.Terms); err != nil {
		return models.InvestmentProposal{}, models.InvestmentProposal{}, err
	}

	now := s.now()
	child := models.InvestmentProposal{
		Terms:   req.Terms,
		Message: strings.TrimSpace(req.Message),
	}
	if s.ResponseWindow > 0 {
		expires := now.Add(s.ResponseWindow)
		child.ExpiresAt = &expires
	}

	created, err := s.ProposalRepo.CreateCounterOffer(ctx, proposalID, child, &userID, now)
	if err != nil {
		return models.InvestmentProposal{}, models.InvestmentProposal{}, err
	}

	parent, err = s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, models.InvestmentProposal{}, err
	}
	s.notifyInvestor(ctx, created, EventCounterOffer, "The company responded with a counter offer")
	return parent, created, nil
}

// Withdraw lets the owning investor retract a proposal that is not yet
// settled.
func (s *ProposalService) Withdraw(ctx context.Context, userID, proposalID int) (models.InvestmentProposal, error) {
	proposal, err := s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if err := s.ownedByInvestor(ctx, userID, proposal); err != nil {
		return models.InvestmentProposal{}, err
	}
	if !fsm.IsActive(proposal.Status) {
		return models.InvestmentProposal{}, models.ErrInvalidTransition
	}
	if err := s.ProposalRepo.Respond(ctx, proposalID, proposal.Status, fsm.StatusWithdrawn, "", nil, s.now()); err != nil {
		return models.InvestmentProposal{}, err
	}

	proposal, err = s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	s.notifyInvoiceCompany(ctx, proposal, EventProposalWithdrawn, "A proposal was withdrawn")
	return proposal, nil
}

// Detail assembles the read model with the computed negotiation block.
func (s *ProposalService) Detail(ctx context.Context, proposalID int) (models.ProposalDetail, error) {
	proposal, err := s.ProposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return models.ProposalDetail{}, err
	}
	invoice, err := s.InvoiceRepo.GetByID(ctx, proposal.InvoiceID)
	if err != nil {
		return models.ProposalDetail{}, err
	}

	detail := models.ProposalDetail{Proposal: proposal}

	if proposal.ParentProposalID != nil {
		parent, err := s.ProposalRepo.GetByID(ctx, *proposal.ParentProposalID)
		if err == nil {
			detail.Parent = &parent
		}
	}
	children, err := s.ProposalRepo.CounterOffers(ctx, proposalID)
	if err != nil {
		return models.ProposalDetail{}, err
	}
	detail.CounterOffers = children

	amount := proposal.Terms.Amount
	if amount == 0 {
		amount = invoice.Amount
	}
	now := s.now()
	detail.ExpectedReturn = pricing.ExpectedReturn(amount, proposal.Terms)
	detail.TermsDifference = termsDifference(invoice, proposal.Terms, amount)
	detail.IsExpired = proposal.Status == fsm.StatusExpired || s.pastDeadline(proposal, now)
	detail.CanBeResponded = fsm.CanBeResponded(proposal.Status) && !detail.IsExpired
	return detail, nil
}

// termsDifference reports how the proposed terms deviate from the invoice's
// published conditions. Only fields that actually differ are included.
func termsDifference(invoice models.Invoice, terms models.ProposalTerms, amount float64) map[string]float64 {
	diff := map[string]float64{}
	put := func(key string, proposed, published float64) {
		if published != 0 || proposed != 0 {
			if d := proposed - published; math.Abs(d) > 1e-9 {
				diff[key] = d
			}
		}
	}
	put("amount", amount, invoice.Amount)
	if t := terms.Factoring; t != nil {
		put("advance_percentage", t.AdvancePercentage, invoice.AdvancePercentage)
		put("commission_rate", t.CommissionRate, invoice.CommissionRate)
	}
	if t := terms.Confirming; t != nil {
		put("confirming_commission", t.ConfirmingCommission, invoice.ConfirmingCommission)
		put("early_payment_discount", t.EarlyPaymentDiscount, invoice.EarlyPaymentDiscount)
	}
	if len(diff) == 0 {
		return nil
	}
	return diff
}

// ListMine returns the investor's proposals.
func (s *ProposalService) ListMine(ctx context.Context, userID int, status string) ([]models.InvestmentProposal, error) {
	investor, err := s.InvestorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ProposalRepo.ListByInvestor(ctx, investor.ID, status)
}

// ListForInvoice returns all proposals on an invoice for the owning company.
func (s *ProposalService) ListForInvoice(ctx context.Context, userID, invoiceID int) ([]models.InvestmentProposal, error) {
	invoice, err := s.InvoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCompanyResponder(ctx, userID, invoice); err != nil {
		return nil, err
	}
	return s.ProposalRepo.ListByInvoice(ctx, invoiceID)
}

// SweepExpired expires every overdue active proposal. Safe to re-run.
func (s *ProposalService) SweepExpired(ctx context.Context) (int64, error) {
	return s.ProposalRepo.ExpireOverdue(ctx, s.now())
}

func (s *ProposalService) notifyInvestor(ctx context.Context, proposal models.InvestmentProposal, eventType, message string) {
	if s.Notifier == nil {
		return
	}
	investor, err := s.InvestorRepo.GetByID(ctx, proposal.InvestorID)
	if err != nil {
		return
	}
	s.Notifier.Publish(ctx, models.NotificationEvent{
		Type:       eventType,
		ProposalID: proposal.ID,
		InvoiceID:  proposal.InvoiceID,
		UserIDs:    []int{investor.UserID},
		Message:    message,
	})
}

func (s *ProposalService) notifyInvoiceCompany(ctx context.Context, proposal models.InvestmentProposal, eventType, message string) {
	if s.Notifier == nil {
		return
	}
	invoice, err := s.InvoiceRepo.GetByID(ctx, proposal.InvoiceID)
	if err != nil {
		return
	}
	s.Notifier.PublishToCompany(ctx, invoice.CompanyID, models.NotificationEvent{
		Type:       eventType,
		ProposalID: proposal.ID,
		InvoiceID:  proposal.InvoiceID,
		Message:    message,
	})
}
