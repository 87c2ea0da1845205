package services

import (
	"errors"
	"math"
	"testing"

	"finvoiceBack/internal/models"
)

func factoringTerms(amount, advance, commission float64) models.ProposalTerms {
	return models.ProposalTerms{
		Amount:   amount,
		TermDays: 90,
		Factoring: &models.FactoringTerms{
			AdvancePercentage: advance,
			CommissionRate:    commission,
		},
	}
}

func TestValidateProposalTermsFactoring(t *testing.T) {
	if err := validateProposalTerms(models.OperationFactoring, factoringTerms(100000, 80, 2.5)); err != nil {
		t.Fatalf("valid factoring terms rejected: %v", err)
	}

	if err := validateProposalTerms(models.OperationFactoring, factoringTerms(100000, 95, 2.5)); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("advance_percentage 95 must be rejected, got %v", err)
	}
	if err := validateProposalTerms(models.OperationFactoring, factoringTerms(100000, 80, 11)); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("commission_rate 11 must be rejected, got %v", err)
	}
	if err := validateProposalTerms(models.OperationFactoring, factoringTerms(0, 80, 2.5)); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("zero amount must be rejected, got %v", err)
	}

	// missing operation-specific block
	terms := models.ProposalTerms{Amount: 1000, TermDays: 30, InterestRate: 10}
	if err := validateProposalTerms(models.OperationFactoring, terms); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("missing factoring terms must be rejected, got %v", err)
	}
}

func TestValidateProposalTermsFactoringDiscountFallback(t *testing.T) {
	// no commission, but a generic discount rate is an accepted fallback
	terms := factoringTerms(100000, 80, 0)
	terms.DiscountRate = 3
	if err := validateProposalTerms(models.OperationFactoring, terms); err != nil {
		t.Fatalf("discount_rate fallback rejected: %v", err)
	}
	terms.DiscountRate = 0
	if err := validateProposalTerms(models.OperationFactoring, terms); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("no rate at all must be rejected, got %v", err)
	}
}

func TestValidateProposalTermsConfirming(t *testing.T) {
	terms := models.ProposalTerms{
		Amount:   50000,
		TermDays: 60,
		Confirming: &models.ConfirmingTerms{
			ConfirmingCommission: 1.5,
			EarlyPaymentDiscount: 2,
			AdvanceRequest:       true,
		},
	}
	if err := validateProposalTerms(models.OperationConfirming, terms); err != nil {
		t.Fatalf("valid confirming terms rejected: %v", err)
	}

	terms.Confirming.EarlyPaymentDiscount = 25
	if err := validateProposalTerms(models.OperationConfirming, terms); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("early_payment_discount 25 must be rejected, got %v", err)
	}
	terms.Confirming.EarlyPaymentDiscount = 2

	terms.Confirming.ConfirmingCommission = 0.2
	if err := validateProposalTerms(models.OperationConfirming, terms); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("confirming_commission 0.2 must be rejected, got %v", err)
	}
}

func TestValidateCounterOfferTerms(t *testing.T) {
	terms := models.ProposalTerms{Amount: 40000, TermDays: 45, InterestRate: 8}
	if err := validateCounterOfferTerms(terms); err != nil {
		t.Fatalf("valid counter terms rejected: %v", err)
	}

	terms.TermDays = 0
	if err := validateCounterOfferTerms(terms); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("missing term_days must be rejected, got %v", err)
	}
	terms.TermDays = 45

	terms.InterestRate = 0
	if err := validateCounterOfferTerms(terms); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("counter offer without any rate must be rejected, got %v", err)
	}

	// an operation-specific commission also satisfies the rate requirement
	terms.Factoring = &models.FactoringTerms{AdvancePercentage: 80, CommissionRate: 2}
	if err := validateCounterOfferTerms(terms); err != nil {
		t.Fatalf("commission-only counter terms rejected: %v", err)
	}
}

func TestTermsDifference(t *testing.T) {
	invoice := models.Invoice{
		Amount:            100000,
		OperationType:     models.OperationFactoring,
		AdvancePercentage: 85,
		CommissionRate:    3,
	}
	terms := factoringTerms(90000, 80, 2.5)

	diff := termsDifference(invoice, terms, terms.Amount)
	if diff == nil {
		t.Fatalf("expected differences")
	}
	if got := diff["amount"]; math.Abs(got-(-10000)) > 1e-9 {
		t.Fatalf("amount diff -10000 expected, got %v", got)
	}
	if got := diff["advance_percentage"]; math.Abs(got-(-5)) > 1e-9 {
		t.Fatalf("advance diff -5 expected, got %v", got)
	}
	if got := diff["commission_rate"]; math.Abs(got-(-0.5)) > 1e-9 {
		t.Fatalf("commission diff -0.5 expected, got %v", got)
	}

	// identical terms produce no differences
	same := factoringTerms(100000, 85, 3)
	if diff := termsDifference(invoice, same, same.Amount); diff != nil {
		t.Fatalf("expected no differences, got %v", diff)
	}
}
