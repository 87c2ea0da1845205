package risk

import (
	"errors"
	"testing"

	"finvoiceBack/internal/models"
)

func TestValidate(t *testing.T) {
	investor := models.Investor{
		InvestmentCapacity: 100000,
		MinimumInvestment:  1000,
		MaximumInvestment:  50000,
		CommittedAmount:    80000,
	}

	if err := Validate(investor, 20000); err != nil {
		t.Fatalf("20000 fits exactly into remaining capacity: %v", err)
	}
	if err := Validate(investor, 20001); !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if err := Validate(investor, 500); !errors.Is(err, models.ErrBelowMinimumInvestment) {
		t.Fatalf("expected minimum error, got %v", err)
	}

	investor.CommittedAmount = 0
	if err := Validate(investor, 60000); !errors.Is(err, models.ErrAboveMaximumInvestment) {
		t.Fatalf("expected maximum error, got %v", err)
	}
	if err := Validate(investor, 0); !errors.Is(err, models.ErrProposalTermsValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestValidateUnsetLimits(t *testing.T) {
	// zero limits mean not configured
	investor := models.Investor{}
	if err := Validate(investor, 1_000_000); err != nil {
		t.Fatalf("unset limits must not restrict, got %v", err)
	}
}
