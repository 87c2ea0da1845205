package pricing

import (
	"math"
	"testing"
	"time"

	"finvoiceBack/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFactoringReturn(t *testing.T) {
	// 100,000 at 80% advance and 2.5% commission -> 2,000
	got := FactoringReturn(100000, 80, 2.5)
	if !almostEqual(got, 2000) {
		t.Fatalf("expected return 2000, got %v", got)
	}
}

func TestConfirmingReturnWithAdvance(t *testing.T) {
	// 50,000 at 1.5% commission plus 2% early payment discount -> 1,750
	got := ConfirmingReturn(50000, 1.5, 2, true)
	if !almostEqual(got, 1750) {
		t.Fatalf("expected return 1750, got %v", got)
	}
	// without advance the discount is not earned
	got = ConfirmingReturn(50000, 1.5, 2, false)
	if !almostEqual(got, 750) {
		t.Fatalf("expected return 750, got %v", got)
	}
}

func TestFallbackReturn(t *testing.T) {
	// 10,000 at 12% over 365 days is exactly 1,200
	got := FallbackReturn(10000, 12, 365)
	if !almostEqual(got, 1200) {
		t.Fatalf("expected return 1200, got %v", got)
	}
}

func TestOperationSpecificRateWinsOverDiscountRate(t *testing.T) {
	terms := models.ProposalTerms{
		Amount:       100000,
		DiscountRate: 9,
		Factoring:    &models.FactoringTerms{AdvancePercentage: 80, CommissionRate: 2.5},
	}
	if got := ExpectedReturn(100000, terms); !almostEqual(got, 2000) {
		t.Fatalf("commission_rate must win over discount_rate, got %v", got)
	}

	// discount_rate is used only when the specific commission is absent
	terms.Factoring.CommissionRate = 0
	if got := ExpectedReturn(100000, terms); !almostEqual(got, 7200) {
		t.Fatalf("expected discount fallback 100000*0.8*0.09 = 7200, got %v", got)
	}
}

func TestExpectedReturnFallsBackToInterest(t *testing.T) {
	terms := models.ProposalTerms{Amount: 10000, InterestRate: 12, TermDays: 365}
	if got := ExpectedReturn(10000, terms); !almostEqual(got, 1200) {
		t.Fatalf("expected interest fallback 1200, got %v", got)
	}
}

func TestSettlementConfirmingWithAdvance(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	invoice := models.Invoice{
		ID:            7,
		Amount:        50000,
		OperationType: models.OperationConfirming,
		DueDate:       now.AddDate(0, 2, 0),
	}
	proposal := models.InvestmentProposal{
		ID:         41,
		InvestorID: 3,
		InvoiceID:  7,
		Terms: models.ProposalTerms{
			TermDays: 60,
			Confirming: &models.ConfirmingTerms{
				ConfirmingCommission: 1.5,
				EarlyPaymentDiscount: 2,
				AdvanceRequest:       true,
			},
		},
	}

	investment, payments := Settlement(invoice, proposal, now)

	if !almostEqual(investment.Amount, 50000) {
		t.Fatalf("investment amount must default to invoice amount, got %v", investment.Amount)
	}
	if !almostEqual(investment.ExpectedReturn, 1750) {
		t.Fatalf("expected return 1750, got %v", investment.ExpectedReturn)
	}
	if investment.Status != models.InvestmentStatusActive {
		t.Fatalf("new investment must be active, got %s", investment.Status)
	}
	if !investment.MaturityDate.Equal(now.AddDate(0, 0, 60)) {
		t.Fatalf("maturity must be now + term days, got %v", investment.MaturityDate)
	}

	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	supplier, collection := payments[0], payments[1]
	if supplier.Type != models.PaymentTypeSupplierPayment || !almostEqual(supplier.Amount, 49000) {
		t.Fatalf("supplier payment 49000 expected, got %s %v", supplier.Type, supplier.Amount)
	}
	if collection.Type != models.PaymentTypeCompanyCollection || !almostEqual(collection.Amount, 50750) {
		t.Fatalf("company collection 50750 expected, got %s %v", collection.Type, collection.Amount)
	}
	if !supplier.ScheduledDate.Equal(now) {
		t.Fatalf("supplier payment is an advance and must be scheduled immediately")
	}
	if !collection.ScheduledDate.Equal(investment.MaturityDate) {
		t.Fatalf("collection must be scheduled at maturity")
	}
}

func TestSettlementFactoringProducesNoPayments(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	invoice := models.Invoice{ID: 9, Amount: 100000, OperationType: models.OperationFactoring, DueDate: now.AddDate(0, 3, 0)}
	proposal := models.InvestmentProposal{
		ID:         55,
		InvestorID: 4,
		InvoiceID:  9,
		Terms: models.ProposalTerms{
			Amount:    100000,
			TermDays:  90,
			Factoring: &models.FactoringTerms{AdvancePercentage: 80, CommissionRate: 2.5},
		},
	}

	investment, payments := Settlement(invoice, proposal, now)
	if len(payments) != 0 {
		t.Fatalf("factoring settlements must not derive payments, got %d", len(payments))
	}
	if !almostEqual(investment.ExpectedReturn, 2000) {
		t.Fatalf("expected return 2000, got %v", investment.ExpectedReturn)
	}
	if !almostEqual(investment.ReturnRate, 2.5) {
		t.Fatalf("return rate must be the commission rate, got %v", investment.ReturnRate)
	}
}
