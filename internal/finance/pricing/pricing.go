package pricing

import (
	"time"

	"finvoiceBack/internal/models"
)

// All rate inputs are percentages on the 0-100 scale and are divided by 100
// exactly once, here. Callers must never pre-scale them.

// FactoringReturn computes the commission earned on the advanced part of a
// factoring invoice.
func FactoringReturn(amount, advancePercentage, commissionRate float64) float64 {
	advance := amount * advancePercentage / 100
	return advance * commissionRate / 100
}

// ConfirmingReturn computes the confirming commission, plus the early payment
// discount when the supplier requested an advance.
func ConfirmingReturn(amount, confirmingCommission, earlyPaymentDiscount float64, advanceRequest bool) float64 {
	ret := amount * confirmingCommission / 100
	if advanceRequest {
		ret += amount * earlyPaymentDiscount / 100
	}
	return ret
}

// FallbackReturn is used when no operation-specific rate is present: simple
// interest over the proposed term.
func FallbackReturn(amount, interestRate float64, termDays int) float64 {
	return amount * interestRate / 100 * float64(termDays) / 365
}

// SupplierPayment is the discounted amount paid out to the supplier on a
// confirming advance.
func SupplierPayment(amount, earlyPaymentDiscount float64) float64 {
	return amount - amount*earlyPaymentDiscount/100
}

// CompanyCollection is the full amount plus commission collected from the
// company at maturity.
func CompanyCollection(amount, confirmingCommission float64) float64 {
	return amount + amount*confirmingCommission/100
}

// ReturnRate picks the effective rate recorded on the settled investment.
// The operation-specific commission wins over the generic discount_rate,
// which in turn wins over the plain interest rate.
func ReturnRate(terms models.ProposalTerms) float64 {
	if terms.Factoring != nil && terms.Factoring.CommissionRate > 0 {
		return terms.Factoring.CommissionRate
	}
	if terms.Confirming != nil && terms.Confirming.ConfirmingCommission > 0 {
		return terms.Confirming.ConfirmingCommission
	}
	if terms.DiscountRate > 0 {
		return terms.DiscountRate
	}
	return terms.InterestRate
}

// ExpectedReturn computes the investor's expected return for the given base
// amount under the proposed terms.
func ExpectedReturn(amount float64, terms models.ProposalTerms) float64 {
	if t := terms.Factoring; t != nil {
		rate := t.CommissionRate
		if rate == 0 {
			rate = terms.DiscountRate
		}
		if rate > 0 {
			return FactoringReturn(amount, t.AdvancePercentage, rate)
		}
	}
	if t := terms.Confirming; t != nil {
		rate := t.ConfirmingCommission
		if rate == 0 {
			rate = terms.DiscountRate
		}
		if rate > 0 {
			return ConfirmingReturn(amount, rate, t.EarlyPaymentDiscount, t.AdvanceRequest)
		}
	}
	return FallbackReturn(amount, terms.InterestRate, terms.TermDays)
}

// Settlement builds the Investment and, for confirming invoices with an
// advance request, the two derived Payments for an approved proposal. It
// performs no persistence; the repository stores everything in one
// transaction.
func Settlement(invoice models.Invoice, proposal models.InvestmentProposal, now time.Time) (models.Investment, []models.Payment) {
	amount := proposal.Terms.Amount
	if amount == 0 {
		amount = invoice.Amount
	}

	maturity := invoice.DueDate
	if proposal.Terms.TermDays > 0 {
		maturity = now.AddDate(0, 0, proposal.Terms.TermDays)
	}

	investment := models.Investment{
		InvestorID:     proposal.InvestorID,
		InvoiceID:      proposal.InvoiceID,
		ProposalID:     proposal.ID,
		Amount:         amount,
		ExpectedReturn: ExpectedReturn(amount, proposal.Terms),
		ReturnRate:     ReturnRate(proposal.Terms),
		InvestmentDate: now,
		MaturityDate:   maturity,
		Status:         models.InvestmentStatusActive,
	}

	var payments []models.Payment
	if t := proposal.Terms.Confirming; t != nil && t.AdvanceRequest {
		payments = []models.Payment{
			{
				Type:          models.PaymentTypeSupplierPayment,
				Amount:        SupplierPayment(invoice.Amount, t.EarlyPaymentDiscount),
				Status:        models.PaymentStatusPending,
				ScheduledDate: now,
			},
			{
				Type:          models.PaymentTypeCompanyCollection,
				Amount:        CompanyCollection(invoice.Amount, t.ConfirmingCommission),
				Status:        models.PaymentStatusPending,
				ScheduledDate: maturity,
			},
		}
	}

	return investment, payments
}
