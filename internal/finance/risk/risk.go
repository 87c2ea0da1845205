package risk

import "finvoiceBack/internal/models"

// Validate checks a proposed amount against the investor's capacity and
// configured limits. Zero limits mean the limit is not set. Runs before
// proposal creation and before direct investment creation.
func Validate(investor models.Investor, amount float64) error {
	if amount <= 0 {
		return models.NewFieldError("amount", "must be greater than zero")
	}
	if investor.InvestmentCapacity > 0 && investor.CommittedAmount+amount > investor.InvestmentCapacity {
		return models.ErrCapacityExceeded
	}
	if investor.MinimumInvestment > 0 && amount < investor.MinimumInvestment {
		return models.ErrBelowMinimumInvestment
	}
	if investor.MaximumInvestment > 0 && amount > investor.MaximumInvestment {
		return models.ErrAboveMaximumInvestment
	}
	return nil
}
