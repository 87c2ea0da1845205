package models

import "time"

// Investor holds the capacity limits checked before any proposal or
// investment is created. CommittedAmount is derived as the sum of active
// investment amounts and never stored.
type Investor struct {
	ID                 int       `json:"id"`
	UserID             int       `json:"user_id"`
	InvestmentCapacity float64   `json:"investment_capacity"`
	MinimumInvestment  float64   `json:"minimum_investment"`
	MaximumInvestment  float64   `json:"maximum_investment"`
	RiskTolerance      string    `json:"risk_tolerance,omitempty"`
	CommittedAmount    float64   `json:"committed_amount"`
	CreatedAt          time.Time `json:"created_at"`
}
