package repositories

import (
	"context"
	"database/sql"
	"errors"

	"finvoiceBack/internal/models"
)

type InvestorRepository struct {
	DB *sql.DB
}

// committed amount is derived as the sum of active investments, never stored.
const investorQuery = `
                SELECT iv.id, iv.user_id, iv.investment_capacity, iv.minimum_investment, iv.maximum_investment,
                       iv.risk_tolerance, iv.created_at,
                       COALESCE((SELECT SUM(n.amount) FROM investments n WHERE n.investor_id = iv.id AND n.status = 'active'), 0)
                FROM investors iv`

func scanInvestor(row proposalScanner) (models.Investor, error) {
	var (
		inv           models.Investor
		riskTolerance sql.NullString
	)
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.InvestmentCapacity,
		&inv.MinimumInvestment,
		&inv.MaximumInvestment,
		&riskTolerance,
		&inv.CreatedAt,
		&inv.CommittedAmount,
	)
	if err != nil {
		return models.Investor{}, err
	}
	if riskTolerance.Valid {
		inv.RiskTolerance = riskTolerance.String
	}
	return inv, nil
}

func (r *InvestorRepository) GetByID(ctx context.Context, id int) (models.Investor, error) {
	inv, err := scanInvestor(r.DB.QueryRowContext(ctx, investorQuery+` WHERE iv.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Investor{}, models.ErrInvestorNotFound
	}
	if err != nil {
		return models.Investor{}, err
	}
	return inv, nil
}

func (r *InvestorRepository) GetByUserID(ctx context.Context, userID int) (models.Investor, error) {
	inv, err := scanInvestor(r.DB.QueryRowContext(ctx, investorQuery+` WHERE iv.user_id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Investor{}, models.ErrInvestorNotFound
	}
	if err != nil {
		return models.Investor{}, err
	}
	return inv, nil
}
