package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"finvoiceBack/internal/finance/fsm"
	"finvoiceBack/internal/models"
)

type InvestmentRepository struct {
	DB *sql.DB
}

const investmentColumns = `
                n.id, n.investor_id, n.invoice_id, n.proposal_id, n.amount, n.expected_return, n.actual_return,
                n.return_rate, n.investment_date, n.maturity_date, n.status, n.created_at, n.updated_at`

func scanInvestment(row proposalScanner) (models.Investment, error) {
	var (
		inv          models.Investment
		actualReturn sql.NullFloat64
		updatedAt    sql.NullTime
	)
	err := row.Scan(
		&inv.ID,
		&inv.InvestorID,
		&inv.InvoiceID,
		&inv.ProposalID,
		&inv.Amount,
		&inv.ExpectedReturn,
		&actualReturn,
		&inv.ReturnRate,
		&inv.InvestmentDate,
		&inv.MaturityDate,
		&inv.Status,
		&inv.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return models.Investment{}, err
	}
	if actualReturn.Valid {
		v := actualReturn.Float64
		inv.ActualReturn = &v
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		inv.UpdatedAt = &t
	}
	return inv, nil
}

// SettleProposal converts an approved proposal into a binding investment in a
// single transaction: proposal -> approved with the company response,
// investment inserted, derived payments inserted, invoice -> funded. Any
// failure rolls the whole settlement back, so a partially settled state is
// never observable.
func (r *InvestmentRepository) SettleProposal(
	ctx context.Context,
	proposal models.InvestmentProposal,
	investment models.Investment,
	payments []models.Payment,
	respondedBy *int,
	notes string,
	now time.Time,
) (models.Investment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Investment{}, err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, proposal.ID, proposal.Status, fsm.StatusApproved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Investment{}, models.ErrInvalidTransition
		}
		return models.Investment{}, err
	}
	response := "approved"
	if notes != "" {
		response = notes
	}
	if err := recordResponse(ctx, tx, proposal.ID, response, respondedBy, now); err != nil {
		return models.Investment{}, err
	}

	res, err := tx.ExecContext(ctx, `
                INSERT INTO investments
                        (investor_id, invoice_id, proposal_id, amount, expected_return, return_rate,
                         investment_date, maturity_date, status)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `,
		investment.InvestorID,
		investment.InvoiceID,
		investment.ProposalID,
		investment.Amount,
		investment.ExpectedReturn,
		investment.ReturnRate,
		investment.InvestmentDate,
		investment.MaturityDate,
		models.InvestmentStatusActive,
	)
	if err != nil {
		return models.Investment{}, err
	}
	investmentID, err := res.LastInsertId()
	if err != nil {
		return models.Investment{}, err
	}

	for _, payment := range payments {
		_, err := tx.ExecContext(ctx, `
                        INSERT INTO payments (investment_id, type, amount, status, reference, scheduled_date)
                        VALUES (?, ?, ?, ?, ?, ?)
                `,
			investmentID,
			payment.Type,
			payment.Amount,
			models.PaymentStatusPending,
			uuid.New().String(),
			payment.ScheduledDate,
		)
		if err != nil {
			return models.Investment{}, err
		}
	}

	if err := UpdateInvoiceStatusTx(ctx, tx, investment.InvoiceID, models.InvoiceStatusApproved, models.InvoiceStatusFunded); err != nil {
		return models.Investment{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Investment{}, err
	}
	return r.GetByID(ctx, int(investmentID))
}

func (r *InvestmentRepository) GetByID(ctx context.Context, id int) (models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments n WHERE n.id = ?`
	inv, err := scanInvestment(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Investment{}, models.ErrInvestmentNotFound
	}
	if err != nil {
		return models.Investment{}, err
	}
	return inv, nil
}

func (r *InvestmentRepository) GetByProposalID(ctx context.Context, proposalID int) (models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments n WHERE n.proposal_id = ?`
	inv, err := scanInvestment(r.DB.QueryRowContext(ctx, query, proposalID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Investment{}, models.ErrInvestmentNotFound
	}
	if err != nil {
		return models.Investment{}, err
	}
	return inv, nil
}

func (r *InvestmentRepository) ListByInvestor(ctx context.Context, investorID int, status string) ([]models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments n WHERE n.investor_id = ?`
	args := []interface{}{investorID}
	if status != "" {
		query += " AND n.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY n.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return investments, nil
}

func (r *InvestmentRepository) ListPayments(ctx context.Context, investmentID int) ([]models.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `
                SELECT id, investment_id, type, amount, status, reference, scheduled_date, executed_at, created_at
                FROM payments WHERE investment_id = ? ORDER BY scheduled_date ASC
        `, investmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var (
			p          models.Payment
			executedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.InvestmentID, &p.Type, &p.Amount, &p.Status, &p.Reference, &p.ScheduledDate, &executedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		if executedAt.Valid {
			t := executedAt.Time
			p.ExecutedAt = &t
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

// Complete records the actual return of a matured investment.
func (r *InvestmentRepository) Complete(ctx context.Context, id int, actualReturn float64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE investments SET status = ?, actual_return = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		models.InvestmentStatusCompleted, actualReturn, id, models.InvestmentStatusActive)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrInvestmentNotActive
	}
	return nil
}

// Cancel voids an active investment and every payment still pending on it.
func (r *InvestmentRepository) Cancel(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE investments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		models.InvestmentStatusCancelled, id, models.InvestmentStatusActive)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrInvestmentNotActive
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE investment_id = ? AND status = ?`,
		models.PaymentStatusCancelled, id, models.PaymentStatusPending)
	if err != nil {
		return err
	}
	return tx.Commit()
}
