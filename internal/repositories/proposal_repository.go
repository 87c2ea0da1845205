package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"finvoiceBack/internal/finance/fsm"
	"finvoiceBack/internal/models"
)

type ProposalRepository struct {
	DB *sql.DB
}

const proposalColumns = `
                p.id, p.investor_id, p.invoice_id, p.parent_proposal_id, p.status, p.operation_type,
                p.amount, p.interest_rate, p.discount_rate, p.term_days,
                p.advance_percentage, p.commission_rate, p.confirming_commission, p.early_payment_discount, p.advance_request,
                p.negotiation_terms, p.message, p.company_response, p.responded_by, p.responded_at,
                p.sent_at, p.expires_at, p.created_at, p.updated_at`

type proposalScanner interface {
	Scan(dest ...interface{}) error
}

func scanProposal(row proposalScanner) (models.InvestmentProposal, error) {
	var (
		p                    models.InvestmentProposal
		parentID             sql.NullInt64
		advancePercentage    sql.NullFloat64
		commissionRate       sql.NullFloat64
		confirmingCommission sql.NullFloat64
		earlyPaymentDiscount sql.NullFloat64
		advanceRequest       sql.NullBool
		negotiationTerms     sql.NullString
		message              sql.NullString
		companyResponse      sql.NullString
		respondedBy          sql.NullInt64
		respondedAt          sql.NullTime
		sentAt               sql.NullTime
		expiresAt            sql.NullTime
		updatedAt            sql.NullTime
	)

	err := row.Scan(
		&p.ID,
		&p.InvestorID,
		&p.InvoiceID,
		&parentID,
		&p.Status,
		&p.OperationType,
		&p.Terms.Amount,
		&p.Terms.InterestRate,
		&p.Terms.DiscountRate,
		&p.Terms.TermDays,
		&advancePercentage,
		&commissionRate,
		&confirmingCommission,
		&earlyPaymentDiscount,
		&advanceRequest,
		&negotiationTerms,
		&message,
		&companyResponse,
		&respondedBy,
		&respondedAt,
		&sentAt,
		&expiresAt,
		&p.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return models.InvestmentProposal{}, err
	}

	if parentID.Valid {
		id := int(parentID.Int64)
		p.ParentProposalID = &id
	}
	switch p.OperationType {
	case models.OperationFactoring:
		p.Terms.Factoring = &models.FactoringTerms{
			AdvancePercentage: advancePercentage.Float64,
			CommissionRate:    commissionRate.Float64,
		}
	case models.OperationConfirming:
		p.Terms.Confirming = &models.ConfirmingTerms{
			ConfirmingCommission: confirmingCommission.Float64,
			EarlyPaymentDiscount: earlyPaymentDiscount.Float64,
			AdvanceRequest:       advanceRequest.Bool,
		}
	}
	if negotiationTerms.Valid {
		p.Terms.NegotiationTerms = negotiationTerms.String
	}
	if message.Valid {
		p.Message = message.String
	}
	if companyResponse.Valid {
		p.CompanyResponse = companyResponse.String
	}
	if respondedBy.Valid {
		id := int(respondedBy.Int64)
		p.RespondedBy = &id
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		p.RespondedAt = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		p.SentAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		p.ExpiresAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		p.UpdatedAt = &t
	}
	return p, nil
}

func activeStatusPlaceholders() (string, []interface{}) {
	statuses := fsm.ActiveStatuses()
	marks := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		marks[i] = "?"
		args[i] = s
	}
	return strings.Join(marks, ", "), args
}

func termsArgs(terms models.ProposalTerms) (advancePercentage, commissionRate, confirmingCommission, earlyPaymentDiscount sql.NullFloat64, advanceRequest sql.NullBool) {
	if t := terms.Factoring; t != nil {
		advancePercentage = sql.NullFloat64{Float64: t.AdvancePercentage, Valid: true}
		commissionRate = sql.NullFloat64{Float64: t.CommissionRate, Valid: true}
	}
	if t := terms.Confirming; t != nil {
		confirmingCommission = sql.NullFloat64{Float64: t.ConfirmingCommission, Valid: true}
		earlyPaymentDiscount = sql.NullFloat64{Float64: t.EarlyPaymentDiscount, Valid: true}
		advanceRequest = sql.NullBool{Bool: t.AdvanceRequest, Valid: true}
	}
	return
}

// Create inserts a new draft proposal. The uniqueness invariant (at most one
// active proposal per investor-invoice pair) is enforced inside the same
// transaction with a locking check, so two concurrent creates cannot both
// succeed.
func (r *ProposalRepository) Create(ctx context.Context, p models.InvestmentProposal) (models.InvestmentProposal, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	defer tx.Rollback()

	marks, args := activeStatusPlaceholders()
	checkQuery := `SELECT id FROM investment_proposals WHERE investor_id = ? AND invoice_id = ? AND status IN (` + marks + `) FOR UPDATE`
	checkArgs := append([]interface{}{p.InvestorID, p.InvoiceID}, args...)

	var existingID int
	err = tx.QueryRowContext(ctx, checkQuery, checkArgs...).Scan(&existingID)
	if err == nil {
		return models.InvestmentProposal{}, models.ErrActiveProposalExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.InvestmentProposal{}, err
	}

	id, err := insertProposal(ctx, tx, p)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.InvestmentProposal{}, err
	}
	return r.GetByID(ctx, id)
}

func insertProposal(ctx context.Context, tx *sql.Tx, p models.InvestmentProposal) (int, error) {
	query := `
                INSERT INTO investment_proposals
                        (investor_id, invoice_id, parent_proposal_id, status, operation_type,
                         amount, interest_rate, discount_rate, term_days,
                         advance_percentage, commission_rate, confirming_commission, early_payment_discount, advance_request,
                         negotiation_terms, message, expires_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        `

	advancePercentage, commissionRate, confirmingCommission, earlyPaymentDiscount, advanceRequest := termsArgs(p.Terms)

	var parentID sql.NullInt64
	if p.ParentProposalID != nil {
		parentID = sql.NullInt64{Int64: int64(*p.ParentProposalID), Valid: true}
	}
	negotiationTerms := sql.NullString{String: p.Terms.NegotiationTerms, Valid: p.Terms.NegotiationTerms != ""}
	message := sql.NullString{String: strings.TrimSpace(p.Message), Valid: strings.TrimSpace(p.Message) != ""}
	var expiresAt sql.NullTime
	if p.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *p.ExpiresAt, Valid: true}
	}

	res, err := tx.ExecContext(ctx, query,
		p.InvestorID,
		p.InvoiceID,
		parentID,
		p.Status,
		p.OperationType,
		p.Terms.Amount,
		p.Terms.InterestRate,
		p.Terms.DiscountRate,
		p.Terms.TermDays,
		advancePercentage,
		commissionRate,
		confirmingCommission,
		earlyPaymentDiscount,
		advanceRequest,
		negotiationTerms,
		message,
		expiresAt,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, id int) (models.InvestmentProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM investment_proposals p WHERE p.id = ?`
	p, err := scanProposal(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.InvestmentProposal{}, models.ErrProposalNotFound
	}
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	return p, nil
}

func (r *ProposalRepository) queryProposals(ctx context.Context, query string, args ...interface{}) ([]models.InvestmentProposal, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []models.InvestmentProposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *ProposalRepository) ListByInvestor(ctx context.Context, investorID int, status string) ([]models.InvestmentProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM investment_proposals p WHERE p.investor_id = ?`
	args := []interface{}{investorID}
	if status != "" {
		query += " AND p.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY p.created_at DESC"
	return r.queryProposals(ctx, query, args...)
}

func (r *ProposalRepository) ListByInvoice(ctx context.Context, invoiceID int) ([]models.InvestmentProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM investment_proposals p WHERE p.invoice_id = ? ORDER BY p.created_at DESC`
	return r.queryProposals(ctx, query, invoiceID)
}

// CounterOffers returns the direct children of a proposal.
func (r *ProposalRepository) CounterOffers(ctx context.Context, parentID int) ([]models.InvestmentProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM investment_proposals p WHERE p.parent_proposal_id = ? ORDER BY p.created_at ASC`
	return r.queryProposals(ctx, query, parentID)
}

// MarkSent moves a draft proposal to sent and stamps sent_at. The optimistic
// WHERE clause rejects any other starting status.
func (r *ProposalRepository) MarkSent(ctx context.Context, id int, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE investment_proposals SET status = ?, sent_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		fsm.StatusSent, now, id, fsm.StatusDraft)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

// Respond finalises a proposal with a rejection or withdrawal in a single
// transaction. Approvals go through InvestmentRepository.SettleProposal
// because they span more entities.
func (r *ProposalRepository) Respond(ctx context.Context, id int, fromStatus, toStatus, response string, respondedBy *int, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, id, fromStatus, toStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidTransition
		}
		return err
	}
	if hasCompanyResponse(response, respondedBy) {
		if err := recordResponse(ctx, tx, id, response, respondedBy, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// hasCompanyResponse reports whether the status change carries a company-side
// response to stamp. Investor-initiated withdrawals pass neither a responder
// nor a response text, so the company audit fields stay untouched.
func hasCompanyResponse(response string, respondedBy *int) bool {
	return respondedBy != nil || response != ""
}

func recordResponse(ctx context.Context, tx *sql.Tx, id int, response string, respondedBy *int, now time.Time) error {
	var by sql.NullInt64
	if respondedBy != nil {
		by = sql.NullInt64{Int64: int64(*respondedBy), Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE investment_proposals SET company_response = ?, responded_by = ?, responded_at = ? WHERE id = ?`,
		response, by, now, id)
	return err
}

// CreateCounterOffer atomically marks the parent counter_offered and inserts
// the linked child proposal with status pending. The ancestor walk guards the
// chain against cycles before any row is touched.
func (r *ProposalRepository) CreateCounterOffer(ctx context.Context, parentID int, child models.InvestmentProposal, respondedBy *int, now time.Time) (models.InvestmentProposal, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	defer tx.Rollback()

	parent := models.InvestmentProposal{ID: parentID}
	err = tx.QueryRowContext(ctx,
		`SELECT status, investor_id, invoice_id, operation_type FROM investment_proposals WHERE id = ? FOR UPDATE`,
		parentID).Scan(&parent.Status, &parent.InvestorID, &parent.InvoiceID, &parent.OperationType)
	if errors.Is(err, sql.ErrNoRows) {
		return models.InvestmentProposal{}, models.ErrProposalNotFound
	}
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if !fsm.CanBeResponded(parent.Status) {
		return models.InvestmentProposal{}, models.ErrInvalidTransition
	}

	if err := checkAncestorChain(ctx, tx, parentID); err != nil {
		return models.InvestmentProposal{}, err
	}

	if err := fsm.Apply(ctx, tx, parentID, parent.Status, fsm.StatusCounterOffered); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.InvestmentProposal{}, models.ErrInvalidTransition
		}
		return models.InvestmentProposal{}, err
	}
	if err := recordResponse(ctx, tx, parentID, "counter_offer", respondedBy, now); err != nil {
		return models.InvestmentProposal{}, err
	}

	childID, err := insertProposal(ctx, tx, newCounterOfferChild(parent, child))
	if err != nil {
		return models.InvestmentProposal{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.InvestmentProposal{}, err
	}
	return r.GetByID(ctx, childID)
}

// newCounterOfferChild links a counter offer to the proposal it answers: the
// child keeps the parent's investor, invoice and operation type, points back
// through parent_proposal_id and starts out pending on the investor's side.
func newCounterOfferChild(parent, child models.InvestmentProposal) models.InvestmentProposal {
	parentID := parent.ID
	child.InvestorID = parent.InvestorID
	child.InvoiceID = parent.InvoiceID
	child.OperationType = parent.OperationType
	child.ParentProposalID = &parentID
	child.Status = fsm.StatusPending
	return child
}

// checkAncestorChain walks parent references upwards and fails when a
// proposal is reachable as its own ancestor.
func checkAncestorChain(ctx context.Context, tx *sql.Tx, startID int) error {
	visited := map[int]struct{}{}
	current := startID
	for {
		if _, ok := visited[current]; ok {
			return models.ErrCounterOfferCycle
		}
		visited[current] = struct{}{}

		var parent sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT parent_proposal_id FROM investment_proposals WHERE id = ?`, current).Scan(&parent)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if !parent.Valid {
			return nil
		}
		current = int(parent.Int64)
	}
}

// ExpireOverdue transitions every active proposal past its deadline to
// expired. A single conditional UPDATE keeps the sweep idempotent: rerunning
// with the same clock matches no additional rows.
func (r *ProposalRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	marks, args := activeStatusPlaceholders()
	query := `UPDATE investment_proposals
                SET status = ?, updated_at = CURRENT_TIMESTAMP
                WHERE status IN (` + marks + `) AND expires_at IS NOT NULL AND expires_at <= ?`
	execArgs := append([]interface{}{fsm.StatusExpired}, args...)
	execArgs = append(execArgs, now)

	res, err := r.DB.ExecContext(ctx, query, execArgs...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
