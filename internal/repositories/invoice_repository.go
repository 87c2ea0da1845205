package repositories

import (
	"context"
	"database/sql"
	"errors"

	"finvoiceBack/internal/models"
)

type InvoiceRepository struct {
	DB *sql.DB
}

const invoiceColumns = `
                i.id, i.company_id, i.number, i.debtor_name, i.amount, i.operation_type, i.status, i.due_date,
                i.advance_percentage, i.commission_rate, i.early_payment_discount, i.confirming_commission, i.advance_request,
                i.document_url, i.created_at, i.updated_at`

func scanInvoice(row proposalScanner) (models.Invoice, error) {
	var (
		inv                  models.Invoice
		debtorName           sql.NullString
		advancePercentage    sql.NullFloat64
		commissionRate       sql.NullFloat64
		earlyPaymentDiscount sql.NullFloat64
		confirmingCommission sql.NullFloat64
		advanceRequest       sql.NullBool
		documentURL          sql.NullString
		updatedAt            sql.NullTime
	)

	err := row.Scan(
		&inv.ID,
		&inv.CompanyID,
		&inv.Number,
		&debtorName,
		&inv.Amount,
		&inv.OperationType,
		&inv.Status,
		&inv.DueDate,
		&advancePercentage,
		&commissionRate,
		&earlyPaymentDiscount,
		&confirmingCommission,
		&advanceRequest,
		&documentURL,
		&inv.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return models.Invoice{}, err
	}

	if debtorName.Valid {
		inv.DebtorName = debtorName.String
	}
	inv.AdvancePercentage = advancePercentage.Float64
	inv.CommissionRate = commissionRate.Float64
	inv.EarlyPaymentDiscount = earlyPaymentDiscount.Float64
	inv.ConfirmingCommission = confirmingCommission.Float64
	inv.AdvanceRequest = advanceRequest.Bool
	if documentURL.Valid {
		inv.DocumentURL = documentURL.String
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		inv.UpdatedAt = &t
	}
	return inv, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int) (models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices i WHERE i.id = ?`
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invoice{}, models.ErrInvoiceNotFound
	}
	if err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceRepository) ListByCompany(ctx context.Context, companyID int, status string) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices i WHERE i.company_id = ?`
	args := []interface{}{companyID}
	if status != "" {
		query += " AND i.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY i.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateStatusTx moves an invoice between statuses inside a caller-owned
// transaction, optimistically guarded by the expected current status.
func UpdateInvoiceStatusTx(ctx context.Context, tx *sql.Tx, invoiceID int, fromStatus, toStatus string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		toStatus, invoiceID, fromStatus)
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

func (r *InvoiceRepository) SetDocumentURL(ctx context.Context, invoiceID int, url string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE invoices SET document_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		url, invoiceID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrInvoiceNotFound
	}
	return nil
}
