package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finvoiceBack/internal/models"
	"finvoiceBack/internal/repositories"
	"finvoiceBack/utils"
)

// InvoiceService exposes the read side of invoices plus document attachment.
// Invoice creation and approval live in the back office and are not part of
// this service.
type InvoiceService struct {
	InvoiceRepo *repositories.InvoiceRepository
	UserRepo    *repositories.UserRepository
	Documents   *utils.DocumentStore
}

func (s *InvoiceService) GetByID(ctx context.Context, id int) (models.Invoice, error) {
	return s.InvoiceRepo.GetByID(ctx, id)
}

func (s *InvoiceService) ListByCompany(ctx context.Context, companyID int, status string) ([]models.Invoice, error) {
	return s.InvoiceRepo.ListByCompany(ctx, companyID, status)
}

// AttachDocument uploads the receivable document to S3 and records its URL.
// Only members of the owning company may attach documents.
func (s *InvoiceService) AttachDocument(ctx context.Context, userID, invoiceID int, content []byte, contentType string) (string, error) {
	invoice, err := s.InvoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Role != models.RoleAdmin && (user.CompanyID == nil || *user.CompanyID != invoice.CompanyID) {
		return "", models.ErrForbidden
	}
	if s.Documents == nil {
		return "", fmt.Errorf("document storage is not configured")
	}

	fileName := fmt.Sprintf("invoice-%d-%s", invoiceID, uuid.New().String())
	url, err := s.Documents.Upload(content, fileName, "invoices", contentType)
	if err != nil {
		return "", err
	}
	if err := s.InvoiceRepo.SetDocumentURL(ctx, invoiceID, url); err != nil {
		return "", err
	}
	return url, nil
}
