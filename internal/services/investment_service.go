package services

import (
	"context"

	"finvoiceBack/internal/models"
	"finvoiceBack/internal/repositories"
)

// InvestmentService serves the post-settlement lifecycle: listing, return
// processing and cancellation.
type InvestmentService struct {
	InvestmentRepo *repositories.InvestmentRepository
	InvestorRepo   *repositories.InvestorRepository
	InvoiceRepo    *repositories.InvoiceRepository
	UserRepo       *repositories.UserRepository
	Notifier       *NotificationService
}

func (s *InvestmentService) ListMine(ctx context.Context, userID int, status string) ([]models.Investment, error) {
	investor, err := s.InvestorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.InvestmentRepo.ListByInvestor(ctx, investor.ID, status)
}

func (s *InvestmentService) GetWithPayments(ctx context.Context, id int) (models.Investment, []models.Payment, error) {
	investment, err := s.InvestmentRepo.GetByID(ctx, id)
	if err != nil {
		return models.Investment{}, nil, err
	}
	payments, err := s.InvestmentRepo.ListPayments(ctx, id)
	if err != nil {
		return models.Investment{}, nil, err
	}
	return investment, payments, nil
}

// authorizeOwner checks that the acting user may manage the investment: only
// members of the company owning the backing invoice (or admins) may.
func (s *InvestmentService) authorizeOwner(ctx context.Context, userID int, investment models.Investment) error {
	invoice, err := s.InvoiceRepo.GetByID(ctx, investment.InvoiceID)
	if err != nil {
		return err
	}
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	return authorizeCompanyUser(user, invoice)
}

// Complete records the realised return on an active investment.
func (s *InvestmentService) Complete(ctx context.Context, userID, id int, actualReturn float64) (models.Investment, error) {
	if actualReturn < 0 {
		return models.Investment{}, models.NewFieldError("actual_return", "must not be negative")
	}
	investment, err := s.InvestmentRepo.GetByID(ctx, id)
	if err != nil {
		return models.Investment{}, err
	}
	if err := s.authorizeOwner(ctx, userID, investment); err != nil {
		return models.Investment{}, err
	}
	if err := s.InvestmentRepo.Complete(ctx, id, actualReturn); err != nil {
		return models.Investment{}, err
	}
	return s.InvestmentRepo.GetByID(ctx, id)
}

// Cancel voids an active investment and its pending payments.
func (s *InvestmentService) Cancel(ctx context.Context, userID, id int) (models.Investment, error) {
	investment, err := s.InvestmentRepo.GetByID(ctx, id)
	if err != nil {
		return models.Investment{}, err
	}
	if err := s.authorizeOwner(ctx, userID, investment); err != nil {
		return models.Investment{}, err
	}
	if err := s.InvestmentRepo.Cancel(ctx, id); err != nil {
		return models.Investment{}, err
	}
	return s.InvestmentRepo.GetByID(ctx, id)
}
