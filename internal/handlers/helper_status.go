package handlers

import (
	"errors"
	"net/http"

	"finvoiceBack/internal/models"
)

// writeError maps domain errors to HTTP statuses. Unknown errors are never
// leaked to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrProposalTermsValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidCredentials):
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrProposalNotFound):
		http.Error(w, "Proposal not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvoiceNotFound):
		http.Error(w, "Invoice not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvestorNotFound):
		http.Error(w, "Investor profile not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvestmentNotFound):
		http.Error(w, "Investment not found", http.StatusNotFound)
	case errors.Is(err, models.ErrUserNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	case errors.Is(err, models.ErrCompanyNotFound):
		http.Error(w, "Company not found", http.StatusNotFound)
	case errors.Is(err, models.ErrDuplicateEmail):
		http.Error(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, models.ErrActiveProposalExists):
		http.Error(w, "An active proposal already exists for this invoice", http.StatusConflict)
	case errors.Is(err, models.ErrInvalidTransition):
		http.Error(w, "The proposal cannot be moved to this status", http.StatusConflict)
	case errors.Is(err, models.ErrCounterOfferCycle):
		http.Error(w, "Counter offer would create a cycle", http.StatusConflict)
	case errors.Is(err, models.ErrInvestmentNotActive):
		http.Error(w, "Investment is not active", http.StatusConflict)
	case errors.Is(err, models.ErrInvoiceNotProposable):
		http.Error(w, "Invoice is not open for proposals", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrCapacityExceeded):
		http.Error(w, "Investment capacity exceeded", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrBelowMinimumInvestment):
		http.Error(w, "Amount is below the investor's minimum", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrAboveMaximumInvestment):
		http.Error(w, "Amount is above the investor's maximum", http.StatusUnprocessableEntity)
	case isForeignKeyConstraintError(err):
		http.Error(w, "Referenced record does not exist", http.StatusUnprocessableEntity)
	case isDuplicateEntryError(err):
		http.Error(w, "Record already exists", http.StatusConflict)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func userIDFromContext(r *http.Request) (int, bool) {
	userID, ok := r.Context().Value("user_id").(int)
	return userID, ok && userID != 0
}
