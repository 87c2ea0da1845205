package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvoiceNotFound    = errors.New("models: invoice not found")
	ErrProposalNotFound   = errors.New("models: investment proposal not found")
	ErrInvestorNotFound   = errors.New("models: investor not found")
	ErrInvestmentNotFound = errors.New("models: investment not found")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrCompanyNotFound    = errors.New("models: company not found")

	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
)

// Negotiation business rule violations.
var (
	ErrActiveProposalExists = errors.New("active proposal already exists for this investor and invoice")
	ErrInvalidTransition    = errors.New("invalid proposal status transition")
	ErrInvoiceNotProposable = errors.New("invoice is not open for proposals")
	ErrForbidden            = errors.New("actor is not allowed to perform this action")
	ErrCounterOfferCycle    = errors.New("counter offer would create a cycle in the proposal chain")

	ErrCapacityExceeded        = errors.New("investment capacity exceeded")
	ErrBelowMinimumInvestment  = errors.New("amount below investor minimum investment")
	ErrAboveMaximumInvestment  = errors.New("amount above investor maximum investment")
	ErrInvestmentNotActive     = errors.New("investment is not active")
	ErrProposalTermsValidation = errors.New("proposal terms validation failed")
)

// FieldError reports which field of a request failed validation. It unwraps
// to ErrProposalTermsValidation so handlers can keep using errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrProposalTermsValidation }

// NewFieldError builds a FieldError for the given field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
