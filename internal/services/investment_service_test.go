package services

import (
	"errors"
	"testing"

	"finvoiceBack/internal/models"
)

func TestAuthorizeCompanyUser(t *testing.T) {
	invoice := models.Invoice{ID: 1, CompanyID: 10}

	owner := 10
	member := models.User{ID: 3, Role: models.RoleCompany, CompanyID: &owner}
	if err := authorizeCompanyUser(member, invoice); err != nil {
		t.Fatalf("member of the owning company rejected: %v", err)
	}

	admin := models.User{ID: 4, Role: models.RoleAdmin}
	if err := authorizeCompanyUser(admin, invoice); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}

	other := 20
	outsider := models.User{ID: 5, Role: models.RoleCompany, CompanyID: &other}
	if err := authorizeCompanyUser(outsider, invoice); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("member of another company must be forbidden, got %v", err)
	}

	// company-role account without a company link, e.g. a stale claim
	unlinked := models.User{ID: 6, Role: models.RoleCompany}
	if err := authorizeCompanyUser(unlinked, invoice); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("user without a company must be forbidden, got %v", err)
	}
}
