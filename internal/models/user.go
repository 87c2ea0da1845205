package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// User roles.
const (
	RoleInvestor = "investor"
	RoleCompany  = "company"
	RoleAdmin    = "admin"
)

// User is an authenticated account. Company members carry CompanyID,
// investors are linked through the investors table.
type User struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Password  string     `json:"password,omitempty"`
	Role      string     `json:"role"`
	CompanyID *int       `json:"company_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Claims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	CompanyID int    `json:"company_id,omitempty"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       int       `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignUpRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CompanyID *int   `json:"company_id,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
