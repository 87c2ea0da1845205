package services

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finvoiceBack/internal/models"
	"finvoiceBack/internal/repositories"
	"finvoiceBack/utils"
)

// UserService handles sign up, sign in and refresh sessions for investors,
// company members and admins.
type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
	JWTSecret    string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return models.User{}, models.NewFieldError("email", "name, email and password are required")
	}
	switch req.Role {
	case models.RoleInvestor, models.RoleCompany:
	default:
		return models.User{}, models.NewFieldError("role", "must be investor or company")
	}
	if req.Role == models.RoleCompany && req.CompanyID == nil {
		return models.User{}, models.NewFieldError("company_id", "required for company members")
	}

	if _, err := s.UserRepo.GetUserByEmail(ctx, req.Email); err == nil {
		return models.User{}, models.ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.UserRepo.CreateUser(ctx, models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.User, models.Tokens, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	user.Password = ""
	return user, tokens, nil
}

// Refresh rotates the session tied to a refresh token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if session == (models.Session{}) || session.ExpiresAt.Before(time.Now()) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	user, err := s.UserRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.issueTokens(ctx, user)
}

func (s *UserService) issueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	accessToken, err := s.newAccessToken(user)
	if err != nil {
		return models.Tokens{}, err
	}

	var refreshToken string
	if s.TokenManager != nil {
		refreshToken, err = s.TokenManager.NewRefreshToken()
		if err != nil {
			return models.Tokens{}, err
		}
	} else {
		refreshToken = uuid.New().String()
	}

	session := models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.RefreshTTL),
	}
	if err := s.UserRepo.SetSession(ctx, user.ID, session); err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *UserService) newAccessToken(user models.User) (string, error) {
	claims := &models.Claims{
		UserID: uint(user.ID),
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(s.AccessTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	if user.CompanyID != nil {
		claims.CompanyID = *user.CompanyID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.JWTSecret))
}
