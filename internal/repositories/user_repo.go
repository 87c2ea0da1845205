package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"finvoiceBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var companyID sql.NullInt64
	if user.CompanyID != nil {
		companyID = sql.NullInt64{Int64: int64(*user.CompanyID), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (name, email, password, role, company_id) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.Password, user.Role, companyID)
	if err != nil {
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return r.GetUserByID(ctx, int(id))
}

func scanUser(row proposalScanner) (models.User, error) {
	var (
		user      models.User
		companyID sql.NullInt64
		updatedAt sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &companyID, &user.CreatedAt, &updatedAt)
	if err != nil {
		return models.User{}, err
	}
	if companyID.Valid {
		id := int(companyID.Int64)
		user.CompanyID = &id
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		user.UpdatedAt = &t
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, password, role, company_id, created_at, updated_at FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, password, role, company_id, created_at, updated_at FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SetSession stores the refresh session for a user, replacing any previous one.
func (r *UserRepository) SetSession(ctx context.Context, userID int, session models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
                INSERT INTO sessions (user_id, refresh_token, expires_at)
                VALUES (?, ?, ?)
                ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)
        `, userID, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var session models.Session
	err := r.DB.QueryRowContext(ctx, `
                SELECT s.user_id, u.role, s.refresh_token, s.expires_at
                FROM sessions s JOIN users u ON u.id = s.user_id
                WHERE s.refresh_token = ?
        `, refreshToken).Scan(&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	return err
}
