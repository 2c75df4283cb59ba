package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bulkwala/internal/db"
	"bulkwala/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	// Create inserts user. A non-empty verifyHash is stored with its expiry.
	Create(ctx context.Context, user *User, verifyHash string, verifyExp time.Time) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Verify(ctx context.Context, tokenHash string) error
	SetResetToken(ctx context.Context, email, tokenHash string, exp time.Time) error
	ResetPassword(ctx context.Context, tokenHash string, newHash []byte) error
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const userColumns = `id::text, name, email, phone, password_hash, role, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Password.hash, &u.Role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *Repository) Create(ctx context.Context, user *User, verifyHash string, verifyExp time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	if user.Role == "" {
		user.Role = RoleCustomer
	}

	var token *string
	var exp *time.Time
	if verifyHash != "" {
		token, exp = &verifyHash, &verifyExp
	}

	query := `
		INSERT INTO users (name, email, phone, password_hash, role, is_verified, verification_token, verification_expires)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.Name, user.Email, user.Phone, user.Password.hash, user.Role, user.IsVerified, token, exp,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, err
}

// Verify marks the owner of an unexpired verification token as verified and
// clears the token so it cannot be replayed.
func (r *Repository) Verify(ctx context.Context, tokenHash string) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_verified = true, verification_token = NULL, verification_expires = NULL, updated_at = now()
		WHERE verification_token = $1 AND verification_expires > now()`, tokenHash)
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvalidToken
	}
	return nil
}

func (r *Repository) SetResetToken(ctx context.Context, email, tokenHash string, exp time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE users SET reset_token_hash = $1, reset_expires = $2, updated_at = now()
		WHERE lower(email) = lower($3)`, tokenHash, exp, email)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repository) ResetPassword(ctx context.Context, tokenHash string, newHash []byte) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_expires = NULL, updated_at = now()
		WHERE reset_token_hash = $2 AND reset_expires > now()`, newHash, tokenHash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvalidToken
	}
	return nil
}

func (r *Repository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	return cmd.RowsAffected(), nil
}
