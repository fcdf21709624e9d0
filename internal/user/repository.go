package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo persists accounts in Postgres via database/sql (pgx stdlib driver).
//
// Assumed table:
//
//	users (
//	  id uuid primary key,
//	  email text not null unique,
//	  password_hash text not null,
//	  role text not null,
//	  full_name text not null,
//	  phone text not null default '',
//	  avatar_url text not null default '',
//	  business_name text not null default '',
//	  business_verified boolean not null default false,
//	  admin_role text not null default '',
//	  two_factor_enabled boolean not null default false,
//	  email_verified boolean not null default false,
//	  created_at timestamptz not null,
//	  updated_at timestamptz not null
//	)
type PGRepo struct {
	db *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo { return &PGRepo{db: db} }

const uniqueViolation = "23505"

func (r *PGRepo) Create(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (
  id, email, password_hash, role, full_name, phone, avatar_url,
  business_name, business_verified, admin_role,
  two_factor_enabled, email_verified, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FullName, u.Phone, u.AvatarURL,
		u.BusinessName, u.BusinessVerified, u.AdminRole,
		u.TwoFactorEnabled, u.EmailVerified, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

const selectColumns = `
id, email, password_hash, role, full_name, phone, avatar_url,
business_name, business_verified, admin_role,
two_factor_enabled, email_verified, created_at, updated_at
`

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM users WHERE email = $1`, email)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, id)
}

func (r *PGRepo) get(ctx context.Context, q, arg string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.Phone, &u.AvatarURL,
		&u.BusinessName, &u.BusinessVerified, &u.AdminRole,
		&u.TwoFactorEnabled, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PGRepo) SetEmailVerified(ctx context.Context, id string, verified bool, now time.Time) error {
	return r.exec(ctx, `UPDATE users SET email_verified = $2, updated_at = $3 WHERE id = $1`, id, verified, now)
}

func (r *PGRepo) SetTwoFactor(ctx context.Context, id string, enabled bool, now time.Time) error {
	return r.exec(ctx, `UPDATE users SET two_factor_enabled = $2, updated_at = $3 WHERE id = $1`, id, enabled, now)
}

func (r *PGRepo) UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, now)
}

func (r *PGRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
