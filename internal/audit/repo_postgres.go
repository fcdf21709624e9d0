package audit

import (
	"context"
	"database/sql"
)

// PGRepo appends events to Postgres. Insert-only; reads happen through
// back-office tooling, not this service.
type PGRepo struct {
	db *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, actor_user_id, actor_role, email, ip_address, message, metadata, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Type, e.ActorUserID, e.ActorRole, e.Email, e.IPAddress, e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}
