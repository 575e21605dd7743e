// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"auth-service/internal/domain/auth"
	xerrors "auth-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository is the durable side of the session subsystem: one row per
// active login in auth_sessions, indexed by session_id and by (user_id, is_valid).
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row. Rows are only ever created valid.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	query := `
		INSERT INTO auth_sessions (session_id, token, user_id, is_valid, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		session.SessionID, session.Token, session.UserID, session.IsValid, session.ExpiresAt,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Update overwrites the mutable fields of an existing row (rotation).
func (r *SessionRepository) Update(ctx context.Context, session *auth.Session) error {
	query := `
		UPDATE auth_sessions
		SET session_id = $1, token = $2, is_valid = $3, expires_at = $4
		WHERE id = $5
	`

	tag, err := r.db.Exec(ctx, query,
		session.SessionID, session.Token, session.IsValid, session.ExpiresAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// FindValidBySessionID looks up the valid row for a sid. A non-empty userID
// additionally scopes the lookup to that owner.
func (r *SessionRepository) FindValidBySessionID(ctx context.Context, sid, userID string) (*auth.Session, error) {
	query := `
		SELECT id, session_id, token, user_id, is_valid, expires_at
		FROM auth_sessions
		WHERE session_id = $1 AND is_valid = TRUE AND ($2 = '' OR user_id = $2)
	`

	var session auth.Session
	err := r.db.QueryRow(ctx, query, sid, userID).Scan(
		&session.ID, &session.SessionID, &session.Token,
		&session.UserID, &session.IsValid, &session.ExpiresAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session by sid: %w", err)
	}

	return &session, nil
}

// FindValidByToken looks up the valid row holding the presented refresh token.
// A miss here after rotation is how reuse of a rotated-away token shows up.
func (r *SessionRepository) FindValidByToken(ctx context.Context, token string) (*auth.Session, error) {
	query := `
		SELECT id, session_id, token, user_id, is_valid, expires_at
		FROM auth_sessions
		WHERE token = $1 AND is_valid = TRUE
	`

	var session auth.Session
	err := r.db.QueryRow(ctx, query, token).Scan(
		&session.ID, &session.SessionID, &session.Token,
		&session.UserID, &session.IsValid, &session.ExpiresAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}

	return &session, nil
}

// ListValidByUser returns every valid session row for a user.
func (r *SessionRepository) ListValidByUser(ctx context.Context, userID string) ([]*auth.Session, error) {
	query := `
		SELECT id, session_id, token, user_id, is_valid, expires_at
		FROM auth_sessions
		WHERE user_id = $1 AND is_valid = TRUE
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*auth.Session
	for rows.Next() {
		var session auth.Session
		if err := rows.Scan(
			&session.ID, &session.SessionID, &session.Token,
			&session.UserID, &session.IsValid, &session.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// Delete removes a single session row.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByIDs removes a batch of session rows in one statement.
func (r *SessionRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}
