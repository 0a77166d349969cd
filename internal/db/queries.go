package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries is the hand-written query layer over the connection pool. Callers
// detect missing rows with errors.Is(err, pgx.ErrNoRows).
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Session struct {
	ID        string
	Name      string
	OwnerID   string
	GarmentID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Snapshot struct {
	ID        string
	SessionID string
	Version   int32
	Design    []byte
	CreatedAt time.Time
}

func (q *Queries) CreateUser(ctx context.Context, id, email, password, displayName string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, display_name, created_at`,
		id, email, password, displayName)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE email = $1`, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE id = $1`, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

// CreateSessionWithSeed inserts a session and its version-1 snapshot in one
// transaction, so a session row never exists without a design to resume.
func (q *Queries) CreateSessionWithSeed(ctx context.Context, id, name, ownerID, garmentID, snapshotID string, design []byte) (Session, error) {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO sessions (id, name, owner_id, garment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, owner_id, garment_id, created_at, updated_at`,
		id, name, ownerID, garmentID)
	var s Session
	if err := row.Scan(&s.ID, &s.Name, &s.OwnerID, &s.GarmentID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Session{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO design_snapshots (id, session_id, version, design)
		VALUES ($1, $2, 1, $3)`,
		snapshotID, id, design)
	if err != nil {
		return Session{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, garment_id, created_at, updated_at
		FROM sessions WHERE id = $1`, id)
	var s Session
	err := row.Scan(&s.ID, &s.Name, &s.OwnerID, &s.GarmentID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) ListSessionsForUser(ctx context.Context, ownerID string) ([]Session, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT id, name, owner_id, garment_id, created_at, updated_at
		FROM sessions WHERE owner_id = $1
		ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID, &s.GarmentID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (q *Queries) TouchSession(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `UPDATE sessions SET updated_at = now() WHERE id = $1`, id)
	return err
}

func (q *Queries) CreateSnapshot(ctx context.Context, id, sessionID string, version int32, design []byte) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO design_snapshots (id, session_id, version, design)
		VALUES ($1, $2, $3, $4)
		RETURNING id, session_id, version, design, created_at`,
		id, sessionID, version, design)
	var s Snapshot
	err := row.Scan(&s.ID, &s.SessionID, &s.Version, &s.Design, &s.CreatedAt)
	return s, err
}

func (q *Queries) GetLatestSnapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, session_id, version, design, created_at
		FROM design_snapshots
		WHERE session_id = $1
		ORDER BY version DESC
		LIMIT 1`, sessionID)
	var s Snapshot
	err := row.Scan(&s.ID, &s.SessionID, &s.Version, &s.Design, &s.CreatedAt)
	return s, err
}
