package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/db"
	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrForbidden = errors.New("forbidden")
)

// Service manages persisted configurator sessions. Each session is one
// user's design for one garment, stored as versioned snapshots of the export
// document.
type Service struct {
	queries *db.Queries
	catalog *catalog.Catalog
}

func NewService(queries *db.Queries, c *catalog.Catalog) *Service {
	return &Service{queries: queries, catalog: c}
}

type Session struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	GarmentID string `json:"garmentId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Create opens a new session and seeds its version-1 snapshot with the empty
// design, so resuming always finds a document. The session row and the seed
// snapshot commit together.
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Session, error) {
	emptyStore := design.NewStore(s.catalog, 1)
	docJSON, err := json.Marshal(emptyStore.Export())
	if err != nil {
		return nil, fmt.Errorf("marshal empty design: %w", err)
	}

	dbSess, err := s.queries.CreateSessionWithSeed(ctx,
		typeid.NewSessionID(), name, ownerID, s.catalog.GarmentID,
		typeid.NewSnapshotID(), docJSON)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return dbSessionToSession(dbSess), nil
}

func (s *Service) Get(ctx context.Context, sessionID, userID string) (*Session, error) {
	dbSess, err := s.queries.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if dbSess.OwnerID != userID {
		return nil, ErrForbidden
	}
	return dbSessionToSession(dbSess), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Session, error) {
	dbSessions, err := s.queries.ListSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]Session, len(dbSessions))
	for i, sess := range dbSessions {
		sessions[i] = *dbSessionToSession(sess)
	}
	return sessions, nil
}

func (s *Service) Delete(ctx context.Context, sessionID, userID string) error {
	dbSess, err := s.queries.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}
	if dbSess.OwnerID != userID {
		return ErrForbidden
	}
	return s.queries.DeleteSession(ctx, sessionID)
}

// GetLatestDesign returns the most recent design document for a session the
// user owns.
func (s *Service) GetLatestDesign(ctx context.Context, sessionID, userID string) (json.RawMessage, error) {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.DesignDocument(ctx, sessionID)
}

// DesignDocument returns the latest raw design document without an ownership
// check, for callers that have already authorized the session.
func (s *Service) DesignDocument(ctx context.Context, sessionID string) (json.RawMessage, error) {
	snap, err := s.queries.GetLatestSnapshot(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Design, nil
}

// SaveDesign appends a new snapshot version for the session. Called by the
// live hub when a room goes idle and at shutdown.
func (s *Service) SaveDesign(ctx context.Context, sessionID string, doc design.ExportDocument) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}

	nextVersion := int32(1)
	if snap, err := s.queries.GetLatestSnapshot(ctx, sessionID); err == nil {
		nextVersion = snap.Version + 1
	}

	if _, err := s.queries.CreateSnapshot(ctx, typeid.NewSnapshotID(), sessionID, nextVersion, docJSON); err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := s.queries.TouchSession(ctx, sessionID); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// LoadDesign loads the latest snapshot without an ownership check, for the
// hub loader (the websocket handshake has already authorized the caller).
func (s *Service) LoadDesign(ctx context.Context, sessionID string) (design.State, error) {
	snap, err := s.queries.GetLatestSnapshot(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return design.State{}, ErrNotFound
		}
		return design.State{}, fmt.Errorf("get snapshot: %w", err)
	}
	return design.ImportState(snap.Design)
}

// IsOwner reports whether the user owns the session.
func (s *Service) IsOwner(ctx context.Context, sessionID, userID string) (bool, error) {
	dbSess, err := s.queries.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("get session: %w", err)
	}
	return dbSess.OwnerID == userID, nil
}

func dbSessionToSession(s db.Session) *Session {
	return &Session{
		ID:        s.ID,
		Name:      s.Name,
		OwnerID:   s.OwnerID,
		GarmentID: s.GarmentID,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: s.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
