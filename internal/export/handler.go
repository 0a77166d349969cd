package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/stitchkit/stitchkit/backend-go/internal/auth"
	"github.com/stitchkit/stitchkit/backend-go/internal/session"
)

// DesignSource is the slice of the session service the exporter needs: one
// ownership-checked lookup and one raw document fetch.
type DesignSource interface {
	Get(ctx context.Context, sessionID, userID string) (*session.Session, error)
	DesignDocument(ctx context.Context, sessionID string) (json.RawMessage, error)
}

// Handler serves design-document downloads. The export is the engine's
// serialization of the design (mode, materials, colors, ordered layers with
// resolved placements); rendering it to pixels or a mesh happens downstream.
type Handler struct {
	sessions DesignSource
}

func NewHandler(sessions DesignSource) *Handler {
	return &Handler{sessions: sessions}
}

// ExportDesign handles GET /api/sessions/{sessionId}/export and streams the
// latest design document as a JSON attachment.
func (h *Handler) ExportDesign(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := auth.UserIDFromContext(r.Context())

	// Get checks ownership once; the document fetch reuses that decision.
	sess, err := h.sessions.Get(r.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	doc, err := h.sessions.DesignDocument(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	name := sanitizeFilename(sess.Name)
	if name == "" {
		name = "design"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.stitchkit.json"`, name))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)

	slog.Info("design exported", "session", sessionID, "user", userID)
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, session.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		slog.Error("export error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
