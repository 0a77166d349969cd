package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/stitchkit/stitchkit/backend-go/internal/auth"
	"github.com/stitchkit/stitchkit/backend-go/internal/session"
)

type stubSource struct {
	sess     *session.Session
	getErr   error
	doc      json.RawMessage
	getCalls int
	docCalls int
}

func (s *stubSource) Get(ctx context.Context, sessionID, userID string) (*session.Session, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.sess, nil
}

func (s *stubSource) DesignDocument(ctx context.Context, sessionID string) (json.RawMessage, error) {
	s.docCalls++
	return s.doc, nil
}

func exportRequest(userID string) *http.Request {
	req := httptest.NewRequest("GET", "/api/sessions/sess_x/export", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, userID))
	return mux.SetURLVars(req, map[string]string{"sessionId": "sess_x"})
}

func TestExportDesignChecksOwnershipOnce(t *testing.T) {
	src := &stubSource{
		sess: &session.Session{ID: "sess_x", Name: "Summer Hoodie!"},
		doc:  json.RawMessage(`{"version":1}`),
	}
	h := NewHandler(src)

	rec := httptest.NewRecorder()
	h.ExportDesign(rec, exportRequest("user_a"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"version":1}` {
		t.Fatalf("body=%q", got)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Summer-Hoodie-.stitchkit.json"` {
		t.Fatalf("content-disposition=%q", cd)
	}
	if src.getCalls != 1 || src.docCalls != 1 {
		t.Fatalf("getCalls=%d docCalls=%d; want one of each", src.getCalls, src.docCalls)
	}
}

func TestExportDesignForbidden(t *testing.T) {
	src := &stubSource{getErr: session.ErrForbidden}
	h := NewHandler(src)

	rec := httptest.NewRecorder()
	h.ExportDesign(rec, exportRequest("user_b"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d; want 403", rec.Code)
	}
	if src.docCalls != 0 {
		t.Fatalf("document fetched for a forbidden session")
	}
}
