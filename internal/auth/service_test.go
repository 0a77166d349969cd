package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenCarriesIdentity(t *testing.T) {
	svc := NewService(nil, "test-secret")

	token, err := svc.issueToken("user_ada", "Ada")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != "user_ada" || claims.DisplayName != "Ada" {
		t.Fatalf("claims=%+v; want user_ada/Ada", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewService(nil, "test-secret")
	token, err := svc.issueToken("user_ada", "Ada")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	other := NewService(nil, "different-secret")
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret validated")
	}
	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Fatal("garbage token validated")
	}
}

func TestAuthMiddlewareTokenSources(t *testing.T) {
	svc := NewService(nil, "test-secret")
	token, err := svc.issueToken("user_ada", "Ada")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotUser, gotName string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotName = DisplayNameFromContext(r.Context())
	})
	handler := svc.AuthMiddleware(next)

	cases := []struct {
		name       string
		target     string
		authHeader string
		wantStatus int
	}{
		{"bearer header", "/api/sessions", "Bearer " + token, http.StatusOK},
		{"query token", "/api/sessions?token=" + token, "", http.StatusOK},
		{"missing", "/api/sessions", "", http.StatusUnauthorized},
		{"bad token", "/api/sessions", "Bearer bogus", http.StatusUnauthorized},
		{"wrong scheme", "/api/sessions", "Basic " + token, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		gotUser, gotName = "", ""
		req := httptest.NewRequest("GET", tc.target, nil)
		if tc.authHeader != "" {
			req.Header.Set("Authorization", tc.authHeader)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tc.wantStatus {
			t.Fatalf("%s: status=%d; want %d", tc.name, rec.Code, tc.wantStatus)
		}
		if tc.wantStatus == http.StatusOK && (gotUser != "user_ada" || gotName != "Ada") {
			t.Fatalf("%s: context carried %q/%q; want user_ada/Ada", tc.name, gotUser, gotName)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("normalizeEmail=%q", got)
	}
}
