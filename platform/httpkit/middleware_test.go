package httpkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type stubJWTConfig struct {
	secret string
}

func (c stubJWTConfig) GetJWTAccessSecret() string {
	return c.secret
}

type stubRevoker struct {
	revoked map[string]bool
}

func (r *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r.revoked[jti], nil
}

func signAccessToken(t *testing.T, secret string, subjectID uuid.UUID, jti string) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       subjectID.String(),
		"email":     "anna@acme.test",
		"is_client": true,
		"jti":       jti,
		"type":      "access",
		"exp":       now.Add(15 * time.Minute).Unix(),
		"iat":       now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newAuthTestRouter(revoker TokenRevoker) (*gin.Engine, *Identity) {
	gin.SetMode(gin.TestMode)
	var seen Identity

	engine := gin.New()
	engine.GET("/protected", AuthRequired(stubJWTConfig{secret: "test-secret"}, revoker), func(c *gin.Context) {
		seen = GetIdentity(c)
		c.Status(http.StatusOK)
	})
	return engine, &seen
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	engine, seen := newAuthTestRouter(nil)
	subjectID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signAccessToken(t, "test-secret", subjectID, "jti-1"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	id := *seen
	if !id.IsAuthenticated() {
		t.Fatal("identity not authenticated")
	}
	if id.SubjectID() != subjectID {
		t.Fatalf("subject = %s, want %s", id.SubjectID(), subjectID)
	}
	if id.Email() != "anna@acme.test" || !id.IsClient() {
		t.Fatalf("identity = %q client=%v", id.Email(), id.IsClient())
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	engine, _ := newAuthTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRequiredRejectsWrongSecret(t *testing.T) {
	engine, _ := newAuthTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signAccessToken(t, "other-secret", uuid.New(), "jti-1"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRequiredRejectsRevokedJTI(t *testing.T) {
	revoker := &stubRevoker{revoked: map[string]bool{"jti-revoked": true}}
	engine, _ := newAuthTestRouter(revoker)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signAccessToken(t, "test-secret", uuid.New(), "jti-revoked"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if _, ok := extractBearerToken(""); ok {
		t.Fatal("empty header accepted")
	}
	if _, ok := extractBearerToken("Basic abc"); ok {
		t.Fatal("non-bearer scheme accepted")
	}
	if _, ok := extractBearerToken("Bearer "); ok {
		t.Fatal("empty token accepted")
	}
	token, ok := extractBearerToken("Bearer abc.def.ghi")
	if !ok || token != "abc.def.ghi" {
		t.Fatalf("got %q, %v", token, ok)
	}
}
