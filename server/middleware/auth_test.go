package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tokengate/auth/authctx"
	"github.com/kbukum/tokengate/auth/revocation"
	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/authz"
	"github.com/kbukum/tokengate/credential"
	apperrors "github.com/kbukum/tokengate/errors"
	"github.com/kbukum/tokengate/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Time) error { return nil }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

type authFixture struct {
	issuer  *token.Issuer
	revoked *revocation.MemoryStore
	router  *gin.Engine
	now     time.Time
}

func newAuthFixture(t *testing.T, revocations revocation.Store) *authFixture {
	t.Helper()
	f := &authFixture{now: epoch}
	clock := func() time.Time { return f.now }

	cfg := token.Config{KeyConfig: token.KeyConfig{Secret: testSecret}}
	cfg.ApplyDefaults()
	kr, err := token.KeyringFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	f.issuer = token.NewIssuer(kr, cfg, token.WithClock(clock))
	f.revoked = revocation.NewMemoryStore(clock)
	if revocations == nil {
		revocations = f.revoked
	}

	a := NewAuthenticator(token.NewValidator(kr, cfg, token.WithValidatorClock(clock)), revocations, nil, logger.NewNop())
	echo := func(c *gin.Context, claims *token.Claims) {
		name := "anonymous"
		if claims != nil {
			name = claims.Subject
		}
		c.JSON(http.StatusOK, gin.H{"subject": name, "ctx": authctx.Username(c.Request.Context())})
	}

	f.router = gin.New()
	f.router.GET("/hello", a.Protect(authz.Rule{Public: true}, echo))
	f.router.GET("/user", a.Protect(authz.Rule{Roles: []string{"USER"}}, echo))
	f.router.GET("/admin", a.Protect(authz.Rule{Roles: []string{"ADMIN"}}, echo))
	f.router.GET("/any", a.Protect(authz.Rule{}, echo))
	return f
}

func (f *authFixture) token(t *testing.T, username string, roles ...string) *token.Token {
	t.Helper()
	tok, err := f.issuer.Issue(credential.Principal{Username: username, Roles: roles, Enabled: true})
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (f *authFixture) do(path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func assertChallenge(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("expected WWW-Authenticate: Bearer, got %q", got)
	}
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != apperrors.ErrCodeUnauthorized || body.Error.Message != apperrors.Unauthorized("").Message {
		t.Errorf("expected generic unauthorized body, got %+v", body.Error)
	}
}

func TestProtect_PublicRoute(t *testing.T) {
	f := newAuthFixture(t, nil)
	rec := f.do("/hello", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Error("no cookie may be set")
	}
}

func TestProtect_Unauthenticated(t *testing.T) {
	f := newAuthFixture(t, nil)
	valid := f.token(t, "admin", "ADMIN").Value

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic YWRtaW46YWRtaW5QYXNz"},
		{"scheme only", "Bearer"},
		{"empty token", "Bearer   "},
		{"garbage token", "Bearer not.a.token"},
		{"tampered signature", "Bearer " + valid[:len(valid)-2] + "xx"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertChallenge(t, f.do("/admin", tc.header))
		})
	}
}

func TestProtect_SchemeIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t, nil)
	rec := f.do("/user", "bearer "+f.token(t, "user1", "USER").Value)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtect_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	tok := f.token(t, "admin", "ADMIN")
	f.now = tok.ExpiresAt().Add(time.Hour)
	assertChallenge(t, f.do("/admin", "Bearer "+tok.Value))
}

func TestProtect_RoleDecisions(t *testing.T) {
	f := newAuthFixture(t, nil)
	user := "Bearer " + f.token(t, "user1", "USER").Value
	admin := "Bearer " + f.token(t, "admin", "ADMIN", "USER").Value

	tests := []struct {
		path   string
		header string
		want   int
	}{
		{"/user", user, http.StatusOK},
		{"/admin", user, http.StatusForbidden},
		{"/admin", admin, http.StatusOK},
		{"/user", admin, http.StatusOK},
		{"/any", user, http.StatusOK},
	}
	for _, tc := range tests {
		rec := f.do(tc.path, tc.header)
		if rec.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.want, rec.Code)
		}
	}

	rec := f.do("/admin", user)
	if rec.Header().Get("WWW-Authenticate") != "" {
		t.Error("403 must not carry a bearer challenge")
	}
	var body apperrors.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error.Code != apperrors.ErrCodeForbidden {
		t.Errorf("expected FORBIDDEN, got %s", body.Error.Code)
	}
}

func TestProtect_ClaimsReachHandlerAndContext(t *testing.T) {
	f := newAuthFixture(t, nil)
	rec := f.do("/admin", "Bearer "+f.token(t, "admin", "ADMIN").Value)
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["subject"] != "admin" || body["ctx"] != "admin" {
		t.Errorf("expected subject on argument and context, got %v", body)
	}
}

func TestProtect_RevokedToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	tok := f.token(t, "admin", "ADMIN")
	if err := f.revoked.Revoke(context.Background(), tok.Claims.ID, tok.ExpiresAt()); err != nil {
		t.Fatal(err)
	}
	assertChallenge(t, f.do("/admin", "Bearer "+tok.Value))

	other := f.token(t, "admin", "ADMIN")
	if rec := f.do("/admin", "Bearer "+other.Value); rec.Code != http.StatusOK {
		t.Errorf("a different token for the same user should pass, got %d", rec.Code)
	}
}

func TestProtect_RevocationStoreDown(t *testing.T) {
	f := newAuthFixture(t, failingRevocations{})
	rec := f.do("/admin", "Bearer "+f.token(t, "admin", "ADMIN").Value)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 || !json.Valid(rec.Body.Bytes()) {
		t.Error("expected a JSON error body")
	}
}

func TestRequire_SetsContextForDownstream(t *testing.T) {
	f := newAuthFixture(t, nil)
	cfg := token.Config{KeyConfig: token.KeyConfig{Secret: testSecret}}
	cfg.ApplyDefaults()
	kr, _ := token.KeyringFromConfig(cfg)
	a := NewAuthenticator(token.NewValidator(kr, cfg, token.WithValidatorClock(func() time.Time { return epoch })), nil, nil, nil)

	r := gin.New()
	r.GET("/me", a.Require("USER"), func(c *gin.Context) {
		c.String(http.StatusOK, authctx.Username(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "user1", "USER").Value)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "user1" {
		t.Fatalf("expected 200 user1, got %d %q", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header, token, reason string
	}{
		{"", "", reasonMissingHeader},
		{"Bearer abc", "abc", ""},
		{"BEARER abc", "abc", ""},
		{"Token abc", "", reasonBadScheme},
		{"Bearerabc", "", reasonBadScheme},
		{"Bearer  ", "", reasonBadScheme},
	}
	for _, tc := range tests {
		tok, reason := bearerToken(tc.header)
		if tok != tc.token || reason != tc.reason {
			t.Errorf("bearerToken(%q) = %q, %q; want %q, %q", tc.header, tok, reason, tc.token, tc.reason)
		}
	}
}
