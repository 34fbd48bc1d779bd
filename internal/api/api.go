// Package api registers the tokengate routes: a public greeting, sign-in
// and sign-out, role-gated greetings, the caller's own claims and the JWKS.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tokengate/auth/authctx"
	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/authz"
	apperrors "github.com/kbukum/tokengate/errors"
	"github.com/kbukum/tokengate/logger"
	"github.com/kbukum/tokengate/observability"
	"github.com/kbukum/tokengate/server"
	"github.com/kbukum/tokengate/server/middleware"
	"github.com/kbukum/tokengate/signin"
)

// Route paths.
const (
	PathHello   = "/hello"
	PathUser    = "/user"
	PathAdmin   = "/admin"
	PathMe      = "/me"
	PathSignIn  = "/signin"
	PathSignOut = "/signout"
	PathJWKS    = "/.well-known/jwks.json"
)

// SignInService is the part of signin.Service the handlers use.
type SignInService interface {
	SignIn(ctx context.Context, cred signin.Credential) (*signin.Result, error)
	SignOut(ctx context.Context, claims *token.Claims) error
}

// Handler serves the tokengate routes.
type Handler struct {
	signin  SignInService
	keyring *token.Keyring
	log     *logger.Logger
}

// NewHandler creates a Handler. keyring feeds the JWKS route.
func NewHandler(svc SignInService, keyring *token.Keyring, log *logger.Logger) *Handler {
	return &Handler{signin: svc, keyring: keyring, log: log.WithComponent("api")}
}

// Deps are the cross-cutting pieces Register needs.
type Deps struct {
	Authenticator *middleware.Authenticator
	Metrics       *observability.AuthMetrics
	// Context stops background work started by Register, such as the rate
	// limiter's cleanup.
	Context context.Context
}

// Register mounts the routes on r. Each route's access rule comes from
// cfg.Rules.
func Register(r gin.IRouter, h *Handler, cfg Config, deps Deps) {
	policy := authz.NewPolicy(cfg.Rules...)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	guard := func(method, path string, handler middleware.ClaimsHandler) gin.HandlerFunc {
		rule, _ := policy.Match(method, path)
		return deps.Authenticator.Protect(rule, handler)
	}

	r.GET(PathHello, guard(http.MethodGet, PathHello, h.Hello))
	r.GET(PathUser, guard(http.MethodGet, PathUser, h.User))
	r.GET(PathAdmin, guard(http.MethodGet, PathAdmin, h.Admin))
	r.GET(PathMe, guard(http.MethodGet, PathMe, h.Me))
	r.GET(PathJWKS, guard(http.MethodGet, PathJWKS, h.JWKS))

	signIn := []gin.HandlerFunc{guard(http.MethodPost, PathSignIn, h.SignIn)}
	if cfg.SignInRateLimit > 0 {
		signIn = append([]gin.HandlerFunc{middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.SignInRateLimit,
			Context:           deps.Context,
		})}, signIn...)
	}
	r.POST(PathSignIn, signIn...)

	// Sign-out always needs the caller's claims, so it authenticates even
	// when its rule is public, and is limited per subject.
	outRule, _ := policy.Match(http.MethodPost, PathSignOut)
	signOut := []gin.HandlerFunc{deps.Authenticator.Require(outRule.Roles...)}
	if cfg.SignOutRateLimit > 0 {
		signOut = append(signOut, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.SignOutRateLimit,
			KeyFunc:           middleware.SubjectBasedKey,
			Context:           deps.Context,
		}))
	}
	r.POST(PathSignOut, append(signOut, withContextClaims(h.SignOut))...)
}

// withContextClaims adapts a ClaimsHandler to run after Require.
func withContextClaims(h middleware.ClaimsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := authctx.Claims(c.Request.Context())
		h(c, claims)
	}
}

// Hello is public.
func (h *Handler) Hello(c *gin.Context, _ *token.Claims) {
	c.String(http.StatusOK, "Welcome to tokengate!")
}

// User requires the USER role under the default rules.
func (h *Handler) User(c *gin.Context, _ *token.Claims) {
	c.String(http.StatusOK, "Hello, User!")
}

// Admin requires the ADMIN role under the default rules.
func (h *Handler) Admin(c *gin.Context, _ *token.Claims) {
	c.String(http.StatusOK, "Hello, Admin!")
}

// MeResponse describes the caller's token.
type MeResponse struct {
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me returns the caller's own claims.
func (h *Handler) Me(c *gin.Context, claims *token.Claims) {
	if claims == nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}
	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	c.JSON(http.StatusOK, MeResponse{
		Username:  claims.Subject,
		Roles:     roles,
		IssuedAt:  claims.IssuedAtTime(),
		ExpiresAt: claims.ExpiresAtTime(),
	})
}

// JWKS publishes the public signing keys. It is empty for HMAC keyrings.
func (h *Handler) JWKS(c *gin.Context, _ *token.Claims) {
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, token.JWKS(h.keyring))
}

// SignInRequest is the body of POST /signin.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is returned on a successful sign-in.
type SignInResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Token    string   `json:"token"`
}

// BadCredentialsResponse is the only body a rejected sign-in gets.
type BadCredentialsResponse struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

// SignIn exchanges credentials for a token. Every rejection answers 404
// with the same body.
func (h *Handler) SignIn(c *gin.Context, _ *token.Claims) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("request body must be a JSON object with username and password"))
		return
	}

	res, err := h.signin.SignIn(c.Request.Context(), signin.Credential{Username: req.Username, Password: req.Password})
	if errors.Is(err, signin.ErrBadCredentials) {
		bad := apperrors.BadCredentials()
		c.JSON(bad.HTTPStatus, BadCredentialsResponse{Message: bad.Message, Status: false})
		return
	}
	if err != nil {
		server.RespondWithError(c, apperrors.Wrap(err))
		return
	}

	roles := res.Roles
	if roles == nil {
		roles = []string{}
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, SignInResponse{Username: res.Username, Roles: roles, Token: res.Token})
}

// SignOut revokes the presented token.
func (h *Handler) SignOut(c *gin.Context, claims *token.Claims) {
	if err := h.signin.SignOut(c.Request.Context(), claims); err != nil {
		if errors.Is(err, signin.ErrNoClaims) {
			server.RespondWithError(c, apperrors.Unauthorized(""))
			return
		}
		server.RespondWithError(c, apperrors.ServiceUnavailable("revocation store").WithCause(err))
		return
	}
	server.RespondNoContent(c)
}
