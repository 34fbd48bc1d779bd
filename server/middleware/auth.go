package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/tokengate/auth"
	"github.com/kbukum/tokengate/auth/authctx"
	"github.com/kbukum/tokengate/auth/revocation"
	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/authz"
	apperrors "github.com/kbukum/tokengate/errors"
	"github.com/kbukum/tokengate/logger"
	"github.com/kbukum/tokengate/observability"
)

// ClaimsHandler serves a request that passed the guard.
type ClaimsHandler func(c *gin.Context, claims *token.Claims)

// Rejection reasons recorded on spans and logs.
const (
	reasonMissingHeader = "missing_header"
	reasonBadScheme     = "bad_scheme"
	reasonRevoked       = "revoked"
	reasonStoreError    = "revocation_store_error"
)

const bearerScheme = "Bearer"

// Authenticator guards routes with bearer tokens and role rules.
type Authenticator struct {
	validator   auth.TokenValidator
	revocations revocation.Store
	metrics     *observability.AuthMetrics
	log         *logger.Logger
}

// NewAuthenticator creates an Authenticator. A nil revocation store means
// tokens are never revoked; nil metrics use the global meter.
func NewAuthenticator(v auth.TokenValidator, revocations revocation.Store, m *observability.AuthMetrics, log *logger.Logger) *Authenticator {
	if revocations == nil {
		revocations = revocation.Nop{}
	}
	if m == nil {
		m = observability.NewNopAuthMetrics()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Authenticator{
		validator:   v,
		revocations: revocations,
		metrics:     m,
		log:         log.WithComponent("authenticator"),
	}
}

// Protect returns a handler that admits a request only when it carries a
// valid, unrevoked bearer token whose roles satisfy rule. A public rule
// skips the check and h receives nil claims.
//
// A missing or bad token answers 401 with WWW-Authenticate: Bearer; a valid
// token lacking the required role answers 403. The response body never says
// which check failed.
func (a *Authenticator) Protect(rule authz.Rule, h ClaimsHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rule.Public {
			h(c, nil)
			return
		}
		claims, ok := a.authenticate(c)
		if !ok {
			return
		}

		decision := authz.Authorize(claims, rule.Roles)
		a.metrics.RecordDecision(c.Request.Context(), decision.Reason.String())
		if !decision.Allowed {
			a.log.WithContext(c.Request.Context()).Info("Access denied", map[string]interface{}{
				logger.FieldUsername: claims.Subject,
				logger.FieldReason:   decision.Reason.String(),
				"path":               c.Request.URL.Path,
			})
			abortWithError(c, apperrors.Forbidden(""))
			return
		}

		c.Request = c.Request.WithContext(authctx.WithClaims(c.Request.Context(), claims))
		h(c, claims)
	}
}

// Require is Protect for handlers that read claims from the request context.
func (a *Authenticator) Require(roles ...string) gin.HandlerFunc {
	return a.Protect(authz.Rule{Roles: roles}, func(c *gin.Context, _ *token.Claims) {
		c.Next()
	})
}

// authenticate resolves the claims of the request or aborts it.
func (a *Authenticator) authenticate(c *gin.Context) (*token.Claims, bool) {
	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanAuthenticate)
	defer span.End()
	log := a.log.WithContext(ctx)

	raw, reason := bearerToken(c.GetHeader("Authorization"))
	if reason != "" {
		span.SetAttributes(attribute.String(observability.AttrReason, reason))
		a.metrics.RecordValidation(ctx, reason)
		challenge(c)
		return nil, false
	}

	claims, err := a.validator.Validate(raw)
	if err != nil {
		kind := validationKind(err)
		span.SetAttributes(attribute.String(observability.AttrReason, kind))
		a.metrics.RecordValidation(ctx, kind)
		log.Debug("Token rejected", map[string]interface{}{
			logger.FieldReason: kind,
			logger.FieldError:  err.Error(),
		})
		challenge(c)
		return nil, false
	}
	span.SetAttributes(attribute.String(observability.AttrUsername, claims.Subject))

	revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		observability.SetSpanError(ctx, err)
		a.metrics.RecordValidation(ctx, reasonStoreError)
		log.Error("Revocation check failed", map[string]interface{}{
			logger.FieldTokenID: claims.ID,
			logger.FieldError:   err.Error(),
		})
		abortWithError(c, apperrors.ServiceUnavailable("revocation store").WithCause(err))
		return nil, false
	}
	if revoked {
		span.SetAttributes(attribute.String(observability.AttrReason, reasonRevoked))
		a.metrics.RecordValidation(ctx, reasonRevoked)
		log.Info("Revoked token presented", map[string]interface{}{
			logger.FieldUsername: claims.Subject,
			logger.FieldTokenID:  claims.ID,
		})
		challenge(c)
		return nil, false
	}

	a.metrics.RecordValidation(ctx, "valid")
	return claims, true
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", reasonMissingHeader
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", reasonBadScheme
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", reasonBadScheme
	}
	return raw, ""
}

func validationKind(err error) string {
	var tokErr *token.Error
	if errors.As(err, &tokErr) {
		return tokErr.Kind.String()
	}
	return "invalid"
}

func challenge(c *gin.Context) {
	c.Header("WWW-Authenticate", bearerScheme)
	abortWithError(c, apperrors.Unauthorized(""))
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	status := err.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, err.ToResponse())
}
