// Package signin exchanges a username and password for a signed token, and
// revokes tokens on sign-out.
//
// Every failure a caller could use to probe accounts (unknown user, wrong
// password, disabled user, malformed credential) collapses into
// ErrBadCredentials. Unknown users are verified against a dummy hash so the
// response time does not reveal whether the username exists. Storage and
// signing failures are not bad credentials; they surface as internal errors.
package signin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/tokengate/auth"
	"github.com/kbukum/tokengate/auth/password"
	"github.com/kbukum/tokengate/auth/revocation"
	"github.com/kbukum/tokengate/auth/token"
	"github.com/kbukum/tokengate/credential"
	"github.com/kbukum/tokengate/logger"
	"github.com/kbukum/tokengate/observability"
	"github.com/kbukum/tokengate/validation"
)

// ErrBadCredentials is the only error a caller sees for a rejected sign-in.
var ErrBadCredentials = errors.New("bad credentials")

// ErrNoClaims is returned by SignOut without claims.
var ErrNoClaims = errors.New("signin: no claims")

// Rejection reasons, logged but never returned.
const (
	reasonInvalidInput = "invalid_input"
	reasonUnknownUser  = "unknown_user"
	reasonBadPassword  = "bad_password"
	reasonDisabled     = "disabled"
)

const dummyPassword = "tokengate-dummy-password"

// Credential is a sign-in request. It is not retained after SignIn returns.
type Credential struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

// Result is a successful sign-in.
type Result struct {
	Username  string
	Roles     []string
	Token     string
	ExpiresAt time.Time
}

type rehasher interface {
	NeedsRehash(hash string) bool
}

// Service runs sign-in and sign-out.
type Service struct {
	store       credential.Store
	hasher      password.Hasher
	issuer      auth.TokenIssuer
	revocations revocation.Store
	metrics     *observability.AuthMetrics
	log         *logger.Logger
	now         func() time.Time
	dummyHash   string
}

// Option configures a Service.
type Option func(*Service)

// WithRevocation sets the store SignOut writes to (default: revocation.Nop).
func WithRevocation(s revocation.Store) Option {
	return func(svc *Service) { svc.revocations = s }
}

// WithMetrics sets the metric instruments (default: no-op).
func WithMetrics(m *observability.AuthMetrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *logger.Logger) Option {
	return func(svc *Service) { svc.log = l }
}

// WithClock sets the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService creates a Service. It hashes a dummy password once so unknown
// usernames cost the same verification as known ones.
func NewService(store credential.Store, hasher password.Hasher, issuer auth.TokenIssuer, opts ...Option) (*Service, error) {
	svc := &Service{
		store:       store,
		hasher:      hasher,
		issuer:      issuer,
		revocations: revocation.Nop{},
		metrics:     observability.NewNopAuthMetrics(),
		log:         logger.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.log = svc.log.WithComponent("signin")

	hash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("signin: dummy hash: %w", err)
	}
	svc.dummyHash = hash
	return svc, nil
}

// SignIn verifies cred and issues a token for the principal.
func (s *Service) SignIn(ctx context.Context, cred Credential) (*Result, error) {
	start := s.now()
	ctx, span := observability.StartSpan(ctx, observability.SpanSignIn,
		trace.WithAttributes(attribute.String(observability.AttrUsername, cred.Username)))
	defer span.End()

	res, reason, err := s.signIn(ctx, cred)
	elapsed := s.now().Sub(start)
	log := s.log.WithContext(ctx)

	switch {
	case err == nil:
		s.metrics.RecordSignIn(ctx, observability.OutcomeSuccess, elapsed)
		span.SetAttributes(attribute.String(observability.AttrOutcome, observability.OutcomeSuccess))
		log.Info("Sign-in succeeded", map[string]interface{}{
			logger.FieldUsername: res.Username,
			logger.FieldDuration: elapsed.String(),
		})
		return res, nil

	case errors.Is(err, ErrBadCredentials):
		s.metrics.RecordSignIn(ctx, observability.OutcomeBadCredentials, elapsed)
		span.SetAttributes(
			attribute.String(observability.AttrOutcome, observability.OutcomeBadCredentials),
			attribute.String(observability.AttrReason, reason),
		)
		log.Info("Sign-in rejected", map[string]interface{}{
			logger.FieldUsername: cred.Username,
			logger.FieldReason:   reason,
		})
		return nil, ErrBadCredentials

	default:
		s.metrics.RecordSignIn(ctx, observability.OutcomeError, elapsed)
		span.SetAttributes(attribute.String(observability.AttrOutcome, observability.OutcomeError))
		observability.SetSpanError(ctx, err)
		log.Error("Sign-in failed", map[string]interface{}{
			logger.FieldUsername: cred.Username,
			logger.FieldError:    err.Error(),
		})
		return nil, err
	}
}

func (s *Service) signIn(ctx context.Context, cred Credential) (*Result, string, error) {
	if err := validation.Validate(cred); err != nil {
		s.hasher.Verify(cred.Password, s.dummyHash)
		return nil, reasonInvalidInput, ErrBadCredentials
	}

	p, found, err := s.store.Lookup(ctx, cred.Username)
	if err != nil {
		return nil, "", fmt.Errorf("signin: lookup: %w", err)
	}
	if !found {
		s.hasher.Verify(cred.Password, s.dummyHash)
		return nil, reasonUnknownUser, ErrBadCredentials
	}

	if !s.hasher.Verify(cred.Password, p.PasswordHash) {
		return nil, reasonBadPassword, ErrBadCredentials
	}
	if !p.Enabled {
		return nil, reasonDisabled, ErrBadCredentials
	}

	if r, ok := s.hasher.(rehasher); ok && r.NeedsRehash(p.PasswordHash) {
		s.log.WithContext(ctx).Warn("Stored password hash uses outdated parameters", map[string]interface{}{
			logger.FieldUsername: p.Username,
		})
	}

	tok, err := s.issuer.Issue(p)
	if err != nil {
		return nil, "", fmt.Errorf("signin: issue: %w", err)
	}
	return &Result{
		Username:  p.Username,
		Roles:     tok.Roles(),
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt(),
	}, "", nil
}

// SignOut revokes the token described by claims until it expires.
func (s *Service) SignOut(ctx context.Context, claims *token.Claims) error {
	if claims == nil {
		return ErrNoClaims
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanSignOut,
		trace.WithAttributes(attribute.String(observability.AttrUsername, claims.Subject)))
	defer span.End()

	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		observability.SetSpanError(ctx, err)
		s.log.WithContext(ctx).Error("Sign-out failed", map[string]interface{}{
			logger.FieldUsername: claims.Subject,
			logger.FieldTokenID:  claims.ID,
			logger.FieldError:    err.Error(),
		})
		return fmt.Errorf("signin: revoke: %w", err)
	}

	s.metrics.RecordRevocation(ctx)
	s.log.WithContext(ctx).Info("Signed out", map[string]interface{}{
		logger.FieldUsername: claims.Subject,
		logger.FieldTokenID:  claims.ID,
	})
	return nil
}
