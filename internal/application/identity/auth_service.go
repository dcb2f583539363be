package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/customeridentity/backend/internal/domain/identity"
	"github.com/customeridentity/backend/internal/domain/shared"
	"github.com/customeridentity/backend/internal/infrastructure/auth"
	"github.com/customeridentity/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AuthenticationError is returned by Authenticate. It matches shared.ErrUnauthorized.
type AuthenticationError struct {
	Reason Rejection
}

func (e *AuthenticationError) Error() string {
	return "token rejected: " + string(e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return shared.ErrUnauthorized
}

// RejectionOf returns the rejection reason carried by err, or "" if none
func RejectionOf(err error) Rejection {
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}

// AuthService handles login, bearer token authentication and logout.
// It keeps no per-session state besides the revocation list.
type AuthService struct {
	directory  identity.Directory
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	metrics    *telemetry.ServiceMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	directory identity.Directory,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	metrics *telemetry.ServiceMetrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		directory:  directory,
		hasher:     hasher,
		jwtService: jwtService,
		blacklist:  blacklist,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Login checks the credentials and issues a token.
// Every failure returns the same INVALID_CREDENTIALS error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()

	log := s.logger.With(zap.String("username", input.Username), zap.String("client_ip", input.IP))
	log.Debug("Login attempt")

	cred, err := s.directory.FindByUsername(input.Username)
	if err != nil {
		if !errors.Is(err, identity.ErrUserNotFound) {
			log.Error("Directory lookup failed", zap.Error(err))
		}
		return nil, s.rejectLogin(ctx, log, "unknown_user")
	}
	if !cred.CanAuthenticate() {
		return nil, s.rejectLogin(ctx, log, "account_disabled")
	}
	if !s.hasher.Verify(input.Password, cred.PasswordHash) {
		return nil, s.rejectLogin(ctx, log, "bad_credentials")
	}

	issued, err := s.jwtService.IssueToken(cred.Username, cred.Roles, s.jwtService.Expiration())
	if err != nil {
		log.Error("Failed to sign token", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLogin(ctx, "success")
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, "success")
	log.Info("User logged in")

	return &LoginResult{
		Token:     issued.Token,
		TokenType: TokenTypeBearer,
		Username:  cred.Username,
		ExpiresIn: int64(s.jwtService.Expiration() / time.Second),
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

func (s *AuthService) rejectLogin(ctx context.Context, log *zap.Logger, outcome string) error {
	s.metrics.RecordLogin(ctx, outcome)
	log.Warn("Login rejected", zap.String("outcome", outcome))
	return shared.ErrInvalidCredentials
}

// Authenticate resolves a bearer token to a principal.
// The subject is read unverified only to find the account; the token is
// then fully validated against it and checked for revocation.
func (s *AuthService) Authenticate(ctx context.Context, token string) (identity.Principal, error) {
	username, err := s.jwtService.ExtractUsername(token)
	if err != nil {
		return s.rejectToken(ctx, RejectMalformed)
	}

	cred, err := s.directory.FindByUsername(username)
	if err != nil {
		return s.rejectToken(ctx, RejectUnknownUser)
	}
	if !cred.CanAuthenticate() {
		return s.rejectToken(ctx, RejectAccountDisabled)
	}

	v := s.jwtService.Validate(token, cred.Username)
	if !v.Valid() {
		return s.rejectToken(ctx, rejectionFor(v.Outcome))
	}

	if v.Principal.TokenID != "" && s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, v.Principal.TokenID)
		if err != nil {
			s.logger.Error("Revocation check failed", zap.Error(err))
			return s.rejectToken(ctx, RejectRevocationUnavailable)
		}
		if revoked {
			return s.rejectToken(ctx, RejectRevoked)
		}
	}

	s.metrics.RecordTokenValidation(ctx, "valid")
	return v.Principal, nil
}

func (s *AuthService) rejectToken(ctx context.Context, reason Rejection) (identity.Principal, error) {
	s.metrics.RecordTokenValidation(ctx, string(reason))
	return identity.Principal{}, &AuthenticationError{Reason: reason}
}

func rejectionFor(o auth.Outcome) Rejection {
	switch o {
	case auth.OutcomeExpired:
		return RejectExpired
	case auth.OutcomeSignatureMismatch:
		return RejectSignatureMismatch
	case auth.OutcomeSubjectMismatch:
		return RejectSubjectMismatch
	default:
		return RejectMalformed
	}
}

// Logout revokes the principal's token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, principal identity.Principal) error {
	if principal.TokenID == "" || s.blacklist == nil {
		return nil
	}

	ttl := principal.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, principal.TokenID, ttl); err != nil {
		s.logger.Error("Failed to revoke token",
			zap.String("username", principal.Username),
			zap.Error(err))
		return err
	}

	s.logger.Info("User logged out", zap.String("username", principal.Username))
	return nil
}
