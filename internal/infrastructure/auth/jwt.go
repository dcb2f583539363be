package auth

import (
	"errors"
	"time"

	"github.com/customeridentity/backend/internal/domain/identity"
	"github.com/customeridentity/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMalformedToken is returned when a token cannot be decoded at all
var ErrMalformedToken = errors.New("malformed token")

// Claims represents the JWT claims issued by this service.
// The username travels in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Outcome classifies the result of validating a token
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeExpired
	OutcomeMalformed
	OutcomeSignatureMismatch
	OutcomeSubjectMismatch
)

// String returns the outcome name used in logs and metrics
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeExpired:
		return "expired"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeSignatureMismatch:
		return "signature_mismatch"
	case OutcomeSubjectMismatch:
		return "subject_mismatch"
	default:
		return "unknown"
	}
}

// Validation is the tagged result of Validate. Principal is set only when
// Outcome is OutcomeValid.
type Validation struct {
	Outcome   Outcome
	Principal identity.Principal
}

// Valid reports whether the token was accepted
func (v Validation) Valid() bool {
	return v.Outcome == OutcomeValid
}

// IssuedToken is a signed token with its expiry
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// JWTService issues and validates HS256 tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// Expiration returns the default token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// IssueToken signs a token for username that expires after ttl.
// A zero ttl falls back to the configured expiration.
func (s *JWTService) IssueToken(username string, roles []string, ttl time.Duration) (*IssuedToken, error) {
	if ttl == 0 {
		ttl = s.expiration
	}
	now := s.now()
	expiresAt := now.Add(ttl)
	jti := uuid.NewString()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Roles: roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &IssuedToken{
		Token:     signed,
		ID:        jti,
		ExpiresAt: expiresAt,
	}, nil
}

// ExtractUsername reads the subject without verifying the signature.
// The result must not be trusted until Validate accepts the token.
func (s *JWTService) ExtractUsername(tokenString string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", ErrMalformedToken
	}
	if claims.Subject == "" {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}

// Validate checks signature, expiry, issuer and that the subject equals expectedUsername
func (s *JWTService) Validate(tokenString, expectedUsername string) Validation {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Validation{Outcome: classifyParseError(err)}
	}

	if claims.Subject != expectedUsername {
		return Validation{Outcome: OutcomeSubjectMismatch}
	}

	return Validation{
		Outcome: OutcomeValid,
		Principal: identity.Principal{
			Username:  claims.Subject,
			Roles:     claims.Roles,
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	}
}

// classifyParseError maps jwt parse failures onto outcomes.
// The signature is checked before the time claims, so a forged expired
// token reports a signature mismatch.
func classifyParseError(err error) Outcome {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return OutcomeSignatureMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return OutcomeExpired
	default:
		return OutcomeMalformed
	}
}
