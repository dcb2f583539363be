package identity

import "time"

// TokenTypeBearer is the only token type issued
const TokenTypeBearer = "Bearer"

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // client IP, logged only
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string
	TokenType string
	Username  string
	ExpiresIn int64 // seconds
	ExpiresAt time.Time
}

// Rejection names why a bearer token was not accepted
type Rejection string

const (
	RejectMalformed             Rejection = "malformed"
	RejectUnknownUser           Rejection = "unknown_user"
	RejectAccountDisabled       Rejection = "account_disabled"
	RejectExpired               Rejection = "expired"
	RejectSignatureMismatch     Rejection = "signature_mismatch"
	RejectSubjectMismatch       Rejection = "subject_mismatch"
	RejectRevoked               Rejection = "revoked"
	RejectRevocationUnavailable Rejection = "revocation_unavailable"
)
