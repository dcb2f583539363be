package dto

import (
	"net/http"
	"time"
)

// ErrorResponse is the body of every non-2xx response.
// Status is the numeric code and Error its reason phrase.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   []string  `json:"details"`
}

// NewErrorResponse creates an error body stamped with the current time
func NewErrorResponse(status int, message string, details ...string) ErrorResponse {
	if details == nil {
		details = []string{}
	}
	return ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Details:   details,
	}
}

// HealthResponse reports process and database health
type HealthResponse struct {
	Status   string     `json:"status"`
	Database string     `json:"database"`
	Pool     *PoolStats `json:"pool,omitempty"`
	Time     time.Time  `json:"time"`
}

// PoolStats is a snapshot of the database connection pool
type PoolStats struct {
	MaxOpen        int   `json:"maxOpen"`
	Open           int   `json:"open"`
	InUse          int   `json:"inUse"`
	Idle           int   `json:"idle"`
	WaitCount      int64 `json:"waitCount"`
	WaitDurationMs int64 `json:"waitDurationMs"`
}
