package shared

import (
	"errors"

	"github.com/slotwise/slotwise/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found. It aliases the transport
	// sentinel so httpx.RespondError maps it without translation.
	ErrNotFound = httpx.ErrNotFound
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when the CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
