package types

import "errors"

// Shared error taxonomy. Handlers map these onto HTTP statuses; repositories
// and services wrap them with %w so errors.Is keeps working across layers.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")

	// Store auth flow.
	ErrValidation           = errors.New("malformed store id or token")
	ErrTokenMismatch        = errors.New("store token does not match expected derivation")
	ErrBackendUnavailable   = errors.New("backend temporarily unavailable")
	ErrSessionExpired       = errors.New("session expired")
	ErrProvisioningConflict = errors.New("account already provisioned")
)
