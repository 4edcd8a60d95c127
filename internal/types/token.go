package types

import (
	"time"

	"github.com/google/uuid"
)

// TokenClaims is the validated identity extracted from a bearer token.
type TokenClaims struct {
	UserID    uuid.UUID
	Role      string
	TokenID   string
	ExpiresAt time.Time
}
