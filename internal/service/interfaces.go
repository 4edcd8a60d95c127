package service

import (
	"context"

	"github.com/forkful/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	BlacklistToken(ctx context.Context, claims *types.TokenClaims) error
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IImageService defines the interface for image storage operations
type IImageService interface {
	StoreBase64(ctx context.Context, dataURI, prefix string) (string, error)
}
