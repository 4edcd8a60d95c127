package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/types"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour

	blacklistKeyPrefix = "token_blacklist:"
)

// TokenPair is what the login endpoint hands back.
type TokenPair struct {
	AuthToken    string `json:"auth_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService issues and validates bearer tokens. Logout and password
// changes blacklist the presented token in Redis for the remainder of its
// lifetime; without Redis the blacklist degrades to a no-op.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

// Login exchanges email+password for an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.generateToken(&user, "access", accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(&user, "refresh", refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AuthToken: access, RefreshToken: refresh}, nil
}

// Logout blacklists the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	return s.BlacklistToken(ctx, claims)
}

// BlacklistToken invalidates a single token. Also used after password
// changes so the old credential stops working immediately.
func (s *AuthService) BlacklistToken(ctx context.Context, claims *types.TokenClaims) error {
	if s.redis == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, blacklistKeyPrefix+claims.TokenID, "1", ttl).Err()
}

func (s *AuthService) generateToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"typ":     tokenType,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken checks signature, expiry, token type and the blacklist.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if typ, _ := claims["typ"].(string); typ != "access" {
		return nil, errors.New("not an access token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)

	result := &types.TokenClaims{
		UserID:    userID,
		Role:      role,
		TokenID:   jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}

	if s.redis != nil && jti != "" {
		n, err := s.redis.Exists(context.Background(), blacklistKeyPrefix+jti).Result()
		if err != nil {
			return nil, fmt.Errorf("blacklist lookup failed: %w", err)
		}
		if n > 0 {
			return nil, errors.New("token has been revoked")
		}
	}

	return result, nil
}
