package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrSelfFollow         = errors.New("users cannot follow themselves")
	ErrOwnRecipe          = errors.New("users cannot favorite their own recipe")
	ErrReservedUsername   = errors.New("username 'me' is reserved")
	ErrWeakPassword       = errors.New("password must not contain the username")
)

// IsUniqueViolation reports whether err came from a storage uniqueness
// constraint. GORM surfaces ErrDuplicatedKey for the postgres driver; the
// sqlite driver used in tests only returns the raw constraint message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
