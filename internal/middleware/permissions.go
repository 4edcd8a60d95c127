package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/forkful/backend/internal/models"
)

// Permission checks as pure functions over (identity, method, owner).
// Each variant runs twice per request: once at the collection level
// before any record is loaded, and again at the object level once the
// target's owner is known. Both must pass.

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isAdmin(role string) bool {
	return role == models.RoleAdmin
}

// PublicRead allows safe methods for anyone; mutating methods require
// authentication.
func PublicRead(method string, authenticated bool) bool {
	return isSafeMethod(method) || authenticated
}

// OwnerOrAdminWrite allows safe methods for anyone; mutating a specific
// object requires being its author or an admin.
func OwnerOrAdminWrite(method string, userID, ownerID uuid.UUID, role string) bool {
	if isSafeMethod(method) {
		return true
	}
	return userID == ownerID || isAdmin(role)
}

// AdminOnlyWrite guards catalog resources: publicly readable, writable
// only by admins.
func AdminOnlyWrite(method string, authenticated bool, role string) bool {
	if isSafeMethod(method) {
		return true
	}
	return authenticated && isAdmin(role)
}
