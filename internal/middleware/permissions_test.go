package middleware

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/forkful/backend/internal/models"
)

func TestPublicRead(t *testing.T) {
	assert.True(t, PublicRead(http.MethodGet, false))
	assert.True(t, PublicRead(http.MethodHead, false))
	assert.True(t, PublicRead(http.MethodOptions, false))
	assert.False(t, PublicRead(http.MethodPost, false))
	assert.True(t, PublicRead(http.MethodPost, true))
}

func TestOwnerOrAdminWrite(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	assert.True(t, OwnerOrAdminWrite(http.MethodGet, stranger, owner, models.RoleUser))
	assert.True(t, OwnerOrAdminWrite(http.MethodPatch, owner, owner, models.RoleUser))
	assert.False(t, OwnerOrAdminWrite(http.MethodPatch, stranger, owner, models.RoleUser))
	assert.True(t, OwnerOrAdminWrite(http.MethodDelete, stranger, owner, models.RoleAdmin))
}

func TestAdminOnlyWrite(t *testing.T) {
	assert.True(t, AdminOnlyWrite(http.MethodGet, false, ""))
	assert.False(t, AdminOnlyWrite(http.MethodPost, false, ""))
	assert.False(t, AdminOnlyWrite(http.MethodPost, true, models.RoleUser))
	assert.True(t, AdminOnlyWrite(http.MethodPost, true, models.RoleAdmin))
	assert.True(t, AdminOnlyWrite(http.MethodDelete, true, models.RoleAdmin))
}
