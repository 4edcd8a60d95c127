package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/testhelpers"
)

func TestListTagsEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	testhelpers.CreateTag(t, db, "breakfast")
	testhelpers.CreateTag(t, db, "dinner")

	w := performRequest(t, router, http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var tags []models.Tag
	decodeBody(t, w, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Name)
}

func TestCreateTagRequiresAdmin(t *testing.T) {
	router, db := setupTestAPI(t)
	user := testhelpers.CreateUser(t, db, "plain")
	admin := testhelpers.CreateAdmin(t, db, "boss")

	body := gin.H{"name": "dinner", "slug": "dinner", "color": "#49B64E"}

	w := performRequest(t, router, http.MethodPost, "/api/tags", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(t, router, http.MethodPost, "/api/tags", body, loginAs(t, router, user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(t, router, http.MethodPost, "/api/tags", body, loginAs(t, router, admin))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreateTagDuplicate(t *testing.T) {
	router, db := setupTestAPI(t)
	admin := testhelpers.CreateAdmin(t, db, "boss")
	testhelpers.CreateTag(t, db, "dinner")
	token := loginAs(t, router, admin)

	w := performRequest(t, router, http.MethodPost, "/api/tags",
		gin.H{"name": "dinner", "slug": "dinner"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTagRequiresAdmin(t *testing.T) {
	router, db := setupTestAPI(t)
	user := testhelpers.CreateUser(t, db, "plain")
	admin := testhelpers.CreateAdmin(t, db, "boss")
	tag := testhelpers.CreateTag(t, db, "dinner")

	w := performRequest(t, router, http.MethodDelete, "/api/tags/"+tag.ID.String(), nil, loginAs(t, router, user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(t, router, http.MethodDelete, "/api/tags/"+tag.ID.String(), nil, loginAs(t, router, admin))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(t, router, http.MethodDelete, "/api/tags/"+tag.ID.String(), nil, loginAs(t, router, admin))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListIngredientsSearch(t *testing.T) {
	router, db := setupTestAPI(t)
	testhelpers.CreateIngredient(t, db, "flour", "g")
	testhelpers.CreateIngredient(t, db, "flaxseed", "g")
	testhelpers.CreateIngredient(t, db, "sunflower oil", "ml")

	w := performRequest(t, router, http.MethodGet, "/api/ingredients?search=fl", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var ingredients []models.Ingredient
	decodeBody(t, w, &ingredients)
	// Prefix match only: "sunflower oil" contains but does not start
	// with "fl".
	require.Len(t, ingredients, 2)
	assert.Equal(t, "flaxseed", ingredients[0].Name)
	assert.Equal(t, "flour", ingredients[1].Name)
}

func TestCreateIngredientRequiresAdmin(t *testing.T) {
	router, db := setupTestAPI(t)
	user := testhelpers.CreateUser(t, db, "plain")
	admin := testhelpers.CreateAdmin(t, db, "boss")

	body := gin.H{"name": "flour", "measurement_unit": "g"}

	w := performRequest(t, router, http.MethodPost, "/api/ingredients", body, loginAs(t, router, user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(t, router, http.MethodPost, "/api/ingredients", body, loginAs(t, router, admin))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The (name, unit) pair is unique.
	w = performRequest(t, router, http.MethodPost, "/api/ingredients", body, loginAs(t, router, admin))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The same name under a different unit is a distinct row.
	w = performRequest(t, router, http.MethodPost, "/api/ingredients",
		gin.H{"name": "flour", "measurement_unit": "kg"}, loginAs(t, router, admin))
	assert.Equal(t, http.StatusCreated, w.Code)
}
