package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/testhelpers"
)

func TestRegisterEndpoint(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := performRequest(t, router, http.MethodPost, "/api/users", gin.H{
		"email":      "ada@example.com",
		"username":   "ada",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "longenoughpassword",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "ada", resp.Username)
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.False(t, resp.IsSubscribed)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpointReservedUsername(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := performRequest(t, router, http.MethodPost, "/api/users", gin.H{
		"email":    "me@example.com",
		"username": "me",
		"password": "longenoughpassword",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "username")
}

func TestRegisterEndpointShortPassword(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := performRequest(t, router, http.MethodPost, "/api/users", gin.H{
		"email":    "ada@example.com",
		"username": "ada",
		"password": "short",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")
}

func TestMeEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	user := testhelpers.CreateUser(t, db, "ada")
	token := loginAs(t, router, user)

	w := performRequest(t, router, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, user.ID, resp.ID)

	w = performRequest(t, router, http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateMeEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	user := testhelpers.CreateUser(t, db, "ada")
	token := loginAs(t, router, user)

	w := performRequest(t, router, http.MethodPatch, "/api/users/me", gin.H{
		"first_name": "Ada",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "Ada", resp.FirstName)
	// Unsent fields keep their previous values.
	assert.Equal(t, user.LastName, resp.LastName)
}

func TestGetUserEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	author := testhelpers.CreateUser(t, db, "author")

	w := performRequest(t, router, http.MethodGet, "/api/users/"+author.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "author", resp.Username)
	assert.False(t, resp.IsSubscribed)
}

func TestSetPasswordEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	user := testhelpers.CreateUser(t, db, "ada")
	token := loginAs(t, router, user)

	w := performRequest(t, router, http.MethodPost, "/api/users/set_password", gin.H{
		"current_password": "wrong",
		"new_password":     "replacement-secret",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(t, router, http.MethodPost, "/api/users/set_password", gin.H{
		"current_password": testhelpers.TestPassword,
		"new_password":     "replacement-secret",
	}, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// The new password is live for subsequent logins.
	w = performRequest(t, router, http.MethodPost, "/api/auth/token/login", gin.H{
		"email":    user.Email,
		"password": "replacement-secret",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscribeFlow(t *testing.T) {
	router, db := setupTestAPI(t)
	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "author")
	testhelpers.CreateRecipe(t, db, author, "cake", nil, nil)
	token := loginAs(t, router, follower)

	subscribeURL := fmt.Sprintf("/api/users/%s/subscribe", author.ID)

	w := performRequest(t, router, http.MethodPost, subscribeURL, nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SubscriptionResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "author", resp.Username)
	assert.True(t, resp.IsSubscribed)
	assert.EqualValues(t, 1, resp.RecipesCount)
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "cake", resp.Recipes[0].Name)

	// Doubles are rejected.
	w = performRequest(t, router, http.MethodPost, subscribeURL, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The author now shows up in the subscriptions listing.
	w = performRequest(t, router, http.MethodGet, "/api/users/subscriptions", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Results []SubscriptionResponse `json:"results"`
	}
	decodeBody(t, w, &listing)
	require.Len(t, listing.Results, 1)
	assert.Equal(t, "author", listing.Results[0].Username)

	w = performRequest(t, router, http.MethodDelete, subscribeURL, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Deleting an absent follow is a 404, unlike the duplicate POST.
	w = performRequest(t, router, http.MethodDelete, subscribeURL, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeSelfEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	user := testhelpers.CreateUser(t, db, "loner")
	token := loginAs(t, router, user)

	w := performRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/users/%s/subscribe", user.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionsRecipesLimit(t *testing.T) {
	router, db := setupTestAPI(t)
	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "author")
	for _, name := range []string{"first", "second", "third"} {
		testhelpers.CreateRecipe(t, db, author, name, nil, nil)
	}
	token := loginAs(t, router, follower)

	w := performRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/users/%s/subscribe", author.ID), nil, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, router, http.MethodGet, "/api/users/subscriptions?recipes_limit=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Results []SubscriptionResponse `json:"results"`
	}
	decodeBody(t, w, &listing)
	require.Len(t, listing.Results, 1)
	assert.Len(t, listing.Results[0].Recipes, 2)
	assert.EqualValues(t, 3, listing.Results[0].RecipesCount)
}
