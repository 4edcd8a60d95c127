package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/testhelpers"
)

// setupTestAPI builds a fully routed engine over an in-memory database.
// Redis and S3 are absent, so revocation and rate limiting are inert.
func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	cfg := &config.Config{
		JWTSecret:    "test-secret",
		MediaDir:     t.TempDir(),
		MediaBaseURL: "/media",
	}

	router := gin.New()
	SetupAPI(router, db, nil, nil, cfg)
	return router, db
}

// performRequest runs a JSON request through the router. body may be nil;
// token is attached as a Bearer header when non-empty.
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// loginAs exchanges a fixture user's credentials for an access token.
func loginAs(t *testing.T, router *gin.Engine, user *models.User) string {
	t.Helper()

	w := performRequest(t, router, http.MethodPost, "/api/auth/token/login", gin.H{
		"email":    user.Email,
		"password": testhelpers.TestPassword,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login for %q failed with status %d: %s", user.Username, w.Code, w.Body.String())
	}

	var pair struct {
		AuthToken string `json:"auth_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return pair.AuthToken
}

// decodeBody unmarshals a response body, failing the test on bad JSON.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}
