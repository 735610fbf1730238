package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLogin(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username":    "alice",
		"email":       "Alice@Example.com",
		"password":    "correct-horse",
		"preferences": []string{"vegan"},
	})
	requireStatus(t, w, http.StatusCreated)
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "alice@example.com",
		"password":   "correct-horse",
	})
	requireStatus(t, w, http.StatusOK)
	token := decode(t, w)["token"].(string)

	w = a.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "alice", decode(t, w)["user"].(map[string]any)["username"])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	a := setupAPI(t)
	a.user(t, "alice")

	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidatesInput(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "not-an-email",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	a := setupAPI(t)
	a.user(t, "alice")

	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "alice",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "nobody",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/recipes", "", map[string]string{"title": "Soup"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/profile/feed", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
