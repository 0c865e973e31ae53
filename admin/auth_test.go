package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurely/models"
)

func TestLoginReturnsTokenWithoutPassword(t *testing.T) {
	env := setupEnv(t)

	w := login(env.router, testEmail, testPassword)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), testPassword)
	assert.NotContains(t, w.Body.String(), env.admin.PasswordHash)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	require.NotNil(t, resp.Admin)
	assert.Equal(t, testEmail, resp.Admin.Email)
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	env := setupEnv(t)

	unknown := login(env.router, "nobody@example.com", testPassword)
	wrong := login(env.router, testEmail, "wrong-password")

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.JSONEq(t, `{"error":"invalid credentials"}`, wrong.Body.String())
}

func TestLoginRequiresFields(t *testing.T) {
	env := setupEnv(t)

	w := login(env.router, "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireAuth_Unauthorized(t *testing.T) {
	env := setupEnv(t)

	for name, header := range map[string]string{
		"missing":  "",
		"garbage":  "Bearer not-a-token",
		"tampered": "Bearer " + env.token + "x",
		"scheme":   "Basic " + env.token,
	} {
		t.Run(name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/api/admin/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
		})
	}
}

func TestRequireAuth_BearerToken(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/api/admin/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.AdminUser](t, w)
	assert.Equal(t, env.admin.ID, me.ID)
}

func TestRequireAuth_SessionCookie(t *testing.T) {
	env := setupEnv(t)
	cookies := login(env.router, testEmail, testPassword).Result().Cookies()
	require.NotEmpty(t, cookies)

	req, _ := http.NewRequest(http.MethodGet, "/api/admin/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	env := setupEnv(t)
	env.module.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	w := env.do(http.MethodGet, "/api/admin/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_DeletedAdmin(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, env.stores.Admins.Delete(context.Background(), env.admin.ID))

	w := env.do(http.MethodGet, "/api/admin/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsSessionCookie(t *testing.T) {
	env := setupEnv(t)
	cookies := login(env.router, testEmail, testPassword).Result().Cookies()

	req, _ := http.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
