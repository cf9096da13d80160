package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clonos/dashboard-backend/model"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Post("/login", Login(zap.NewNop()))
	app.Post("/logout", Logout())
	app.Get("/me", OptionalAuth, Me())
	app.Get("/private", RequireAuth, func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginIssuesTokenAndCookie(t *testing.T) {
	app := newAuthApp()

	resp, err := app.Test(postJSON("/login", `{"email":"jane.doe@example.com","password":"x"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, cookie.Value, token)
	assert.Equal(t, map[string]interface{}{"name": "Jane Doe", "email": "jane.doe@example.com"}, body["user"])

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", claims.Subject)
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	app := newAuthApp()
	for _, body := range []string{`{"email":"","password":"x"}`, `{"email":"a@b.c","password":""}`, `{"email":"   ","password":"x"}`} {
		resp, err := app.Test(postJSON("/login", body))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, false, decode(t, resp)["success"])
	}
}

func TestMe(t *testing.T) {
	app := newAuthApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, false, decode(t, resp)["authenticated"])

	token, err := GenerateJWT(model.User{Name: "Sam", Email: "sam@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "Sam", body["user"].(map[string]interface{})["name"])
}

func TestRequireAuth(t *testing.T) {
	app := newAuthApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := GenerateJWT(model.NewDemoUser("lee@example.com"))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newAuthApp()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), CookieName+"=;")
}

func TestValidateJWTRejectsForeignTokens(t *testing.T) {
	claims := &Claims{
		Email: "x@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "x@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = ValidateJWT(forged)
	assert.Error(t, err)

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}

func TestSetJWTSecret(t *testing.T) {
	assert.Error(t, SetJWTSecret("  "))

	old := secret()
	t.Cleanup(func() { _ = SetJWTSecret(string(old)) })

	require.NoError(t, SetJWTSecret("rotated"))
	token, err := GenerateJWT(model.NewDemoUser("a@b.c"))
	require.NoError(t, err)
	_, err = ValidateJWT(token)
	assert.NoError(t, err)
}
