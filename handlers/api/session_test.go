package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"coldreach/storage"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsRoundTrip(t *testing.T) {
	encrypted, err := EncryptCredentials("sam@example.com", "app-password-1234", "server-key")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "app-password-1234")

	creds, err := DecryptCredentials(encrypted, "server-key")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", creds.Email)
	assert.Equal(t, "app-password-1234", creds.Password)
}

func TestDecryptCredentialsWrongKey(t *testing.T) {
	encrypted, err := EncryptCredentials("sam@example.com", "app-password-1234", "server-key")
	require.NoError(t, err)

	_, err = DecryptCredentials(encrypted, "other-key")
	assert.Error(t, err)
}

func TestDecryptCredentialsGarbage(t *testing.T) {
	for _, payload := range []string{"", "not-base64!!", "YWJj"} {
		_, err := DecryptCredentials(payload, "server-key")
		assert.Error(t, err, payload)
	}
}

func TestEncryptCredentialsUnique(t *testing.T) {
	a, err := EncryptCredentials("sam@example.com", "pw", "key")
	require.NoError(t, err)
	b, err := EncryptCredentials("sam@example.com", "pw", "key")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh salt and nonce every time")
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("sam@example.com", "secret")
	require.NoError(t, err)

	email, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("sam@example.com", "secret")
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestAuthMiddlewareFailureShape(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
			}
			return c.SendStatus(code)
		},
	})
	app.Use(AuthMiddleware(session.New(), storage.NewRegistry(time.Hour), "secret"))
	app.Get("/composer", func(c *fiber.Ctx) error { return c.SendString("composer") })
	app.Get("/api/prospects/current", func(c *fiber.Ctx) error { return c.SendString("current") })

	// Page loads bounce back to the login form.
	resp, err := app.Test(httptest.NewRequest("GET", "/composer", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// API callers get the status code.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/prospects/current", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// htmx requests on page routes also get the status code.
	req := httptest.NewRequest("GET", "/composer", nil)
	req.Header.Set("HX-Request", "true")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
