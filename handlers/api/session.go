package api

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coldreach/storage"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"
)

// Credentials holds the SMTP/IMAP login pair kept encrypted in the session.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const (
	pbkdf2Iterations = 4096
	saltSize         = 16
)

// GenerateToken creates a signed session token for an authenticated user.
func GenerateToken(email, secret string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies a session token, returning the email claim.
func ValidateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("token missing email claim")
	}
	return email, nil
}

// deriveKey stretches the configured encryption key with a per-message salt.
func deriveKey(key string, salt []byte) []byte {
	return pbkdf2.Key([]byte(key), salt, pbkdf2Iterations, 32, sha256.New)
}

// EncryptCredentials seals the login pair with AES-GCM. The output encodes
// salt, nonce and ciphertext together so DecryptCredentials needs only the
// configured key.
func EncryptCredentials(email, password, key string) (string, error) {
	plaintext, err := json.Marshal(Credentials{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveKey(key, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptCredentials reverses EncryptCredentials.
func DecryptCredentials(encrypted, key string) (*Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("malformed credentials: %v", err)
	}
	if len(raw) < saltSize {
		return nil, fmt.Errorf("malformed credentials: too short")
	}

	salt, rest := raw[:saltSize], raw[saltSize:]

	block, err := aes.NewCipher(deriveKey(key, salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("malformed credentials: too short")
	}

	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %v", err)
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("malformed credentials: %v", err)
	}
	return &creds, nil
}

// GetSessionToken returns the token stored in the session, or an error when
// the visitor is not logged in.
func GetSessionToken(c *fiber.Ctx, store *session.Store) (string, error) {
	sess, err := store.Get(c)
	if err != nil {
		return "", err
	}
	token, ok := sess.Get("token").(string)
	if !ok || token == "" {
		return "", fmt.Errorf("no session token")
	}
	return token, nil
}

// GetCredentials decrypts the login pair stored in the session. A session
// without stored credentials returns (nil, nil) so the caller can fall back
// to configured credentials.
func GetCredentials(c *fiber.Ctx, store *session.Store, key string) (*Credentials, error) {
	sess, err := store.Get(c)
	if err != nil {
		return nil, err
	}
	encrypted, ok := sess.Get("credentials").(string)
	if !ok || encrypted == "" {
		return nil, nil
	}
	return DecryptCredentials(encrypted, key)
}

// authFailure picks the failure shape by caller type. Machine endpoints
// (the API and the notification sockets) need the status code; page loads
// go back to the login form instead of a bare 401.
func authFailure(c *fiber.Ctx, message string, err error) error {
	path := c.Path()
	if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/ws") || c.Get("HX-Request") != "" {
		return utils.UnauthorizedError(message, err)
	}
	return c.Redirect("/login")
}

// AuthMiddleware gates the protected routes. It validates the session token
// and attaches the caller's queue state to the request context.
func AuthMiddleware(store *session.Store, registry *storage.Registry, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := GetSessionToken(c, store)
		if err != nil {
			return authFailure(c, "Not logged in", err)
		}

		email, err := ValidateToken(token, jwtSecret)
		if err != nil {
			return authFailure(c, "Session expired", err)
		}

		queueSession, ok := registry.Get(token)
		if !ok {
			return authFailure(c, "Session expired", nil)
		}

		c.Locals("email", email)
		c.Locals("token", token)
		c.Locals("queueSession", queueSession)

		return c.Next()
	}
}

// SessionFromCtx returns the queue state attached by AuthMiddleware.
func SessionFromCtx(c *fiber.Ctx) (*storage.Session, error) {
	queueSession, ok := c.Locals("queueSession").(*storage.Session)
	if !ok || queueSession == nil {
		return nil, utils.UnauthorizedError("Not logged in", nil)
	}
	return queueSession, nil
}
