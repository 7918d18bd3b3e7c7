// handlers/web/auth.go
package web

import (
	"strings"
	"time"

	"coldreach/config"
	"coldreach/handlers/api"
	"coldreach/models"
	"coldreach/storage"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler runs the login flow: allow-list check, optional mailbox
// verification, credential encryption and queue session setup.
type AuthHandler struct {
	store    *session.Store
	config   *config.Config
	registry *storage.Registry
	allowed  map[string]struct{}
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(store *session.Store, cfg *config.Config, registry *storage.Registry) *AuthHandler {
	allowed, err := utils.LoadAllowedEmails(cfg.Auth.AllowedEmailsFile)
	if err != nil {
		utils.Log.Error("Failed to load allow list: %v", err)
		allowed = map[string]struct{}{}
	}
	if len(allowed) == 0 {
		utils.Log.Warn("Allow list is empty; nobody can log in")
	}

	return &AuthHandler{
		store:    store,
		config:   cfg,
		registry: registry,
		allowed:  allowed,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		authenticated := sess.Get("authenticated")
		if authenticated == true {
			return c.Redirect("/composer")
		}
	}
	return c.Render("login", fiber.Map{})
}

func (h *AuthHandler) loginError(c *fiber.Ctx, status int, email, message string) error {
	return c.Status(status).Render("login", fiber.Map{
		"Error": message,
		"Email": email,
	})
}

// HandleLogin processes the login form
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Status(500).SendString("Session error")
	}

	email := strings.TrimSpace(c.FormValue("email"))
	password := strings.TrimSpace(c.FormValue("password"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	senderName := strings.TrimSpace(c.FormValue("name"))

	if email == "" || password == "" {
		return h.loginError(c, 400, email, "Email and password are required")
	}

	if !utils.EmailAllowed(h.allowed, email) {
		utils.Log.Warn("Login rejected for %s: not on allow list", email)
		return h.loginError(c, 403, email, "This address is not authorized")
	}

	if len(password) < h.config.Auth.MinPasswordLen {
		return h.loginError(c, 400, email, "Use an app password, not your account password")
	}

	if h.config.IMAP.VerifyLogin {
		client, err := api.NewClient(
			h.config.IMAP.Server,
			h.config.IMAP.Port,
			email,
			password,
		)
		if err != nil {
			return h.loginError(c, 401, email, "Invalid credentials or server error")
		}
		client.Close()
	}

	token, err := api.GenerateToken(email, h.config.Auth.JWTSecret)
	if err != nil {
		return h.loginError(c, 500, email, "Failed to create authentication token")
	}

	encryptedCreds, err := api.EncryptCredentials(email, password, h.config.Auth.EncryptionKey)
	if err != nil {
		return h.loginError(c, 500, email, "Failed to secure credentials")
	}

	prospects, err := storage.LoadSeedFile(h.config.Prospects.SeedFile)
	if err != nil {
		utils.Log.Error("Failed to load prospect seed file: %v", err)
		prospects = nil
	}

	if senderName == "" {
		senderName = email[:strings.Index(email+"@", "@")]
	}
	sender := models.SenderInfo{
		Name:    senderName,
		Company: h.config.Sender.Company,
		Phone:   phone,
		Email:   email,
	}
	if sender.Phone == "" {
		sender.Phone = h.config.Sender.Phone
	}

	queueSession := storage.NewSession(email, prospects, sender, h.config.Mail.DefaultSubject)
	h.registry.Put(token, queueSession)

	sess.Set("authenticated", true)
	sess.Set("email", email)
	sess.Set("token", token)
	sess.Set("credentials", encryptedCreds)
	sess.SetExpiry(24 * time.Hour)

	if err := sess.Save(); err != nil {
		h.registry.Delete(token)
		return h.loginError(c, 500, email, "Failed to create session")
	}

	utils.Log.Info("Login: %s (%d seed prospects)", email, len(prospects))

	return c.Redirect("/composer")
}

// HandleLogout processes user logout
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}

	if token, ok := sess.Get("token").(string); ok {
		h.registry.Delete(token)
	}

	if err := sess.Destroy(); err != nil {
		return c.Status(500).SendString("Error during logout")
	}

	return c.Redirect("/login")
}
