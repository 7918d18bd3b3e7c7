package main

import (
	"fmt"
	"time"

	"coldreach/config"
	"coldreach/handlers/api"
	"coldreach/handlers/web"
	"coldreach/middleware"
	"coldreach/storage"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

var store *session.Store

func init() {
	utils.Log.Info("Initializing ColdReach...")

	store = session.New(session.Config{
		Expiration:     24 * time.Hour,
		CookieSecure:   false, // Set to true in production with HTTPS
		CookieHTTPOnly: true,
	})
}

// Helper function to determine if request is an API request
func isAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}

	// Check for HTMX request first
	if c.Get("HX-Request") != "" {
		return true
	}

	// Safely check if path starts with /api
	path := c.Path()
	return len(path) >= 4 && path[:4] == "/api"
}

func main() {
	// Load .env for the fallback relay account before reading config
	if err := godotenv.Load(); err != nil {
		utils.Log.Debug("No .env file loaded: %v", err)
	}

	// Load configuration
	config, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
	}

	// Initialize i18n system
	if err := utils.InitI18n(); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	// Initialize template engine with custom functions
	engine := html.New("./templates", ".html")

	// i18n template functions
	engine.AddFunc("t", func(messageID string) string {
		// This will be overridden per-request with the correct localizer
		return utils.T(utils.Localizer, messageID)
	})

	engine.AddFunc("tWithData", func(messageID string, data map[string]interface{}) string {
		return utils.TWithData(utils.Localizer, messageID, data)
	})

	engine.AddFunc("tPlural", func(messageID string, count int) string {
		return utils.TPlural(utils.Localizer, messageID, count)
	})

	// File size formatting function
	engine.AddFunc("formatSize", func(size int64) string {
		const unit = 1024
		if size < unit {
			return fmt.Sprintf("%d B", size)
		}
		div, exp := int64(unit), 0
		for n := size / unit; n >= unit; n /= unit {
			div *= unit
			exp++
		}
		return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
	})

	engine.Reload(true)

	// Initialize Fiber with template engine
	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main", // Default layout
		BodyLimit:   25 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			// Check for AppError
			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
				utils.Log.Error("Application error: %v", appErr)
			} else if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			// Handle API requests differently
			if isAPIRequest(c) {
				return c.Status(code).JSON(fiber.Map{
					"success": false,
					"error":   err.Error(),
					"kind":    string(utils.KindOf(err)),
				})
			}

			// Render error page for regular requests
			return c.Status(code).Render("error", fiber.Map{
				"Error": err.Error(),
				"Code":  code,
			})
		},
	})

	// Add global middleware
	app.Use(recover.New())  // Recover from panics
	app.Use(logger.New())   // Request logging
	app.Use(compress.New()) // Response compression
	app.Use(helmet.New(helmet.Config{ // Security headers
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;",
	}))

	// Add locale middleware
	app.Use(middleware.LocaleMiddleware())

	// Add rate limiting (100 requests per minute per IP)
	app.Use(middleware.RateLimiter(100, time.Minute))

	// Serve static files
	app.Static("/assets", "./assets", fiber.Static{
		Compress:      true,
		CacheDuration: 24 * time.Hour,
	})

	// Per-login queue state, evicted after a day idle
	registry := storage.NewRegistry(24 * time.Hour)

	// Initialize web handlers
	webAuthHandler := web.NewAuthHandler(store, config, registry)
	composerHandler := web.NewComposerHandler(store, config, registry)

	// Initialize API handlers
	notificationHandler := api.NewNotificationHandler(store)
	prospectsHandler := api.NewProspectsHandler(store, config)
	draftHandler := api.NewDraftHandler(store, config)
	templateHandler := api.NewTemplateHandler(store, config)
	sendHandler := api.NewSendHandler(store, config, notificationHandler)

	// Public routes
	app.Get("/login", webAuthHandler.ShowLogin)
	app.Post("/login", webAuthHandler.HandleLogin)
	app.Get("/logout", webAuthHandler.HandleLogout)

	// Protected routes group
	protected := app.Group("", api.AuthMiddleware(store, registry, config.Auth.JWTSecret))

	// Main web routes
	protected.Get("/", composerHandler.HandleComposer)
	protected.Get("/composer", composerHandler.HandleComposer)

	// API routes
	apiRoutes := protected.Group("/api")
	{
		// Prospect queue routes
		apiRoutes.Post("/prospects/import", prospectsHandler.HandleImport)
		apiRoutes.Get("/prospects/current", prospectsHandler.HandleCurrent)
		apiRoutes.Post("/prospects/:direction<regex(next|prev)>", prospectsHandler.HandleNavigate)
		apiRoutes.Post("/prospects/jump/:id", prospectsHandler.HandleJump)
		apiRoutes.Delete("/prospects/:id", prospectsHandler.HandleDelete)
		apiRoutes.Post("/prospects/reset", prospectsHandler.HandleReset)
		apiRoutes.Get("/prospects/missing-emails", prospectsHandler.HandleMissingEmails)

		// Draft routes
		apiRoutes.Get("/draft/:id", draftHandler.HandleGetDraft)
		apiRoutes.Put("/draft/:id", draftHandler.HandleSaveDraft)

		// Template routes
		apiRoutes.Get("/template", templateHandler.HandleGetTemplate)
		apiRoutes.Put("/template", templateHandler.HandleSaveTemplate)
		apiRoutes.Delete("/template", templateHandler.HandleClearTemplate)
		apiRoutes.Put("/template/subject", templateHandler.HandleSaveSubject)
		apiRoutes.Post("/template/attachments", templateHandler.HandleUploadAttachment)
		apiRoutes.Delete("/template/attachments/:index", templateHandler.HandleRemoveAttachment)

		// Send routes
		apiRoutes.Post("/send/:id", sendHandler.HandleSend)

		// Notification routes
		apiRoutes.Get("/notifications/stream", notificationHandler.HandleSSE)
	}

	// WebSocket notifications
	protected.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	protected.Get("/ws/notifications", websocket.New(notificationHandler.HandleWebSocket))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		localizer := c.Locals("localizer").(*i18n.Localizer)

		if isAPIRequest(c) {
			return c.Status(404).JSON(fiber.Map{
				"success": false,
				"error":   utils.T(localizer, "error_404"),
			})
		}
		return c.Status(404).Render("error", fiber.Map{
			"Error": utils.T(localizer, "error_404"),
			"Code":  404,
		})
	})

	// Start server
	utils.Log.Info("Starting server on port %d...", config.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", config.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}
