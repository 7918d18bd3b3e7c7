package middleware

import (
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
)

// LocaleMiddleware detects and sets the user's locale
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := ""

		// 1. Try to get language from query parameter
		lang = c.Query("lang")

		// 2. Try to get language from cookie
		if lang == "" {
			lang = c.Cookies("lang")
		}

		// Default to English; it is the only shipped locale for now
		if lang != "en" {
			lang = "en"
		}

		// Get localizer for this language
		localizer := utils.GetLocalizer(lang)

		// Store in context
		c.Locals("localizer", localizer)
		c.Locals("lang", lang)

		return c.Next()
	}
}
