// handlers/web/composer.go
package web

import (
	"coldreach/config"
	"coldreach/handlers/api"
	"coldreach/storage"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// ComposerHandler renders the outreach composer page.
type ComposerHandler struct {
	store    *session.Store
	config   *config.Config
	registry *storage.Registry
}

// NewComposerHandler creates a new composer handler
func NewComposerHandler(store *session.Store, cfg *config.Config, registry *storage.Registry) *ComposerHandler {
	return &ComposerHandler{
		store:    store,
		config:   cfg,
		registry: registry,
	}
}

// HandleComposer renders the main composer view with the current prospect,
// its displayed draft and the session progress counters.
func (h *ComposerHandler) HandleComposer(c *fiber.Ctx) error {
	qs, err := api.SessionFromCtx(c)
	if err != nil {
		return err
	}

	localizer, _ := c.Locals("localizer").(*i18n.Localizer)

	data := fiber.Map{
		"Email":     qs.Email,
		"SentCount": qs.Store.SentCount(),
		"Exhausted": qs.Store.Exhausted(),
	}
	if localizer != nil {
		data["SentLabel"] = utils.TPlural(localizer, "emails_sent", qs.Store.SentCount())
	}

	id, ok := qs.Nav.Current()
	if ok {
		prospect, _ := qs.Store.Prospect(id)
		draft, _ := qs.Store.GetDisplayed(id)
		pos, total := qs.Nav.Progress()

		data["Prospect"] = prospect
		data["Draft"] = draft
		data["Customized"] = qs.Store.IsCustomized(id)
		data["Position"] = pos
		data["Total"] = total
	}

	missing := qs.Store.MissingEmailCompanies()
	if len(missing) > 0 {
		data["MissingEmails"] = missing
	}

	return c.Render("composer", data)
}
