package api

import (
	"coldreach/config"
	"coldreach/models"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// DraftHandler serves draft display and autosave.
type DraftHandler struct {
	store  *session.Store
	config *config.Config
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(store *session.Store, cfg *config.Config) *DraftHandler {
	return &DraftHandler{
		store:  store,
		config: cfg,
	}
}

// SaveDraftRequest carries the composer's current editor contents.
type SaveDraftRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// HandleGetDraft returns the draft displayed for a prospect: the saved edit
// when one exists, otherwise the draft derived from the template.
func (h *DraftHandler) HandleGetDraft(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid prospect id", err)
	}

	draft, ok := qs.Store.GetDisplayed(id)
	if !ok {
		return utils.NotFoundError("Unknown prospect", nil)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"draft":      draft,
		"customized": qs.Store.IsCustomized(id),
	})
}

// HandleSaveDraft stores the composer's edits for a prospect. An edit that
// matches the derived default is not kept; the prospect reverts to following
// the template. Saves against prospects no longer in the queue are dropped
// silently, which makes stale autosaves after a send harmless.
func (h *DraftHandler) HandleSaveDraft(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid prospect id", err)
	}

	var req SaveDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	qs.Store.Save(id, models.Draft{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
	})

	return c.JSON(fiber.Map{
		"success":    true,
		"customized": qs.Store.IsCustomized(id),
	})
}
