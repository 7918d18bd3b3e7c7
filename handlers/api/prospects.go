package api

import (
	"io"

	"coldreach/config"
	"coldreach/queue"
	"coldreach/storage"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// ProspectsHandler serves the prospect list and queue navigation.
type ProspectsHandler struct {
	store  *session.Store
	config *config.Config
}

// NewProspectsHandler creates a new prospects handler
func NewProspectsHandler(store *session.Store, cfg *config.Config) *ProspectsHandler {
	return &ProspectsHandler{
		store:  store,
		config: cfg,
	}
}

// prospectPayload is the composer's view of the current queue position.
func prospectPayload(qs *storage.Session, id int) fiber.Map {
	prospect, _ := qs.Store.Prospect(id)
	draft, _ := qs.Store.GetDisplayed(id)
	pos, total := qs.Nav.Progress()

	return fiber.Map{
		"prospect":   prospect,
		"draft":      draft,
		"customized": qs.Store.IsCustomized(id),
		"has_email":  prospect.HasEmail(),
		"position":   pos,
		"total":      total,
		"sent_count": qs.Store.SentCount(),
	}
}

// HandleImport replaces the session's prospect list from an uploaded JSON
// file. The whole upload is parsed before anything is touched, so a bad file
// leaves the current queue intact.
func (h *ProspectsHandler) HandleImport(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequestError("No file uploaded", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.BadRequestError("Failed to open uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.BadRequestError("Failed to read uploaded file", err)
	}

	prospects, err := storage.ParseImport(data)
	if err != nil {
		return err
	}

	qs.Store.Import(prospects)

	utils.Log.Info("Imported %d prospects for %s", len(prospects), qs.Email)

	return c.JSON(fiber.Map{
		"success":       true,
		"count":         len(prospects),
		"missing_email": qs.Store.MissingEmailCompanies(),
	})
}

// HandleCurrent returns the prospect at the queue position together with its
// displayed draft and progress counters.
func (h *ProspectsHandler) HandleCurrent(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	id, ok := qs.Nav.Current()
	if !ok {
		return c.JSON(fiber.Map{
			"success":    true,
			"exhausted":  true,
			"sent_count": qs.Store.SentCount(),
		})
	}

	payload := prospectPayload(qs, id)
	payload["success"] = true
	payload["exhausted"] = false
	return c.JSON(payload)
}

// HandleNavigate moves the queue position one step forward or backward.
// Stepping past either end is a no-op, not an error.
func (h *ProspectsHandler) HandleNavigate(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	dir := queue.Forward
	if c.Params("direction") == "prev" {
		dir = queue.Backward
	}

	qs.Nav.Advance(dir)
	return h.HandleCurrent(c)
}

// HandleJump moves the queue position directly to a prospect id.
func (h *ProspectsHandler) HandleJump(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid prospect id", err)
	}

	if !qs.Nav.JumpTo(id) {
		return utils.NotFoundError("Prospect not in queue", nil)
	}
	return h.HandleCurrent(c)
}

// HandleDelete removes a prospect from the queue without sending. The next
// prospect slides into the vacated position.
func (h *ProspectsHandler) HandleDelete(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid prospect id", err)
	}

	if !qs.Store.Remove(id) {
		return utils.NotFoundError("Prospect not in queue", nil)
	}
	qs.Nav.OnRemoved(id)

	utils.Log.Info("Removed prospect %d from queue for %s", id, qs.Email)

	return h.HandleCurrent(c)
}

// HandleReset restarts the session queue: every prospect becomes available
// again and all draft edits are discarded. Template, subject and global
// attachments survive.
func (h *ProspectsHandler) HandleReset(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	qs.Store.Reset()

	utils.Log.Info("Queue reset for %s", qs.Email)

	return h.HandleCurrent(c)
}

// HandleMissingEmails reports companies that cannot be contacted because no
// address was discovered for them.
func (h *ProspectsHandler) HandleMissingEmails(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	companies := qs.Store.MissingEmailCompanies()
	return c.JSON(fiber.Map{
		"success":   true,
		"count":     len(companies),
		"companies": companies,
	})
}
