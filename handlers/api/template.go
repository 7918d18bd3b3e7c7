package api

import (
	"io"

	"coldreach/config"
	"coldreach/mail"
	"coldreach/models"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// TemplateHandler manages the session-wide template, subject line and
// attachment list that every derived draft inherits.
type TemplateHandler struct {
	store  *session.Store
	config *config.Config
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(store *session.Store, cfg *config.Config) *TemplateHandler {
	return &TemplateHandler{
		store:  store,
		config: cfg,
	}
}

// HandleGetTemplate returns the current template configuration.
func (h *TemplateHandler) HandleGetTemplate(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	attachments := qs.Store.GlobalAttachments()
	names := make([]fiber.Map, 0, len(attachments))
	for i, att := range attachments {
		names = append(names, fiber.Map{
			"index":        i,
			"filename":     att.Filename,
			"content_type": att.ContentType,
			"size":         len(att.Content),
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"template":    qs.Store.Template(),
		"subject":     qs.Store.Subject(),
		"attachments": names,
	})
}

// HandleSaveTemplate stores the global template body. Prospects with saved
// edits keep them; everyone else's derived draft follows the new template.
func (h *TemplateHandler) HandleSaveTemplate(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	var req struct {
		Template string `json:"template"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	qs.Store.SetTemplate(req.Template)

	utils.Log.Info("Template updated for %s (%d bytes)", qs.Email, len(req.Template))

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleClearTemplate reverts derived drafts to the blank starter body.
func (h *TemplateHandler) HandleClearTemplate(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	qs.Store.ClearTemplate()

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleSaveSubject updates the global subject line.
func (h *TemplateHandler) HandleSaveSubject(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	var req struct {
		Subject string `json:"subject"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	qs.Store.SetSubject(req.Subject)

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleUploadAttachment adds a file to the session-wide attachment list.
// These ride along on every send for the rest of the session.
func (h *TemplateHandler) HandleUploadAttachment(c *fiber.Ctx) error {
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

	content, err := io.ReadAll(file)
	if err != nil {
		return utils.BadRequestError("Failed to read uploaded file", err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mail.DetectContentType(fileHeader.Filename)
	}

	qs.Store.AddGlobalAttachment(models.Attachment{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Content:     content,
	})

	utils.Log.Info("Global attachment added for %s: %s (%d bytes)", qs.Email, fileHeader.Filename, len(content))

	return c.JSON(fiber.Map{
		"success":  true,
		"filename": fileHeader.Filename,
		"count":    len(qs.Store.GlobalAttachments()),
	})
}

// HandleRemoveAttachment removes a session attachment by list index.
func (h *TemplateHandler) HandleRemoveAttachment(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	index, err := c.ParamsInt("index")
	if err != nil {
		return utils.BadRequestError("Invalid attachment index", err)
	}

	if !qs.Store.RemoveGlobalAttachment(index) {
		return utils.NotFoundError("No attachment at that index", nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(qs.Store.GlobalAttachments()),
	})
}
