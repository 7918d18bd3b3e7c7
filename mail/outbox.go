package mail

import (
	"errors"
	"strings"

	"coldreach/models"
	"coldreach/queue"
	"coldreach/utils"
)

// Sender delivers a fully assembled message and returns the provider's
// message identifier. Implemented by the SMTP client; tests substitute fakes.
type Sender interface {
	Send(msg models.OutboundMessage) (string, error)
}

// BodyHook rewrites the draft body just before validation. It is the seam
// for an external message-generation step; the orchestrator has no other
// coupling to it.
type BodyHook func(prospect models.Prospect, body string) (string, error)

// Outbox finalizes a displayed draft and sends it: validate, extract inline
// images, assemble the outbound payload, deliver exactly once, and only on
// confirmed success mutate the queue. A failed send leaves the prospect
// fully intact for retry.
type Outbox struct {
	store     *queue.Store
	nav       *queue.Navigator
	sender    Sender
	cidDomain string
	hook      BodyHook
}

// NewOutbox creates a send orchestrator bound to one session's queue state.
func NewOutbox(store *queue.Store, nav *queue.Navigator, sender Sender, cidDomain string) *Outbox {
	return &Outbox{
		store:     store,
		nav:       nav,
		sender:    sender,
		cidDomain: cidDomain,
	}
}

// SetBodyHook installs a pre-validation body substitution.
func (o *Outbox) SetBodyHook(hook BodyHook) {
	o.hook = hook
}

// Send delivers the displayed draft for a prospect. The prospect id is
// captured by value here: whatever the user navigates to afterwards, a
// completed send credits the prospect it was invoked for.
func (o *Outbox) Send(prospectID int, draft models.Draft, globalAttachments []models.Attachment) (string, error) {
	prospect, ok := o.store.Prospect(prospectID)
	if !ok {
		return "", utils.NotFoundError("prospect not found", nil)
	}

	body := draft.Body
	if o.hook != nil {
		rewritten, err := o.hook(prospect, body)
		if err != nil {
			return "", utils.InternalServerError("message generation failed", err)
		}
		body = rewritten
	}

	to := strings.TrimSpace(draft.To)
	subject := strings.TrimSpace(draft.Subject)
	if to == "" {
		return "", utils.ValidationError("recipient address is required")
	}
	if subject == "" {
		return "", utils.ValidationError("subject line is required")
	}

	htmlBody, inline := ExtractInlineImages(body, o.cidDomain)

	// Inline-derived attachments first, then session-wide ones.
	attachments := make([]models.Attachment, 0, len(inline)+len(globalAttachments))
	attachments = append(attachments, inline...)
	attachments = append(attachments, globalAttachments...)

	sender := o.store.Sender()
	msg := models.OutboundMessage{
		To:          to,
		Subject:     subject,
		HTMLBody:    htmlBody,
		TextBody:    utils.HTMLToText(htmlBody),
		FromName:    sender.Name,
		FromEmail:   sender.Email,
		Attachments: attachments,
	}

	messageID, err := o.sender.Send(msg)
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return "", appErr
		}
		return "", utils.TransportError(err.Error(), err)
	}

	// Queue mutation only after confirmed success, never optimistically.
	o.store.MarkSent(prospectID)
	o.nav.OnRemoved(prospectID)

	return messageID, nil
}
