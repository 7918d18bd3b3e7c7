package api

import (
	"strings"

	"coldreach/config"
	"coldreach/mail"
	"coldreach/models"
	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SendHandler drives the one-click send flow for the current prospect.
type SendHandler struct {
	store         *session.Store
	config        *config.Config
	notifications *NotificationHandler
}

// NewSendHandler creates a new send handler
func NewSendHandler(store *session.Store, cfg *config.Config, notifications *NotificationHandler) *SendHandler {
	return &SendHandler{
		store:         store,
		config:        cfg,
		notifications: notifications,
	}
}

// SendRequest carries the editor state at the moment the user hit send. When
// empty, the stored displayed draft is used instead.
type SendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// recordingSender wraps a transport and remembers the last message it pushed,
// so a copy can be appended to the IMAP Sent folder afterwards.
type recordingSender struct {
	inner mail.Sender
	last  models.OutboundMessage
	id    string
}

func (r *recordingSender) Send(msg models.OutboundMessage) (string, error) {
	id, err := r.inner.Send(msg)
	if err != nil {
		return "", err
	}
	r.last = msg
	r.id = id
	return id, nil
}

// sendAccount pairs relay credentials with the SMTP server they belong to.
// The fallback relay may live on a different host than the login account's
// provider, so the host travels with the credentials.
type sendAccount struct {
	Email    string
	Password string
	Host     string
	Port     int
}

// resolveAccount applies the login precedence: credentials captured at login
// win and use the configured provider; the fallback account covers sessions
// without them and brings its own relay host.
func (h *SendHandler) resolveAccount(c *fiber.Ctx) (*sendAccount, error) {
	creds, err := GetCredentials(c, h.store, h.config.Auth.EncryptionKey)
	if err != nil {
		return nil, utils.CredentialsError("Failed to read session credentials", err)
	}
	if creds != nil && creds.Email != "" && creds.Password != "" {
		return &sendAccount{
			Email:    creds.Email,
			Password: creds.Password,
			Host:     h.config.SMTP.Server,
			Port:     h.config.SMTP.GetPort(),
		}, nil
	}
	if h.config.HasFallback() {
		return &sendAccount{
			Email:    h.config.Fallback.User,
			Password: h.config.Fallback.Pass,
			Host:     h.config.Fallback.Host,
			Port:     h.config.Fallback.Port,
		}, nil
	}
	return nil, utils.CredentialsError("No sending credentials available", nil)
}

// HandleSend sends the displayed draft for a prospect. Exactly one delivery
// attempt is made; on failure the prospect stays in the queue with its edits
// intact so the user can retry.
func (h *SendHandler) HandleSend(c *fiber.Ctx) error {
	qs, err := SessionFromCtx(c)
	if err != nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid prospect id", err)
	}

	if !qs.BeginSend(id) {
		return utils.BadRequestError("Send already in progress for this prospect", nil)
	}
	defer qs.EndSend(id)

	var req SendRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.BadRequestError("Invalid request", err)
	}

	draft := models.Draft{To: req.To, Subject: req.Subject, Body: req.Body}
	if draft.To == "" && draft.Subject == "" && draft.Body == "" {
		stored, ok := qs.Store.GetDisplayed(id)
		if !ok {
			return utils.NotFoundError("Unknown prospect", nil)
		}
		draft = stored
	}

	account, err := h.resolveAccount(c)
	if err != nil {
		return err
	}

	smtpClient := mail.NewSMTPClient(
		account.Host,
		account.Port,
		account.Email,
		account.Password,
	)
	recorder := &recordingSender{inner: smtpClient}

	cidDomain := h.config.Mail.CIDDomain
	if cidDomain == "" {
		if i := strings.LastIndex(account.Email, "@"); i >= 0 {
			cidDomain = account.Email[i+1:]
		} else {
			cidDomain = "localhost"
		}
	}

	outbox := mail.NewOutbox(qs.Store, qs.Nav, recorder, cidDomain)

	prospect, _ := qs.Store.Prospect(id)

	messageID, err := outbox.Send(id, draft, qs.Store.GlobalAttachments())
	if err != nil {
		utils.Log.Warn("Send failed for prospect %d (%s): %v", id, draft.To, err)
		if h.notifications != nil {
			h.notifications.NotifySendFailed(prospect.CompanyName, draft.To, err.Error())
		}
		return err
	}

	utils.Log.Info("Email sent: to=%s company=%s id=%s", draft.To, prospect.CompanyName, messageID)

	if h.config.IMAP.SaveToSent {
		h.saveToSent(recorder, account)
	}

	if h.notifications != nil {
		h.notifications.NotifyEmailSent(prospect.CompanyName, draft.To, messageID)
		if qs.Store.Exhausted() {
			h.notifications.NotifyQueueExhausted(qs.Store.SentCount())
		}
	}

	nextID, hasNext := qs.Nav.Current()
	return c.JSON(fiber.Map{
		"success":    true,
		"message_id": messageID,
		"sent_count": qs.Store.SentCount(),
		"exhausted":  qs.Store.Exhausted(),
		"next_id":    nextID,
		"has_next":   hasNext,
	})
}

// saveToSent appends a copy of the delivered message to the IMAP Sent
// folder. Failures are logged and swallowed; the email already went out.
func (h *SendHandler) saveToSent(recorder *recordingSender, account *sendAccount) {
	raw, err := mail.BuildMIME(recorder.last, account.Email, recorder.id)
	if err != nil {
		utils.Log.Warn("Failed to render sent copy: %v", err)
		return
	}

	imapClient, err := NewClient(h.config.IMAP.Server, h.config.IMAP.Port, account.Email, account.Password)
	if err != nil {
		utils.Log.Warn("Failed to connect for sent copy: %v", err)
		return
	}
	defer imapClient.Close()

	if err := imapClient.SaveToSent(raw); err != nil {
		utils.Log.Warn("Failed to append sent copy: %v", err)
	}
}
