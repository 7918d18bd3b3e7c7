package models

// Attachment represents a file attached to an outgoing email. Inline images
// extracted from the body carry a ContentID and are referenced from the HTML
// via cid:. Attachments exist only for the duration of a send attempt.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
	ContentID   string `json:"content_id,omitempty"`
}

// Inline reports whether the attachment is referenced from the HTML body.
func (a Attachment) Inline() bool {
	return a.ContentID != ""
}

// OutboundMessage is the fully assembled payload handed to the send relay.
type OutboundMessage struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	FromName    string
	FromEmail   string
	Attachments []Attachment
}
