package mail

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"math/rand"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coldreach/models"
)

// SMTPClient delivers outbound messages over SMTP with STARTTLS.
type SMTPClient struct {
	server   string
	port     int
	email    string
	password string
}

// NewSMTPClient creates a new SMTP client for the given relay credentials.
func NewSMTPClient(server string, port int, email, password string) *SMTPClient {
	return &SMTPClient{
		server:   server,
		port:     port,
		email:    email,
		password: password,
	}
}

// Send performs a single synchronous delivery attempt and returns the
// generated message identifier. No retries happen here; callers treat
// anything past the DATA command as potentially delivered.
func (c *SMTPClient) Send(msg models.OutboundMessage) (string, error) {
	addr := fmt.Sprintf("%s:%d", c.server, c.port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return "", fmt.Errorf("dial failed: %v", err)
	}
	defer client.Close()

	domain := domainFromEmail(c.email)
	if err := client.Hello(domain); err != nil {
		return "", fmt.Errorf("hello failed: %v", err)
	}

	tlsConfig := &tls.Config{
		ServerName: c.server,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return "", fmt.Errorf("starttls failed: %v", err)
	}

	auth := smtp.PlainAuth("", c.email, c.password, c.server)
	if err = client.Auth(auth); err != nil {
		return "", fmt.Errorf("auth failed: %v", err)
	}

	if err = client.Mail(c.email); err != nil {
		return "", fmt.Errorf("mail from failed: %v", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("rcpt to failed: %v", err)
	}

	writer, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("data failed: %v", err)
	}

	messageID := fmt.Sprintf("%s@%s", generateMessageID(), domain)
	if err := writeMessage(writer, msg, c.email, messageID); err != nil {
		return "", fmt.Errorf("write failed: %v", err)
	}

	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("data close failed: %v", err)
	}
	if err = client.Quit(); err != nil {
		return "", fmt.Errorf("quit failed: %v", err)
	}

	return messageID, nil
}

// BuildMIME renders the full wire message without sending it. Used to append
// an exact copy of a sent email to the IMAP Sent folder.
func BuildMIME(msg models.OutboundMessage, envelopeFrom, messageID string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMessage(&buf, msg, envelopeFrom, messageID); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeMessage assembles the MIME message. Inline attachments (those with a
// content identifier) live in a multipart/related part next to the HTML so
// cid: references resolve; regular attachments go in the outer mixed part.
func writeMessage(w io.Writer, msg models.OutboundMessage, envelopeFrom, messageID string) error {
	var inline, regular []models.Attachment
	for _, att := range msg.Attachments {
		if att.Inline() {
			inline = append(inline, att)
		} else {
			regular = append(regular, att)
		}
	}

	fromEmail := msg.FromEmail
	if fromEmail == "" {
		fromEmail = envelopeFrom
	}
	from := fromEmail
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, fromEmail)
	}

	mixedBoundary := fmt.Sprintf("mixed-%s", generateBoundary())

	fmt.Fprintf(w, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(w, "From: %s\r\n", from)
	fmt.Fprintf(w, "To: %s\r\n", msg.To)
	fmt.Fprintf(w, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(w, "Message-ID: <%s>\r\n", messageID)
	fmt.Fprintf(w, "MIME-Version: 1.0\r\n")

	if len(regular) > 0 {
		fmt.Fprintf(w, "Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", mixedBoundary)
		fmt.Fprintf(w, "--%s\r\n", mixedBoundary)
		if err := writeBody(w, msg, inline); err != nil {
			return err
		}
		for _, att := range regular {
			fmt.Fprintf(w, "--%s\r\n", mixedBoundary)
			writeAttachmentPart(w, att)
		}
		fmt.Fprintf(w, "--%s--\r\n", mixedBoundary)
		return nil
	}

	return writeBody(w, msg, inline)
}

// writeBody emits the multipart/alternative section, nesting the HTML inside
// multipart/related when inline images are present.
func writeBody(w io.Writer, msg models.OutboundMessage, inline []models.Attachment) error {
	altBoundary := fmt.Sprintf("alt-%s", generateBoundary())

	fmt.Fprintf(w, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", altBoundary)

	fmt.Fprintf(w, "--%s\r\n", altBoundary)
	fmt.Fprintf(w, "Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	fmt.Fprintf(w, "%s\r\n", msg.TextBody)

	fmt.Fprintf(w, "--%s\r\n", altBoundary)
	if len(inline) > 0 {
		relBoundary := fmt.Sprintf("rel-%s", generateBoundary())
		fmt.Fprintf(w, "Content-Type: multipart/related; boundary=\"%s\"\r\n\r\n", relBoundary)
		fmt.Fprintf(w, "--%s\r\n", relBoundary)
		fmt.Fprintf(w, "Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
		fmt.Fprintf(w, "%s\r\n", msg.HTMLBody)
		for _, att := range inline {
			fmt.Fprintf(w, "--%s\r\n", relBoundary)
			writeInlinePart(w, att)
		}
		fmt.Fprintf(w, "--%s--\r\n", relBoundary)
	} else {
		fmt.Fprintf(w, "Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
		fmt.Fprintf(w, "%s\r\n", msg.HTMLBody)
	}

	fmt.Fprintf(w, "--%s--\r\n", altBoundary)
	return nil
}

func writeAttachmentPart(w io.Writer, att models.Attachment) {
	fmt.Fprintf(w, "Content-Type: %s; name=\"%s\"\r\n", att.ContentType, att.Filename)
	fmt.Fprintf(w, "Content-Disposition: attachment; filename=\"%s\"\r\n", att.Filename)
	fmt.Fprintf(w, "Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(w, att.Content)
}

func writeInlinePart(w io.Writer, att models.Attachment) {
	fmt.Fprintf(w, "Content-Type: %s\r\n", att.ContentType)
	fmt.Fprintf(w, "Content-Disposition: inline; filename=\"%s\"\r\n", att.Filename)
	fmt.Fprintf(w, "Content-ID: <%s>\r\n", att.ContentID)
	fmt.Fprintf(w, "Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(w, att.Content)
}

// writeBase64 encodes data in 76-character lines per RFC 2045.
func writeBase64(w io.Writer, data []byte) {
	b64 := base64.StdEncoding.EncodeToString(data)
	for i := 0; i < len(b64); i += 76 {
		end := i + 76
		if end > len(b64) {
			end = len(b64)
		}
		fmt.Fprintf(w, "%s\r\n", b64[i:end])
	}
}

func generateBoundary() string {
	return fmt.Sprintf("%x", rand.Int63())
}

// generateMessageID creates a unique Message-ID for the email
func generateMessageID() string {
	return fmt.Sprintf("%d.%d.%d",
		time.Now().UnixNano(),
		os.Getpid(),
		rand.Int63())
}

func domainFromEmail(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}
	return "localhost"
}

// DetectContentType guesses a MIME type from a filename for uploaded
// attachments without one.
func DetectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return "text/plain"
	case ".html":
		return "text/html"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
