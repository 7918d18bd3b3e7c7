// handlers/api/client.go
package api

import (
	"bytes"
	"fmt"
	"time"

	"coldreach/utils"

	"github.com/emersion/go-imap/client"
)

// Client represents an IMAP client wrapper
type Client struct {
	client   *client.Client
	username string
}

// NewClient dials the IMAP server over TLS and logs in. Login handlers use
// this to verify a prospect-sender's mailbox credentials before trusting
// them for SMTP.
func NewClient(server string, port int, email, password string) (*Client, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", server, port), nil)
	if err != nil {
		utils.Log.Warn("DialTLS %s:%d connection err: %v", server, port, err)
		return nil, fmt.Errorf("connection error: %v", err)
	}

	err = c.Login(email, password)
	if err != nil {
		c.Logout()
		utils.Log.Warn("IMAP login failed for %s: %v", email, err)
		return nil, fmt.Errorf("login error: %v", err)
	}

	return &Client{client: c, username: email}, nil
}

// Close closes the IMAP connection
func (c *Client) Close() error {
	return c.client.Logout()
}

// SaveToSent appends a raw MIME message to the user's Sent folder. Provider
// folder names vary, so a few common ones are tried in order.
func (c *Client) SaveToSent(raw []byte) error {
	sentFolders := []string{"Sent", "Sent Items", "Sent Mail", "[Gmail]/Sent Mail"}

	var selectedFolder string
	for _, folder := range sentFolders {
		if _, err := c.client.Select(folder, false); err == nil {
			selectedFolder = folder
			break
		}
	}

	if selectedFolder == "" {
		return fmt.Errorf("could not find Sent folder")
	}

	return c.client.Append(selectedFolder, nil, time.Now(), bytes.NewReader(raw))
}
