package api

import (
	"bufio"
	"encoding/json"
	"sync"
	"time"

	"coldreach/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Notification represents a real-time notification
type Notification struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"` // "email_sent", "send_failed", "queue_exhausted"
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Time    time.Time              `json:"time"`
}

// NotificationHandler pushes send results to the composer in real time,
// over SSE or WebSocket.
type NotificationHandler struct {
	store       *session.Store
	subscribers map[string]chan Notification
	mu          sync.RWMutex
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(store *session.Store) *NotificationHandler {
	return &NotificationHandler{
		store:       store,
		subscribers: make(map[string]chan Notification),
	}
}

// HandleSSE handles Server-Sent Events for real-time notifications
func (h *NotificationHandler) HandleSSE(c *fiber.Ctx) error {
	// Set headers for SSE
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	// Require a session before streaming anything
	if _, err := GetSessionToken(c, h.store); err != nil {
		return utils.UnauthorizedError("Invalid session", err)
	}

	// The stream writer runs after this handler returns, when fasthttp
	// serializes the response. Subscription must happen inside it: a channel
	// created here would be torn down before streaming starts.
	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		h.stream(w, done)
	}))

	return nil
}

// stream subscribes for the lifetime of one SSE connection and forwards
// broadcasts until the client disconnects.
func (h *NotificationHandler) stream(w *bufio.Writer, done <-chan struct{}) {
	subscriberID := uuid.New().String()
	messageChan := make(chan Notification, 10)

	h.mu.Lock()
	h.subscribers[subscriberID] = messageChan
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subscribers, subscriberID)
		close(messageChan)
		h.mu.Unlock()

		utils.Log.Info("SSE subscriber disconnected: %s", subscriberID)
	}()

	utils.Log.Info("SSE subscriber connected: %s", subscriberID)

	// Keep-alive ticker
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case notification := <-messageChan:
			data, _ := json.Marshal(notification)
			w.WriteString("data: " + string(data) + "\n\n")
			if err := w.Flush(); err != nil {
				return
			}

		case <-ticker.C:
			// Send keep-alive comment
			w.WriteString(": keepalive\n\n")
			if err := w.Flush(); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

// subscriberCount reports how many live subscriber channels exist.
func (h *NotificationHandler) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HandleWebSocket handles WebSocket connections for real-time notifications
func (h *NotificationHandler) HandleWebSocket(c *websocket.Conn) {
	subscriberID := uuid.New().String()
	messageChan := make(chan Notification, 10)

	h.mu.Lock()
	h.subscribers[subscriberID] = messageChan
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subscribers, subscriberID)
		close(messageChan)
		h.mu.Unlock()

		c.Close()
		utils.Log.Info("WebSocket subscriber disconnected: %s", subscriberID)
	}()

	utils.Log.Info("WebSocket subscriber connected: %s", subscriberID)

	for notification := range messageChan {
		if err := c.WriteJSON(notification); err != nil {
			utils.Log.Error("Failed to send WebSocket notification: %v", err)
			break
		}
	}
}

// BroadcastNotification sends a notification to all subscribers
func (h *NotificationHandler) BroadcastNotification(notification Notification) {
	notification.ID = uuid.New().String()
	notification.Time = time.Now()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for subscriberID, ch := range h.subscribers {
		select {
		case ch <- notification:
			// Sent successfully
		default:
			// Channel full, skip this subscriber
			utils.Log.Warn("Notification channel full for subscriber %s", subscriberID)
		}
	}
}

// NotifyEmailSent announces a successful delivery.
func (h *NotificationHandler) NotifyEmailSent(company, to, messageID string) {
	h.BroadcastNotification(Notification{
		Type:    "email_sent",
		Message: "Email sent to " + company,
		Data: map[string]interface{}{
			"company":    company,
			"to":         to,
			"message_id": messageID,
		},
	})
}

// NotifySendFailed announces a failed delivery attempt.
func (h *NotificationHandler) NotifySendFailed(company, to, reason string) {
	h.BroadcastNotification(Notification{
		Type:    "send_failed",
		Message: "Send to " + company + " failed",
		Data: map[string]interface{}{
			"company": company,
			"to":      to,
			"reason":  reason,
		},
	})
}

// NotifyQueueExhausted announces that every prospect has been handled.
func (h *NotificationHandler) NotifyQueueExhausted(sentCount int) {
	h.BroadcastNotification(Notification{
		Type:    "queue_exhausted",
		Message: "All prospects handled",
		Data: map[string]interface{}{
			"sent_count": sentCount,
		},
	})
}
