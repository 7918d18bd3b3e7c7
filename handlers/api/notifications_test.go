package api

import (
	"bufio"
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer lets the test read what the stream goroutine writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStreamReceivesBroadcasts(t *testing.T) {
	h := NewNotificationHandler(nil)
	out := &syncBuffer{}
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		h.stream(bufio.NewWriter(out), done)
		close(finished)
	}()

	// The subscription is registered by the stream itself, for exactly as
	// long as the connection lives.
	require.Eventually(t, func() bool {
		return h.subscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	h.NotifyEmailSent("Alpha", "ana@alpha.test", "msg-1@example.com")

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "email_sent")
	}, time.Second, 5*time.Millisecond)

	got := out.String()
	assert.Contains(t, got, "data: ")
	assert.Contains(t, got, "ana@alpha.test")
	assert.Contains(t, got, "\n\n")

	close(done)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop on disconnect")
	}
	assert.Equal(t, 0, h.subscriberCount())
}

func TestStreamQuietBeforeBroadcast(t *testing.T) {
	h := NewNotificationHandler(nil)
	out := &syncBuffer{}
	done := make(chan struct{})
	defer close(done)

	go h.stream(bufio.NewWriter(out), done)

	require.Eventually(t, func() bool {
		return h.subscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	// With nothing broadcast, the stream emits nothing. A closed or missing
	// channel would busy-spin zero-value events here.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, out.String())
}
