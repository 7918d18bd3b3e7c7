package storage

import (
	"testing"
	"time"

	"coldreach/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession("sam@example.com", []models.Prospect{
		{ID: 1, CompanyName: "Alpha", ContactEmail: "ana@alpha.test"},
	}, models.SenderInfo{Name: "Sam"}, "Quick question")
}

func TestRegistryPutGetDelete(t *testing.T) {
	r := NewRegistry(time.Hour)

	_, ok := r.Get("missing")
	assert.False(t, ok)

	session := newTestSession()
	r.Put("tok", session)
	assert.Equal(t, 1, r.Size())

	got, ok := r.Get("tok")
	require.True(t, ok)
	assert.Same(t, session, got)

	r.Delete("tok")
	_, ok = r.Get("tok")
	assert.False(t, ok)
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.Put("tok", newTestSession())

	time.Sleep(30 * time.Millisecond)

	_, ok := r.Get("tok")
	assert.False(t, ok)
}

func TestSessionInFlightGuard(t *testing.T) {
	s := newTestSession()

	require.True(t, s.BeginSend(1))
	assert.False(t, s.BeginSend(1), "second send for the same prospect is blocked")
	assert.True(t, s.BeginSend(2), "other prospects are unaffected")

	s.EndSend(1)
	assert.True(t, s.BeginSend(1))
}
