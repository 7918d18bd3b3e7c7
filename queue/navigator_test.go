package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNav() (*Store, *Navigator) {
	s := newTestStore()
	return s, NewNavigator(s)
}

func TestNavigatorStartsAtFirstProspect(t *testing.T) {
	_, nav := newTestNav()

	id, ok := nav.Current()
	require.True(t, ok)
	assert.Equal(t, 1, id)

	pos, total := nav.Progress()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 3, total)
}

func TestAdvanceStopsAtBoundaries(t *testing.T) {
	_, nav := newTestNav()

	// Backward from the first prospect is a no-op.
	assert.False(t, nav.Advance(Backward))
	id, _ := nav.Current()
	assert.Equal(t, 1, id)

	assert.True(t, nav.Advance(Forward))
	assert.True(t, nav.Advance(Forward))
	id, _ = nav.Current()
	assert.Equal(t, 3, id)

	// Forward past the last prospect is a no-op.
	assert.False(t, nav.Advance(Forward))
	id, _ = nav.Current()
	assert.Equal(t, 3, id)

	assert.True(t, nav.Advance(Backward))
	id, _ = nav.Current()
	assert.Equal(t, 2, id)
}

func TestJumpTo(t *testing.T) {
	s, nav := newTestNav()

	assert.True(t, nav.JumpTo(3))
	id, _ := nav.Current()
	assert.Equal(t, 3, id)

	// Jumping to a prospect that left the queue fails and keeps position.
	s.MarkSent(2)
	assert.False(t, nav.JumpTo(2))
	id, _ = nav.Current()
	assert.Equal(t, 3, id)

	assert.False(t, nav.JumpTo(99))
}

func TestNextProspectSlidesIntoSlot(t *testing.T) {
	s, nav := newTestNav()

	// Looking at A (id 1). Sending it makes B the new current: B slid into
	// the vacated first slot.
	require.True(t, s.MarkSent(1))
	nav.OnRemoved(1)

	id, ok := nav.Current()
	require.True(t, ok)
	assert.Equal(t, 2, id)

	pos, total := nav.Progress()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, total)
}

func TestRemovingLastProspectClampsToEnd(t *testing.T) {
	s, nav := newTestNav()

	require.True(t, nav.JumpTo(3))
	require.True(t, s.Remove(3))
	nav.OnRemoved(3)

	id, ok := nav.Current()
	require.True(t, ok)
	assert.Equal(t, 2, id, "no slot to slide into, fall back to the new last prospect")
}

func TestRemovingNonCurrentKeepsPosition(t *testing.T) {
	s, nav := newTestNav()

	require.True(t, nav.JumpTo(2))
	require.True(t, s.Remove(3))
	nav.OnRemoved(3)

	id, _ := nav.Current()
	assert.Equal(t, 2, id)

	pos, total := nav.Progress()
	assert.Equal(t, 2, pos)
	assert.Equal(t, 2, total)
}

func TestQueueExhaustion(t *testing.T) {
	s, nav := newTestNav()

	for _, id := range []int{1, 2, 3} {
		require.True(t, s.MarkSent(id))
		nav.OnRemoved(id)
	}

	_, ok := nav.Current()
	assert.False(t, ok)
	assert.True(t, s.Exhausted())

	pos, total := nav.Progress()
	assert.Equal(t, 0, pos)
	assert.Equal(t, 0, total)

	// Reset brings the position back to the front.
	s.Reset()
	id, ok := nav.Current()
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

// Send A while looking at A, with B and C waiting: B becomes current. Then
// navigate to C, send C: B is current again because C's slot no longer
// exists.
func TestSendScenarioABC(t *testing.T) {
	s, nav := newTestNav()

	require.True(t, s.MarkSent(1))
	nav.OnRemoved(1)
	id, _ := nav.Current()
	assert.Equal(t, 2, id)

	require.True(t, nav.JumpTo(3))
	require.True(t, s.MarkSent(3))
	nav.OnRemoved(3)

	id, ok := nav.Current()
	require.True(t, ok)
	assert.Equal(t, 2, id)
	assert.Equal(t, 2, s.SentCount())
}
