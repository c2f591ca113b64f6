package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ggedit/canvas"
)

func TestGestureIgnoredWhenDisarmed(t *testing.T) {
	var g Gesture
	assert.False(t, g.Down(canvas.Pt(1, 1)))
	assert.False(t, g.Move(canvas.Pt(5, 5)))
	_, ok := g.Up(canvas.Pt(5, 5))
	assert.False(t, ok)
	assert.Equal(t, Idle, g.State())
}

func TestGestureDragUpLeftNormalizes(t *testing.T) {
	var g Gesture
	require.True(t, g.Toggle())
	require.True(t, g.Down(canvas.Pt(50, 40)))
	assert.Equal(t, Dragging, g.State())

	require.True(t, g.Move(canvas.Pt(20, 10)))
	live := g.Selection()
	assert.Equal(t, canvas.Rect{X: 50, Y: 40, W: -30, H: -30}, live)

	r, ok := g.Up(canvas.Pt(10, 30))
	require.True(t, ok)
	assert.Equal(t, canvas.Rect{X: 10, Y: 30, W: 40, H: 10}, r)
	assert.False(t, g.Armed(), "release disarms")
	assert.Equal(t, Idle, g.State())
}

func TestGestureDownIsNotReentrant(t *testing.T) {
	var g Gesture
	g.Toggle()
	require.True(t, g.Down(canvas.Pt(0, 0)))
	assert.False(t, g.Down(canvas.Pt(9, 9)))
	r, ok := g.Up(canvas.Pt(4, 4))
	require.True(t, ok)
	assert.Equal(t, canvas.Rect{W: 4, H: 4}, r)
}

func TestGestureZeroAreaRelease(t *testing.T) {
	var g Gesture
	g.Toggle()
	g.Down(canvas.Pt(3, 3))
	r, ok := g.Up(canvas.Pt(3, 3))
	require.True(t, ok)
	assert.True(t, r.Empty())
}

func TestToggleCancelsDrag(t *testing.T) {
	var g Gesture
	g.Toggle()
	g.Down(canvas.Pt(1, 2))
	assert.False(t, g.Toggle())
	assert.Equal(t, Idle, g.State())
	assert.False(t, g.Armed())
	assert.Equal(t, canvas.Rect{}, g.Selection())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "unknown", State(9).String())
}
