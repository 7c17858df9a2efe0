// Package gesture tells a tap on the control surface apart from a drag.
//
// A pointer sequence is Down, zero or more Moves, then Up. Moves reposition
// the control immediately for live feedback. At Up, a sequence shorter than
// the tap threshold is a Toggle and the control snaps back to where it was
// at Down; anything longer keeps the position the moves produced.
package gesture

import (
	"sync"
	"time"
)

// DefaultTapThreshold separates a tap from a drag.
const DefaultTapThreshold = 100 * time.Millisecond

// Position is the offset of the control surface.
type Position struct {
	X, Y int
}

// Add returns p shifted by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Bounds is the area the control may occupy: X in [0, MaxX] and Y in
// [0, MaxY].
type Bounds struct {
	MaxX, MaxY int
}

// Clamp returns p moved inside b.
func (b Bounds) Clamp(p Position) Position {
	return Position{
		X: min(max(p.X, 0), max(b.MaxX, 0)),
		Y: min(max(p.Y, 0), max(b.MaxY, 0)),
	}
}

// ActionKind names the result of a gesture.
type ActionKind int

const (
	// None means there was no gesture to classify (Up without Down).
	None ActionKind = iota
	// Toggle means the gesture was a tap.
	Toggle
	// Reposition means the gesture was a drag; the move-time position stands.
	Reposition
)

func (k ActionKind) String() string {
	switch k {
	case Toggle:
		return "toggle"
	case Reposition:
		return "reposition"
	default:
		return "none"
	}
}

// Action is the classification of one pointer sequence.
type Action struct {
	Kind ActionKind
	// DX and DY are the applied offset for Reposition, zero otherwise.
	DX, DY int
}

// Session records the state captured at pointer-down.
type Session struct {
	Origin   Position // control position at Down
	TouchX   int
	TouchY   int
	DownTime time.Time
}

// Classifier owns the control position and classifies pointer sequences.
// It is safe for concurrent use, though events are normally delivered from
// a single UI goroutine.
type Classifier struct {
	mu        sync.Mutex
	threshold time.Duration
	pos       Position
	session   *Session
	bounds    *Bounds
}

// NewClassifier creates a Classifier with the control at start. A
// non-positive threshold uses DefaultTapThreshold.
func NewClassifier(threshold time.Duration, start Position) *Classifier {
	if threshold <= 0 {
		threshold = DefaultTapThreshold
	}
	return &Classifier{threshold: threshold, pos: start}
}

// Threshold returns the tap threshold.
func (c *Classifier) Threshold() time.Duration {
	return c.threshold
}

// Position returns the current control position.
func (c *Classifier) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// SetBounds limits the control to b and clamps the current position, and
// the position captured by an open session, into it. It returns the
// clamped position.
func (c *Classifier) SetBounds(b Bounds) Position {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bounds = &b
	c.pos = b.Clamp(c.pos)
	if c.session != nil {
		c.session.Origin = b.Clamp(c.session.Origin)
	}
	return c.pos
}

func (c *Classifier) clamp(p Position) Position {
	if c.bounds == nil {
		return p
	}
	return c.bounds.Clamp(p)
}

// Active reports whether a pointer sequence is in progress.
func (c *Classifier) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Down opens a session at touch point (x, y). An already open session is
// replaced.
func (c *Classifier) Down(x, y int, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &Session{Origin: c.pos, TouchX: x, TouchY: y, DownTime: at}
}

// Move repositions the control by the touch delta since Down, kept inside
// the bounds when set, and returns the new position. Without an open session it returns the current
// position unchanged.
func (c *Classifier) Move(x, y int) Position {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return c.pos
	}
	c.pos = c.clamp(c.session.Origin.Add(x-c.session.TouchX, y-c.session.TouchY))
	return c.pos
}

// Up closes the session and classifies it. A tap restores the position
// captured at Down, so small moves during a tap never reposition the
// control.
func (c *Classifier) Up(at time.Time) Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return Action{Kind: None}
	}
	c.session = nil

	if at.Sub(s.DownTime) < c.threshold {
		c.pos = s.Origin
		return Action{Kind: Toggle}
	}
	return Action{
		Kind: Reposition,
		DX:   c.pos.X - s.Origin.X,
		DY:   c.pos.Y - s.Origin.Y,
	}
}

// Cancel abandons an open session, restoring the position from Down.
func (c *Classifier) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.pos = c.session.Origin
		c.session = nil
	}
}
