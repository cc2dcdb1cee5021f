// Package session holds the capture/replay/recognition mode of a sensor
// session and the gesture buffer it fills.
package session

import (
	"fmt"

	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/skeleton"
)

// State is the current session mode.
type State int

// Session states.
const (
	Idle State = iota
	Capturing
	Replaying
	Recognizing
)

// States lists every state in declaration order.
var States = []State{Idle, Capturing, Replaying, Recognizing}

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Replaying:
		return "replaying"
	case Recognizing:
		return "recognizing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState resolves a state name as produced by String.
func ParseState(s string) (State, error) {
	for _, st := range States {
		if st.String() == s {
			return st, nil
		}
	}
	return Idle, fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, s)
}

// Hook observes state changes.
type Hook func(from, to State)

// Machine is the session state machine. Only one mode is active at a time;
// every mode is entered from Idle and left by Stop. Machine is not safe for
// concurrent use.
type Machine struct {
	state  State
	buf    *gesture.Buffer
	replay *gesture.Buffer
	cursor int
	hooks  []Hook
}

// Option configures a Machine.
type Option func(*Machine)

// WithHook registers a state change observer.
func WithHook(h Hook) Option {
	return func(m *Machine) {
		if h != nil {
			m.hooks = append(m.hooks, h)
		}
	}
}

// NewMachine creates an idle machine filling buf.
func NewMachine(buf *gesture.Buffer, opts ...Option) *Machine {
	if buf == nil {
		buf = gesture.NewBuffer(gesture.DefaultCapacity)
	}
	m := &Machine{buf: buf}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Buffer returns the session's gesture buffer.
func (m *Machine) Buffer() *gesture.Buffer { return m.buf }

func (m *Machine) enter(to State) error {
	from := m.state
	valid := (from == Idle && to != Idle) || (from != Idle && to == Idle)
	if !valid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.state = to
	for _, h := range m.hooks {
		h(from, to)
	}
	return nil
}

// StartCapture clears the buffer and begins recording frames.
func (m *Machine) StartCapture() error {
	if err := m.enter(Capturing); err != nil {
		return err
	}
	m.buf.Clear()
	return nil
}

// StartRecognizing begins feeding frames to the matcher.
func (m *Machine) StartRecognizing() error {
	if err := m.enter(Recognizing); err != nil {
		return err
	}
	m.buf.Clear()
	return nil
}

// StartReplay loads a recorded sequence and positions the cursor at its
// first frame.
func (m *Machine) StartReplay(frames []skeleton.Frame) error {
	if len(frames) == 0 {
		return ErrEmptyReplay
	}
	if err := m.enter(Replaying); err != nil {
		return err
	}
	m.replay = gesture.NewBufferFrom(frames, len(frames))
	m.cursor = 0
	return nil
}

// Stop returns to Idle. The buffer keeps its contents so a capture can be
// trimmed and saved afterwards.
func (m *Machine) Stop() error {
	if err := m.enter(Idle); err != nil {
		return err
	}
	m.replay = nil
	m.cursor = 0
	return nil
}

// Observe feeds a live skeleton frame to the session. Frames are buffered
// while Capturing or Recognizing and ignored otherwise. It reports whether
// the frame was buffered.
func (m *Machine) Observe(f skeleton.Frame) bool {
	if m.state != Capturing && m.state != Recognizing {
		return false
	}
	m.buf.Append(f)
	return true
}

// Seek moves the replay cursor to frame i and returns that frame. The next
// call to Next returns it again.
func (m *Machine) Seek(i int) (skeleton.Frame, error) {
	if m.state != Replaying {
		return skeleton.Frame{}, ErrNotReplaying
	}
	f, err := m.replay.At(i)
	if err != nil {
		return skeleton.Frame{}, fmt.Errorf("%w: %w", ErrCursor, err)
	}
	m.cursor = i
	return f, nil
}

// Next returns the frame at the cursor and advances it. ok is false once the
// replay is exhausted.
func (m *Machine) Next() (skeleton.Frame, bool, error) {
	if m.state != Replaying {
		return skeleton.Frame{}, false, ErrNotReplaying
	}
	f, err := m.replay.At(m.cursor)
	if err != nil {
		return skeleton.Frame{}, false, nil
	}
	m.cursor++
	return f, true, nil
}

// Cursor returns the replay position and the replay length.
func (m *Machine) Cursor() (pos, total int) {
	if m.replay == nil {
		return 0, 0
	}
	return m.cursor, m.replay.Len()
}
