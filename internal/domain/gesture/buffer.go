// Package gesture captures skeleton sequences and classifies them against
// recorded reference gestures.
package gesture

import (
	"fmt"

	"github.com/okian/kinetic/internal/domain/skeleton"
)

// DefaultCapacity is the number of frames a capture buffer holds by default.
const DefaultCapacity = 500

// Buffer is a bounded FIFO of skeleton frames. When full, appending drops
// the oldest frame. A Buffer belongs to a single session and is not safe for
// concurrent use.
type Buffer struct {
	frames   []skeleton.Frame
	capacity int
}

// NewBuffer creates an empty buffer. Non-positive capacities use DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		frames:   make([]skeleton.Frame, 0, capacity),
		capacity: capacity,
	}
}

// NewBufferFrom creates a buffer holding the last capacity frames of frames.
func NewBufferFrom(frames []skeleton.Frame, capacity int) *Buffer {
	b := NewBuffer(capacity)
	for _, f := range frames {
		b.Append(f)
	}
	return b
}

// Append adds f at the end, evicting the oldest frame at capacity.
func (b *Buffer) Append(f skeleton.Frame) {
	if len(b.frames) == b.capacity {
		copy(b.frames, b.frames[1:])
		b.frames[len(b.frames)-1] = f
		return
	}
	b.frames = append(b.frames, f)
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	clear(b.frames)
	b.frames = b.frames[:0]
}

// RemoveRange deletes frames start..endInclusive.
func (b *Buffer) RemoveRange(start, endInclusive int) error {
	if err := b.checkRange(start, endInclusive); err != nil {
		return err
	}
	n := copy(b.frames[start:], b.frames[endInclusive+1:])
	tail := b.frames[start+n:]
	clear(tail)
	b.frames = b.frames[:start+n]
	return nil
}

// Trim keeps only frames start..endInclusive, the operator-marked window of
// a capture about to be persisted.
func (b *Buffer) Trim(start, endInclusive int) error {
	if err := b.checkRange(start, endInclusive); err != nil {
		return err
	}
	last := len(b.frames) - 1
	if endInclusive < last {
		if err := b.RemoveRange(endInclusive+1, last); err != nil {
			return err
		}
	}
	if start > 0 {
		return b.RemoveRange(0, start-1)
	}
	return nil
}

func (b *Buffer) checkRange(start, endInclusive int) error {
	if start < 0 || start > endInclusive || endInclusive >= len(b.frames) {
		return fmt.Errorf("%w: [%d,%d] of %d frames", ErrRange, start, endInclusive, len(b.frames))
	}
	return nil
}

// At returns the frame at index i.
func (b *Buffer) At(i int) (skeleton.Frame, error) {
	if i < 0 || i >= len(b.frames) {
		return skeleton.Frame{}, fmt.Errorf("%w: %d of %d frames", ErrRange, i, len(b.frames))
	}
	return b.frames[i], nil
}

// Len returns the number of frames held.
func (b *Buffer) Len() int { return len(b.frames) }

// Cap returns the maximum number of frames held.
func (b *Buffer) Cap() int { return b.capacity }

// Frames returns a copy of the buffered frames, oldest first.
func (b *Buffer) Frames() []skeleton.Frame {
	out := make([]skeleton.Frame, len(b.frames))
	copy(out, b.frames)
	return out
}
