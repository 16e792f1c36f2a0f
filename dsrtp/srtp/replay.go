package srtp

import (
	"fmt"

	"github.com/kelindar/bitmap"
)

const (
	// DefaultReplayWindow is the number of packet indices remembered behind
	// the highest accepted index.
	DefaultReplayWindow = 1024

	minReplayWindow = 64
)

// replayWindow is a sliding bitmap over 48-bit packet indices (RFC 3711 §3.3.2).
// Bit (index mod size) is set once index has been accepted; advancing the top
// clears the bits of indices that left the window.
type replayWindow struct {
	size    uint64
	top     uint64
	started bool
	seen    bitmap.Bitmap
}

func newReplayWindow(size int) *replayWindow {
	if size <= 0 {
		size = DefaultReplayWindow
	}
	if size < minReplayWindow {
		size = minReplayWindow
	}
	w := &replayWindow{size: uint64(size)}
	w.seen.Grow(uint32(size - 1))
	return w
}

func (w *replayWindow) bit(index uint64) uint32 {
	return uint32(index % w.size)
}

// check reports whether index may still be accepted. It never mutates the window.
func (w *replayWindow) check(index uint64) error {
	if !w.started || index > w.top {
		return nil
	}
	if w.top-index >= w.size {
		return fmt.Errorf("%w: index %d is behind window floor %d", ErrReplay, index, w.top-w.size+1)
	}
	if w.seen.Contains(w.bit(index)) {
		return fmt.Errorf("%w: index %d already seen", ErrReplay, index)
	}
	return nil
}

// accept marks index as seen, advancing the window when index is the new top.
// The caller must have passed check first.
func (w *replayWindow) accept(index uint64) {
	switch {
	case !w.started:
		w.started = true
		w.top = index
	case index > w.top:
		if index-w.top >= w.size {
			w.seen.Clear()
		} else {
			for i := w.top + 1; i <= index; i++ {
				w.seen.Remove(w.bit(i))
			}
		}
		w.top = index
	}
	w.seen.Set(w.bit(index))
}
