// Package output latches colours onto the LED drive stage.
package output

import (
	"sync"

	"blink1-go/types"
)

// Stage receives every colour the fade engine produces. SetRGB must not block.
type Stage interface {
	SetRGB(c types.RGB)
}

// Fanout drives several stages with the same colour, in order.
type Fanout []Stage

func (f Fanout) SetRGB(c types.RGB) {
	for _, s := range f {
		if s != nil {
			s.SetRGB(c)
		}
	}
}

// Recorder is an in-memory stage for host builds and tests. It keeps the last
// colour and, when Keep is set, the full history.
type Recorder struct {
	mu      sync.Mutex
	Keep    bool
	last    types.RGB
	count   int
	history []types.RGB
}

func (r *Recorder) SetRGB(c types.RGB) {
	r.mu.Lock()
	r.last = c
	r.count++
	if r.Keep {
		r.history = append(r.history, c)
	}
	r.mu.Unlock()
}

// Last returns the most recent colour.
func (r *Recorder) Last() types.RGB {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Count returns the number of SetRGB calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// History returns a copy of the recorded colours.
func (r *Recorder) History() []types.RGB {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.RGB(nil), r.history...)
}

// Reset clears the history and count.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.history = nil
	r.count = 0
	r.mu.Unlock()
}
