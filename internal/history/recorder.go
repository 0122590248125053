// Package history records game events as JSON lines.
//
// A Recorder subscribes to one or more engines and appends one envelope per
// event (type, timestamp, payload). Logs are write-only exports for
// inspection and diffing; nothing reads them back into a game.
package history

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/lox/spudgame/internal/game"
)

// Recorder buffers events as newline-delimited JSON
type Recorder struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	events int
	err    error
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnEvent implements game.EventSubscriber. The first encoding error is kept
// and later events are dropped.
func (r *Recorder) OnEvent(event game.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return
	}
	data, err := game.MarshalEvent(event)
	if err != nil {
		r.err = fmt.Errorf("encode %s event: %w", event.EventType(), err)
		return
	}
	r.buf.Write(data)
	r.buf.WriteByte('\n')
	r.events++
}

// Len returns the number of recorded events
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}

// Bytes returns a copy of the recorded log
func (r *Recorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Clone(r.buf.Bytes())
}

// Err returns the first encoding error, if any
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Reset clears the recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Reset()
	r.events = 0
	r.err = nil
}

// Save writes the recorded log to filename atomically
func (r *Recorder) Save(filename string) error {
	if err := r.Err(); err != nil {
		return err
	}
	return WriteFileAtomic(filename, r.Bytes(), 0o644)
}

// cleanupTemp removes a temp file left behind by a failed write
func cleanupTemp(f *os.File) {
	f.Close()
	os.Remove(f.Name())
}
