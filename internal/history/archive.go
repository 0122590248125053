package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/spudgame/internal/game"
)

// Archiver records games played back to back and saves each one to
// <dir>/<game id>.jsonl when it ends.
type Archiver struct {
	dir    string
	logger *log.Logger
	rec    *Recorder

	mu    sync.Mutex
	saved []string
	games int
	err   error
}

// NewArchiver creates dir if needed and returns an archiver writing into it
func NewArchiver(dir string, logger *log.Logger) (*Archiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Archiver{
		dir:    dir,
		logger: logger.WithPrefix("history"),
		rec:    NewRecorder(),
	}, nil
}

// OnEvent implements game.EventSubscriber
func (a *Archiver) OnEvent(event game.GameEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// A start always opens a fresh log, even if the previous game never ended
	if event.EventType() == game.EventTypeGameStart {
		a.rec.Reset()
	}
	a.rec.OnEvent(event)

	end, ok := event.(game.GameEndEvent)
	if !ok {
		return
	}
	a.games++
	name := end.GameID
	if name == "" {
		name = fmt.Sprintf("game-%d", a.games)
	}
	path := filepath.Join(a.dir, name+".jsonl")

	if err := a.rec.Save(path); err != nil {
		a.logger.Error("Failed to save game log", "path", path, "error", err)
		if a.err == nil {
			a.err = err
		}
	} else {
		a.saved = append(a.saved, path)
		a.logger.Debug("Saved game log", "path", path, "events", a.rec.Len())
	}
	a.rec.Reset()
}

// Saved returns the paths written so far
func (a *Archiver) Saved() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.saved...)
}

// Err returns the first save error, if any
func (a *Archiver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}
