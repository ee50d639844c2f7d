// Package logbook keeps a plain-text trace of director scheduling events.
// Lines go to a file under .sce/logs and the most recent ones stay in memory
// so the player can show them every frame without re-reading the file.
package logbook

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kingrea/sce/internal/director"
)

// FileName is the trace file written next to sceplay.log.
const FileName = "trace.log"

const defaultKeep = 64

// Logbook persists scheduling events to a text file.
type Logbook struct {
	path string
	keep int

	mu     sync.Mutex
	file   *os.File
	recent []string
	total  int
}

// New creates a logbook that appends to path. keep bounds the in-memory
// tail; non-positive values use a default.
func New(path string, keep int) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logbook: open %s: %w", path, err)
	}
	if keep <= 0 {
		keep = defaultKeep
	}
	return &Logbook{path: path, keep: keep, file: file}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record writes one event. Its signature matches director.WithTrace.
func (l *Logbook) Record(ev director.Event) {
	if l == nil {
		return
	}
	l.append(Format(ev))
}

// Format renders an event as a single line.
func Format(ev director.Event) string {
	if ev.Type == director.EventExhausted {
		return fmt.Sprintf("t%04d %-12s", ev.Tick, ev.Type)
	}
	name := ev.Kind
	if ev.Label != "" {
		name = fmt.Sprintf("%s (%s)", ev.Kind, ev.Label)
	}
	return fmt.Sprintf("t%04d %-12s #%d %s", ev.Tick, ev.Type, ev.Index, name)
}

func (l *Logbook) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total++
	l.recent = append(l.recent, line)
	if len(l.recent) > l.keep {
		l.recent = append(l.recent[:0], l.recent[len(l.recent)-l.keep:]...)
	}
	if l.file != nil {
		_, _ = l.file.WriteString(line + "\n")
	}
}

// Tail returns up to maxLines of the most recent entries and the total
// number recorded.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lines := l.recent
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return append([]string(nil), lines...), l.total
}

// Close releases the file handle.
func (l *Logbook) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
