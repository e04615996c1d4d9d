package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watcher reports writes to a SQLite file, including its -wal and -journal
// side files. Bursts are collapsed into one notification.
type Watcher struct {
	fs     *fsnotify.Watcher
	base   string
	events chan struct{}
}

func NewWatcher(dbPath string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tui: create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(dbPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("tui: watch %s: %w", filepath.Dir(dbPath), err)
	}
	return &Watcher{
		fs:     fw,
		base:   filepath.Base(dbPath),
		events: make(chan struct{}, 1),
	}, nil
}

func (w *Watcher) Events() <-chan struct{} { return w.events }

func (w *Watcher) Close() error { return w.fs.Close() }

// Run forwards debounced change notifications until ctx ends or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		case <-fire:
			fire = nil
			select {
			case w.events <- struct{}{}:
			default:
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Base(ev.Name)
	// -shm changes on plain reads, including the dashboard's own.
	return strings.HasPrefix(name, w.base) && !strings.HasSuffix(name, "-shm")
}

type storeChangedMsg struct{}

// waitForChange blocks until the watcher reports a change.
func waitForChange(events <-chan struct{}) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}
