package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcherReportsDatabaseWrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "workflow-db.sqlite")

	w, err := NewWatcher(dbPath)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write unrelated: %v", err)
	}
	select {
	case <-w.Events():
		t.Fatal("unexpected event for unrelated file")
	case <-time.After(2 * watchDebounce):
	}

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(dbPath+"-wal", []byte{byte(i)}, 0o600); err != nil {
			t.Fatalf("write wal: %v", err)
		}
	}
	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("no event after writing the database WAL")
	}

	// The burst collapses into a single notification.
	select {
	case <-w.Events():
		t.Fatal("burst produced more than one event")
	case <-time.After(2 * watchDebounce):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWaitForChangeNilChannel(t *testing.T) {
	if cmd := waitForChange(nil); cmd != nil {
		t.Fatal("waitForChange(nil) returned a command")
	}
}

func TestWaitForChangeClosedChannel(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	if msg := waitForChange(ch)(); msg != nil {
		t.Fatalf("closed channel produced %T, want nil", msg)
	}
}

func TestWatcherRelevant(t *testing.T) {
	w := &Watcher{base: "workflow-db.sqlite"}
	cases := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/s/workflow-db.sqlite", fsnotify.Write, true},
		{"/s/workflow-db.sqlite-wal", fsnotify.Write, true},
		{"/s/workflow-db.sqlite-journal", fsnotify.Create, true},
		{"/s/workflow-db.sqlite-shm", fsnotify.Write, false},
		{"/s/workflow-db.sqlite", fsnotify.Chmod, false},
		{"/s/settings.json", fsnotify.Write, false},
	}
	for _, tc := range cases {
		if got := w.relevant(fsnotify.Event{Name: tc.name, Op: tc.op}); got != tc.want {
			t.Errorf("relevant(%s %s) = %v, want %v", tc.name, tc.op, got, tc.want)
		}
	}
}
