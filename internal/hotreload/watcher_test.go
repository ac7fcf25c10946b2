package hotreload

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestWatcher_AddRemove(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "a: 1")
	writeFile(t, b, "b: 1")

	if err := w.Add(a); err != nil {
		t.Fatalf("Add(a) failed: %v", err)
	}
	if err := w.Add(b); err != nil {
		t.Fatalf("Add(b) failed: %v", err)
	}
	if err := w.Add(a); err != nil {
		t.Fatalf("adding the same path twice should be a no-op: %v", err)
	}
	if got := len(w.Paths()); got != 2 {
		t.Fatalf("Paths() = %d entries, want 2", got)
	}
	if w.dirs[dir] != 2 {
		t.Errorf("directory refcount = %d, want 2", w.dirs[dir])
	}

	if err := w.Remove(a); err != nil {
		t.Fatalf("Remove(a) failed: %v", err)
	}
	if err := w.Remove(a); err == nil {
		t.Error("expected error removing an unwatched path")
	}
	if err := w.Remove(b); err != nil {
		t.Fatalf("Remove(b) failed: %v", err)
	}
	if _, ok := w.dirs[dir]; ok {
		t.Error("directory should be unwatched once no files remain")
	}
}

func TestWatcher_ReportsWatchedFileOnly(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	other := filepath.Join(dir, "other.yaml")
	writeFile(t, target, "app: {}")

	if err := w.Add(target); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	w.Start()
	if !w.IsWatching() {
		t.Fatal("watcher should be running")
	}

	writeFile(t, other, "ignored")
	writeFile(t, filepath.Join(dir, ".config.yaml.swp"), "ignored")
	writeFile(t, target, "app: {title: changed}")

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path != target {
				t.Fatalf("unexpected event for %s", ev.Path)
			}
			return
		case <-timeout:
			t.Fatal("timed out waiting for an event on the watched file")
		}
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop()

	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed after Stop")
	}
	if w.IsWatching() {
		t.Error("watcher should not be running after Stop")
	}
}

func TestIsTemporary(t *testing.T) {
	tests := map[string]bool{
		"config.yaml":         false,
		"config.yaml.swp":     true,
		"/tmp/x/config.tmp":   true,
		".config.yaml":        true,
		"config.yaml~":        true,
		"/etc/app/config.yml": false,
	}
	for path, want := range tests {
		if got := isTemporary(path); got != want {
			t.Errorf("isTemporary(%q) = %v, want %v", path, got, want)
		}
	}
}
