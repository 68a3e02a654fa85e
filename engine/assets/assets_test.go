package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/anima-cubes/engine/core"
)

func TestAssetWatcherReportsMatchingChanges(t *testing.T) {
	dir := t.TempDir()
	aw, err := NewAssetWatcher(20*time.Millisecond, ".toml")
	if err != nil {
		t.Fatal(err)
	}
	if err := aw.Watch(dir); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	scene := filepath.Join(dir, "scene.toml")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(scene, []byte("name = \"x\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case info := <-aw.Changes():
		if filepath.Base(info.Path) != "scene.toml" {
			t.Errorf("unexpected change %q", info.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case info := <-aw.Changes():
		t.Errorf("writes should be debounced into one change, got another for %q", info.Path)
	case <-time.After(200 * time.Millisecond):
	}

	if err := aw.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-aw.Changes(); ok {
		t.Error("Changes should be closed")
	}
	if err := aw.Close(); !errors.Is(err, core.ErrAlreadyShutdown) {
		t.Errorf("second close: %v", err)
	}
	if err := aw.Watch(dir); !errors.Is(err, core.ErrAlreadyShutdown) {
		t.Errorf("watch after close: %v", err)
	}
}

func TestAssetWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	aw, err := NewAssetWatcher(20*time.Millisecond, ".toml")
	if err != nil {
		t.Fatal(err)
	}
	defer aw.Close()
	if err := aw.Watch(dir); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "levels")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// give the watcher time to pick up the directory
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "one.toml"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case info := <-aw.Changes():
		if filepath.Base(info.Path) != "one.toml" {
			t.Errorf("unexpected change %q", info.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for nested file")
	}
}

func TestAssetWatcherMissingDirectory(t *testing.T) {
	aw, err := NewAssetWatcher(0, ".toml")
	if err != nil {
		t.Fatal(err)
	}
	defer aw.Close()
	if err := aw.Watch(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
