package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima-cubes/engine/core"
)

// DefaultDebounce is how long a file has to stay quiet before a change is
// reported. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// AssetInfo describes a changed asset.
type AssetInfo struct {
	Path       string
	LastLoaded time.Time
}

type pendingChange struct {
	timer *time.Timer
}

// AssetWatcher watches a directory tree and reports created or modified
// files matching its extensions.
type AssetWatcher struct {
	extensions map[string]bool
	debounce   time.Duration

	mutex   sync.Mutex
	pending map[string]*pendingChange

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan AssetInfo
	wg       sync.WaitGroup
}

// NewAssetWatcher creates a watcher for files ending in one of extensions,
// for example ".toml". A non-positive debounce selects DefaultDebounce.
func NewAssetWatcher(debounce time.Duration, extensions ...string) (*AssetWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	aw := &AssetWatcher{
		extensions: make(map[string]bool, len(extensions)),
		debounce:   debounce,
		pending:    make(map[string]*pendingChange),
		fsnotify:   fsWatch,
		changes:    make(chan AssetInfo, 16),
		done:       make(chan struct{}),
	}
	for _, ext := range extensions {
		aw.extensions[ext] = true
	}
	return aw, nil
}

// Watch starts watching dir and every sub-directory.
func (aw *AssetWatcher) Watch(dir string) error {
	aw.mutex.Lock()
	closed := aw.isClosed
	aw.mutex.Unlock()
	if closed {
		return core.ErrAlreadyShutdown
	}

	if err := aw.watchRecursive(dir); err != nil {
		return err
	}

	aw.wg.Add(1)
	go aw.start()
	return nil
}

// Changes delivers one AssetInfo per settled change. The channel is closed
// by Close.
func (aw *AssetWatcher) Changes() <-chan AssetInfo {
	return aw.changes
}

// Close stops the watcher and closes the Changes channel.
func (aw *AssetWatcher) Close() error {
	aw.mutex.Lock()
	if aw.isClosed {
		aw.mutex.Unlock()
		return core.ErrAlreadyShutdown
	}
	aw.isClosed = true
	for path, p := range aw.pending {
		if p.timer.Stop() {
			aw.wg.Done()
		}
		delete(aw.pending, path)
	}
	close(aw.done)
	aw.mutex.Unlock()

	err := aw.fsnotify.Close()
	aw.wg.Wait()
	close(aw.changes)
	return err
}

func (aw *AssetWatcher) start() {
	defer aw.wg.Done()
	for {
		select {
		case e, ok := <-aw.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := aw.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch %s: %s", e.Name, err.Error())
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && aw.matches(e.Name) {
				aw.schedule(e.Name)
			}

		case err, ok := <-aw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-aw.done:
			return
		}
	}
}

// schedule (re)arms the debounce timer of path.
func (aw *AssetWatcher) schedule(path string) {
	aw.mutex.Lock()
	defer aw.mutex.Unlock()

	if aw.isClosed {
		return
	}
	if p, ok := aw.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(aw.debounce)
		return
	}
	p := &pendingChange{}
	aw.wg.Add(1)
	p.timer = time.AfterFunc(aw.debounce, func() {
		defer aw.wg.Done()
		aw.fire(path, p)
	})
	aw.pending[path] = p
}

func (aw *AssetWatcher) fire(path string, p *pendingChange) {
	aw.mutex.Lock()
	if aw.pending[path] != p {
		// Dropped by Close or superseded by a newer change.
		aw.mutex.Unlock()
		return
	}
	delete(aw.pending, path)
	aw.mutex.Unlock()

	select {
	case aw.changes <- AssetInfo{Path: path, LastLoaded: time.Now()}:
	case <-aw.done:
	}
}

func (aw *AssetWatcher) matches(path string) bool {
	return aw.extensions[filepath.Ext(path)]
}

// watchRecursive adds all directories under the given one to the watch list.
func (aw *AssetWatcher) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := aw.fsnotify.Add(walkPath); err != nil {
				if errors.Is(err, fsnotify.ErrClosed) {
					return core.ErrAlreadyShutdown
				}
				return err
			}
		}
		return nil
	})
}
