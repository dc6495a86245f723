package index

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TreeWatcher watches the docs subtrees and triggers a rebuild callback
// when markdown files change.
type TreeWatcher struct {
	watcher   *fsnotify.Watcher
	onChange  func()
	debounce  time.Duration
	closeOnce chan struct{}
}

// NewTreeWatcher watches every directory under the given roots. onChange
// fires debounced after markdown or directory changes.
func NewTreeWatcher(roots []string, onChange func()) (*TreeWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	tw := &TreeWatcher{
		watcher:   watcher,
		onChange:  onChange,
		debounce:  500 * time.Millisecond,
		closeOnce: make(chan struct{}),
	}

	for _, root := range roots {
		if err := tw.addTree(root); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go tw.watch()

	return tw, nil
}

// addTree registers root and all its subdirectories.
func (tw *TreeWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return tw.watcher.Add(path)
	})
}

func (tw *TreeWatcher) watch() {
	var timer *time.Timer

	for {
		select {
		case <-tw.closeOnce:
			return

		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}

			// new directories need their own watch before their files
			// produce events
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = tw.addTree(event.Name)
				}
			}

			if !tw.relevant(event) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(tw.debounce, tw.onChange)

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Tree watcher error", "error", err)
		}
	}
}

// relevant filters events down to markdown and directory changes, so
// writes to unrelated files (a LICENSE, an image) never trigger a
// rebuild.
func (tw *TreeWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return true
	}

	if info, err := os.Stat(event.Name); err == nil {
		return info.IsDir()
	}

	// the path is gone; it matters only if it was a watched directory
	for _, dir := range tw.watcher.WatchList() {
		if dir == event.Name {
			return true
		}
	}
	return false
}

// Close stops the watcher.
func (tw *TreeWatcher) Close() error {
	close(tw.closeOnce)
	return tw.watcher.Close()
}
