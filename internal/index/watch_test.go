package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeWatcher_Relevant(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "LICENSE"), []byte("MIT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "card.md"), []byte("# card\n"), 0o644))
	subdir := filepath.Join(root, "coco")
	require.NoError(t, os.MkdirAll(subdir, 0o755))

	tw, err := NewTreeWatcher([]string{root}, func() {})
	require.NoError(t, err)
	defer tw.Close()

	// extensionless regular files must not trigger rebuilds
	assert.False(t, tw.relevant(fsnotify.Event{Name: filepath.Join(root, "LICENSE"), Op: fsnotify.Write}))

	assert.True(t, tw.relevant(fsnotify.Event{Name: filepath.Join(root, "card.md"), Op: fsnotify.Write}))
	assert.True(t, tw.relevant(fsnotify.Event{Name: filepath.Join(root, "CARD.MD"), Op: fsnotify.Create}))
	assert.True(t, tw.relevant(fsnotify.Event{Name: subdir, Op: fsnotify.Create}))

	// directory events matter for any op
	assert.True(t, tw.relevant(fsnotify.Event{Name: subdir, Op: fsnotify.Remove}))

	// a removed unrelated file does not
	assert.False(t, tw.relevant(fsnotify.Event{Name: filepath.Join(root, "notes.txt"), Op: fsnotify.Remove}))

	assert.False(t, tw.relevant(fsnotify.Event{Name: filepath.Join(root, "card.md"), Op: fsnotify.Chmod}))
}
