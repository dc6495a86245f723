package xfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-vision/zoocard/internal/xfs"
)

func TestFindMarkdown(t *testing.T) {
	root := t.TempDir()

	files := []string{
		"configs/coco/vitpose_coco.md",
		"configs/coco/vitpose_coco.yml",
		"configs/crowdpose/README.MD",
		"configs/crowdpose/coco_template.md",
		".github/pull_request.md",
		"notes.md",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# doc\n"), 0o644))
	}

	paths, err := xfs.FindMarkdown(root, []string{"*_template.md"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"configs/coco/vitpose_coco.md",
		"configs/crowdpose/README.MD",
		"notes.md",
	}, paths)
}

func TestFindMarkdown_ExcludesByRelativePath(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"keep/a.md", "skip/b.md"} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}

	paths, err := xfs.FindMarkdown(root, []string{"skip/*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep/a.md"}, paths)
}

func TestFindMarkdown_MissingRoot(t *testing.T) {
	_, err := xfs.FindMarkdown(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, err)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "zoo"), xfs.ExpandTilde("~/zoo"))
	assert.Equal(t, "/srv/zoo", xfs.ExpandTilde("/srv/zoo"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0o644))

	assert.True(t, xfs.FileExists(file))
	assert.False(t, xfs.FileExists(dir))
	assert.False(t, xfs.FileExists(filepath.Join(dir, "missing.md")))
}
