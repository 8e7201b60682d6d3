package workspace

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/vidpipe/internal/domain"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	return NewManager(root, filepath.Join(root, "cache")), root
}

func TestResolve(t *testing.T) {
	m, root := newTestManager(t)
	ts := time.UnixMilli(1700000000123)

	t.Run("managed path", func(t *testing.T) {
		got := m.Resolve("car-42", "", ts)
		assert.Equal(t, filepath.Join(root, "postProcess", "car-42", "1700000000123"), got)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, m.Resolve("car-42", "", ts), m.Resolve("car-42", "", ts))
	})

	t.Run("same id different start times", func(t *testing.T) {
		assert.NotEqual(t, m.Resolve("car-42", "", ts), m.Resolve("car-42", "", ts.Add(time.Millisecond)))
	})

	t.Run("override wins", func(t *testing.T) {
		assert.Equal(t, "/sdcard/Download/process", m.Resolve("car-42", "/sdcard/Download/process", ts))
	})
}

func TestPrepare(t *testing.T) {
	m, root := newTestManager(t)
	path := filepath.Join(root, "postProcess", "a", "1")

	created, err := m.Prepare(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.DirExists(t, path)

	created, err = m.Prepare(path)
	require.NoError(t, err)
	assert.False(t, created, "second prepare is idempotent")

	file := filepath.Join(root, "regular")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = m.Prepare(file)
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	m, root := newTestManager(t)
	path := filepath.Join(root, "postProcess", "a", "1")
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "image_001.jpg"), []byte("jpg"), 0644))

	assert.True(t, m.Cleanup(path))
	assert.NoDirExists(t, path)

	assert.True(t, m.Cleanup(path), "removing a missing path succeeds")
	assert.False(t, m.Cleanup(""))
}

func TestTransformFile(t *testing.T) {
	m, root := newTestManager(t)
	assert.Equal(t, filepath.Join(root, "cache", "transforms.trf"), m.TransformFile())
	require.NoError(t, m.PrepareCache())
	assert.DirExists(t, filepath.Join(root, "cache"))
}

func TestManaged(t *testing.T) {
	m, root := newTestManager(t)

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "postProcess", "a", "1"), true},
		{filepath.Join(root, "postProcess", "a"), true},
		{filepath.Join(root, "postProcess"), false},
		{filepath.Join(root, "postProcess", "..", "etc"), false},
		{filepath.Join(root, "other"), false},
		{"/tmp/frames", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Managed(tt.path))
		})
	}
}

func TestDeleteFrameFolder(t *testing.T) {
	m, root := newTestManager(t)

	managed := filepath.Join(root, "postProcess", "a", "1")
	outside := filepath.Join(root, "frames")
	require.NoError(t, os.MkdirAll(managed, 0755))
	require.NoError(t, os.MkdirAll(outside, 0755))

	assert.False(t, m.DeleteFrameFolder(outside))
	assert.DirExists(t, outside)

	assert.True(t, m.DeleteFrameFolder(managed))
	assert.NoDirExists(t, managed)
}

func TestDeleteAll(t *testing.T) {
	m, root := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "postProcess", "a", "1"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "postProcess", "b", "2"), 0755))

	assert.True(t, m.DeleteAll())
	assert.NoDirExists(t, filepath.Join(root, "postProcess"))
}

func TestPurgeOlderThan(t *testing.T) {
	m, root := newTestManager(t)
	now := time.UnixMilli(1700000000000)

	old := m.Resolve("a", "", now.Add(-48*time.Hour))
	fresh := m.Resolve("a", "", now.Add(-time.Hour))
	lone := m.Resolve("b", "", now.Add(-72*time.Hour))
	for _, p := range []string{old, fresh, lone} {
		require.NoError(t, os.MkdirAll(p, 0755))
	}

	named := filepath.Join(root, "postProcess", "c", "custom")
	require.NoError(t, os.MkdirAll(named, 0755))
	require.NoError(t, os.Chtimes(named, now.Add(-48*time.Hour), now.Add(-48*time.Hour)))

	removed, err := m.PurgeOlderThan(24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	assert.NoDirExists(t, old)
	assert.DirExists(t, fresh)
	assert.NoDirExists(t, lone)
	assert.NoDirExists(t, filepath.Join(root, "postProcess", "b"), "empty job dir is dropped")
	assert.NoDirExists(t, named)
}

func TestPurgeOlderThan_NoNamespace(t *testing.T) {
	m, _ := newTestManager(t)
	removed, err := m.PurgeOlderThan(time.Hour, time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestResolveTimestampRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ts := time.Now()
	name := filepath.Base(m.Resolve("x", "", ts))
	ms, err := strconv.ParseInt(name, 10, 64)
	require.NoError(t, err)
	assert.Equal(t, ts.UnixMilli(), ms)
}

func TestRemoveFile(t *testing.T) {
	m, root := newTestManager(t)

	file := filepath.Join(root, "out.mp4")
	require.NoError(t, os.WriteFile(file, []byte("partial"), 0644))
	assert.True(t, m.RemoveFile(file))
	assert.NoFileExists(t, file)

	assert.True(t, m.RemoveFile(file), "already gone counts as removed")
	assert.False(t, m.RemoveFile(""))

	dir := filepath.Join(root, "videos")
	require.NoError(t, os.MkdirAll(dir, 0755))
	precious := filepath.Join(dir, "precious.mp4")
	require.NoError(t, os.WriteFile(precious, []byte("keep"), 0644))
	assert.False(t, m.RemoveFile(dir))
	assert.FileExists(t, precious)
}

func TestCheckOutputFile(t *testing.T) {
	_, root := newTestManager(t)
	file := filepath.Join(root, "out.mp4")
	require.NoError(t, os.WriteFile(file, []byte("old"), 0644))

	assert.NoError(t, CheckOutputFile(filepath.Join(root, "new.mp4")))
	assert.NoError(t, CheckOutputFile(file), "existing files are overwritten")
	assert.ErrorIs(t, CheckOutputFile(root), domain.ErrInvalidRequest)
}
