package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, size int, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestJanitor_Sweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uploads := t.TempDir()
	outputs := t.TempDir()

	touch(t, filepath.Join(uploads, "old.mp4"), 300, now.Add(-48*time.Hour))
	touch(t, filepath.Join(uploads, "fresh.mp4"), 100, now.Add(-time.Hour))
	touch(t, filepath.Join(outputs, "old.srt"), 20, now.Add(-25*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(outputs, "nested"), 0o755))
	require.NoError(t, os.Chtimes(filepath.Join(outputs, "nested"), now.Add(-72*time.Hour), now.Add(-72*time.Hour)))

	j := NewJanitor(24*time.Hour, nil, uploads, outputs, filepath.Join(t.TempDir(), "absent"))
	j.now = func() time.Time { return now }

	removed, freed := j.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, uint64(320), freed)

	assert.NoFileExists(t, filepath.Join(uploads, "old.mp4"))
	assert.FileExists(t, filepath.Join(uploads, "fresh.mp4"))
	assert.NoFileExists(t, filepath.Join(outputs, "old.srt"))
	assert.DirExists(t, filepath.Join(outputs, "nested"))
}

func TestJanitor_DisabledKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "ancient.txt"), 1, time.Unix(0, 0))

	removed, _ := NewJanitor(0, nil, dir).Sweep()
	assert.Zero(t, removed)
	assert.FileExists(t, filepath.Join(dir, "ancient.txt"))
}

func TestJanitor_StartRejectsBadSchedule(t *testing.T) {
	j := NewJanitor(time.Hour, nil, t.TempDir())
	assert.Error(t, j.Start("not a schedule"))

	require.NoError(t, j.Start("@every 1h"))
	<-j.Stop().Done()
}
