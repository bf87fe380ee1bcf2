package logwriter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ferama/volumelog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.LogPath = dir
	cfg.Interval = time.Millisecond
	return cfg
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestEnsureDirectoryCreatesParents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "logs")

	require.NoError(t, EnsureDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDirectoryIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, EnsureDirectory(dir))
	require.NoError(t, EnsureDirectory(dir))
}

func TestEnsureDirectoryOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := EnsureDirectory(path)

	var fsErr *FilesystemError
	require.True(t, errors.As(err, &fsErr), "expected FilesystemError, got %v", err)
	assert.Equal(t, "mkdir", fsErr.Op)
	assert.Equal(t, path, fsErr.Path)
	assert.Equal(t, "mkdir "+path+": not a directory", err.Error())
}

func TestFilesystemErrorWithoutPathError(t *testing.T) {
	err := &FilesystemError{Op: "close", Path: "/logs/log.txt", Err: errors.New("disk gone")}

	assert.Equal(t, "close /logs/log.txt: disk gone", err.Error())
}

func TestAppendEntry(t *testing.T) {
	file := filepath.Join(t.TempDir(), "log.txt")

	require.NoError(t, AppendEntry(file, 1))
	require.NoError(t, AppendEntry(file, 2))

	assert.Equal(t, []string{"Log entry 1", "Log entry 2"}, readLines(t, file))
}

func TestAppendEntryMissingDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing", "log.txt")

	err := AppendEntry(file, 1)

	var fsErr *FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, "open", fsErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunWritesEntriesAndReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var out bytes.Buffer

	w := New(testConfig(dir), nil, &out)
	require.NoError(t, w.Run(context.Background()))

	file := filepath.Join(dir, "log.txt")
	assert.Equal(t, file, w.FilePath())
	assert.Equal(t, []string{
		"Log entry 1",
		"Log entry 2",
		"Log entry 3",
		"Log entry 4",
		"Log entry 5",
	}, readLines(t, file))
	assert.Equal(t, "Logs written to "+file+"\n", out.String())
}

func TestRunTwiceAppends(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	require.NoError(t, New(cfg, nil, &bytes.Buffer{}).Run(context.Background()))
	require.NoError(t, New(cfg, nil, &bytes.Buffer{}).Run(context.Background()))

	lines := readLines(t, cfg.LogFile())
	require.Len(t, lines, 10)
	assert.Equal(t, "Log entry 5", lines[4])
	assert.Equal(t, "Log entry 1", lines[5])
	assert.Equal(t, "Log entry 5", lines[9])
}

func TestRunPausesAfterEveryEntry(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Interval = time.Second

	w := New(cfg, nil, &bytes.Buffer{})
	var pauses []time.Duration
	w.sleep = func(ctx context.Context, d time.Duration) error {
		lines := readLines(t, cfg.LogFile())
		assert.Len(t, lines, len(pauses)+1, "entry must be on disk before the pause")
		pauses = append(pauses, d)
		return nil
	}

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second, time.Second, time.Second}, pauses)
}

func TestRunDirectoryBlocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	var out bytes.Buffer

	err := New(testConfig(path), nil, &out).Run(context.Background())

	var fsErr *FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, "mkdir", fsErr.Op)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRunInterruptedKeepsWrittenEntries(t *testing.T) {
	cfg := testConfig(t.TempDir())
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(cfg, nil, &out)
	calls := 0
	w.sleep = func(ctx context.Context, d time.Duration) error {
		calls++
		if calls == 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := w.Run(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"Log entry 1", "Log entry 2"}, readLines(t, cfg.LogFile()))
	assert.Empty(t, out.String())
}
