package logwriter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ferama/volumelog/internal/config"
	"github.com/ferama/volumelog/internal/metrics"
)

// FilesystemError reports a failed directory or file operation.
type FilesystemError struct {
	Op   string // mkdir | open | write | sync | close
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	// *fs.PathError already names the op and path
	var pathErr *fs.PathError
	if errors.As(e.Err, &pathErr) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// EnsureDirectory creates path and any missing parents.
// An existing directory is not an error.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// AppendEntry opens filePath for append, writes entry n and closes it again.
// The handle is never kept across calls.
func AppendEntry(filePath string, n int) (err error) {
	start := time.Now()
	defer func() {
		var op string
		if fsErr, ok := err.(*FilesystemError); ok {
			op = fsErr.Op
		}
		metrics.ObserveAppend(start, op)
	}()

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &FilesystemError{Op: "open", Path: filePath, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &FilesystemError{Op: "close", Path: filePath, Err: cerr}
		}
	}()

	if _, err := fmt.Fprintf(f, "Log entry %d\n", n); err != nil {
		return &FilesystemError{Op: "write", Path: filePath, Err: err}
	}
	if err := f.Sync(); err != nil {
		return &FilesystemError{Op: "sync", Path: filePath, Err: err}
	}
	return nil
}

// Writer appends a fixed number of paced entries to log.txt.
type Writer struct {
	dir      string
	file     string
	entries  int
	interval time.Duration

	logger *log.Logger
	out    io.Writer

	// sleep is swapped in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config, logger *log.Logger, out io.Writer) *Writer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		dir:      cfg.LogPath,
		file:     cfg.LogFile(),
		entries:  cfg.Entries,
		interval: cfg.Interval,
		logger:   logger,
		out:      out,
		sleep:    sleepCtx,
	}
}

// FilePath returns the path of the log file the writer appends to.
func (w *Writer) FilePath() string {
	return w.file
}

// Run creates the directory, appends every entry with a pause after each
// one (the last included) and then prints the completion line. Nothing is
// printed when an error is returned; entries already on disk are kept.
func (w *Writer) Run(ctx context.Context) (err error) {
	defer func() { metrics.ObserveRun(err) }()

	if err := EnsureDirectory(w.dir); err != nil {
		w.logger.Printf("cannot create log directory: %v", err)
		return err
	}

	for n := 1; n <= w.entries; n++ {
		if err := AppendEntry(w.file, n); err != nil {
			w.logger.Printf("entry %d failed: %v", n, err)
			return err
		}
		w.logger.Printf("entry %d appended to %s", n, w.file)

		if err := w.sleep(ctx, w.interval); err != nil {
			w.logger.Printf("interrupted after entry %d", n)
			return fmt.Errorf("interrupted after entry %d: %w", n, err)
		}
	}

	_, err = fmt.Fprintf(w.out, "Logs written to %s\n", w.file)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
