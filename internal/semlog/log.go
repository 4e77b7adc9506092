package semlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// logFile is the subset of *os.File the log writes through.
type logFile interface {
	io.Writer
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
	Sync() error
	Close() error
}

// Log is an append-only file of fact groups.
//
// Thread-safety: Append may be called from any goroutine. Each group is
// encoded up front and written with one Write call under the log's mutex,
// so concurrent appends never interleave partial records. A write that
// fails partway is truncated away before Append returns.
type Log struct {
	mu     sync.Mutex
	f      logFile
	path   string
	format Format
	sync   bool
	logger *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithFormat selects the serialization (default FormatTurtle).
func WithFormat(f Format) Option {
	return func(l *Log) {
		l.format = f
	}
}

// WithoutSync skips fsync after each append. Intended for tests.
func WithoutSync() Option {
	return func(l *Log) {
		l.sync = false
	}
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Open opens or creates the log file at path for appending.
// Existing content is preserved; new groups go after it.
func Open(path string, opts ...Option) (*Log, error) {
	l := &Log{
		path:   path,
		format: FormatTurtle,
		sync:   true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if _, err := ParseFormat(string(l.format)); err != nil {
		return nil, fmt.Errorf("open semantic log: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open semantic log: %w", err)
	}
	l.f = f

	return l, nil
}

// Path returns the file path of the log.
func (l *Log) Path() string {
	return l.path
}

// Format returns the serialization in use.
func (l *Log) Format() Format {
	return l.format
}

// Append durably writes one fact group.
// A partial write or failed sync reports the whole append as failed.
func (l *Log) Append(ctx context.Context, g FactGroup) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("append fact group: %w", err)
	}

	data, err := Encode(l.format, g)
	if err != nil {
		return fmt.Errorf("append fact group: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return fmt.Errorf("append fact group: %w", os.ErrClosed)
	}

	info, err := l.f.Stat()
	if err != nil {
		return fmt.Errorf("append fact group: stat: %w", err)
	}
	size := info.Size()

	n, err := l.f.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		if n > 0 {
			if terr := l.f.Truncate(size); terr != nil {
				l.logger.Error("semantic log left with a partial fact group",
					"path", l.path,
					"coordinate_id", g.CoordinateID,
					"error", terr,
				)
				return fmt.Errorf("append fact group: %w (truncate: %v)", err, terr)
			}
		}
		return fmt.Errorf("append fact group: %w", err)
	}

	if l.sync {
		if err := l.f.Sync(); err != nil {
			return fmt.Errorf("append fact group: sync: %w", err)
		}
	}

	l.logger.Debug("fact group appended",
		"coordinate_id", g.CoordinateID,
		"valence", g.Valence,
		"bytes", n,
	)
	return nil
}

// Close closes the underlying file. Further appends fail.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
