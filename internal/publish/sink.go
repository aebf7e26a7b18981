package publish

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Sink provides writable streams for published artifacts. A stream is
// complete only once closed; readers must never observe a half-written
// artifact.
type Sink interface {
	OpenWriter(name string) (io.WriteCloser, error)
}

// FileSink publishes artifacts as files in a directory. Writes go to a
// temp file first and are renamed into place on Close, so each artifact
// is always either the previous complete version or the new one.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create publish directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) OpenWriter(name string) (io.WriteCloser, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate temp file suffix: %w", err)
	}

	final := filepath.Join(s.dir, name)
	tmp := final + ".tmp." + suffix

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open temp file for %q: %w", name, err)
	}
	return &atomicFile{f: f, tmp: tmp, final: final}, nil
}

type atomicFile struct {
	f     *os.File
	tmp   string
	final string
}

func (a *atomicFile) Write(p []byte) (int, error) {
	return a.f.Write(p)
}

func (a *atomicFile) Close() error {
	if err := a.f.Sync(); err != nil {
		a.f.Close()
		os.Remove(a.tmp)
		return fmt.Errorf("failed to sync %q: %w", a.tmp, err)
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.tmp)
		return fmt.Errorf("failed to close %q: %w", a.tmp, err)
	}
	if err := os.Rename(a.tmp, a.final); err != nil {
		os.Remove(a.tmp)
		return fmt.Errorf("failed to move %q into place: %w", a.tmp, err)
	}
	return nil
}
