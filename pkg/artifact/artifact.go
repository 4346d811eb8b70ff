// Package artifact stores the files the tools produce and keep around:
// generated audio, uploaded reference recordings and saved voice assets.
//
// A Store is backed by a local directory or by an S3 compatible bucket.
// Paths are forward-slash separated and relative to the store root, for
// example "voices/ryan_clone/audio.wav".
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ErrInvalidPath is returned for paths that are empty or escape the root.
var ErrInvalidPath = errors.New("artifact: invalid path")

// Store is a minimal interface for file-oriented storage.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating an existing one.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// DeletePrefix removes every file under the directory prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// Localizer is implemented by stores whose files live on the local disk.
type Localizer interface {
	// LocalPath returns the filesystem path of a stored file.
	LocalPath(path string) (string, error)
}

// CleanPath normalizes a store path and rejects paths leaving the root.
func CleanPath(p string) (string, error) {
	slashed := strings.ReplaceAll(p, "\\", "/")
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	c := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if c == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return c, nil
}

// ContentType guesses the MIME type of a stored file from its extension.
func ContentType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".pcm":
		return "audio/L16"
	}
	return "application/octet-stream"
}

// WriteBytes stores data at path.
func WriteBytes(ctx context.Context, s Store, path string, data []byte) error {
	w, err := s.Write(ctx, path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	return nil
}

// ReadBytes loads the file at path.
func ReadBytes(ctx context.Context, s Store, path string) ([]byte, error) {
	r, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	return data, nil
}

// CopyFile stores the local file src at path.
func CopyFile(ctx context.Context, s Store, path, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("artifact: open %s: %w", src, err)
	}
	defer f.Close()

	w, err := s.Write(ctx, path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("artifact: copy %s: %w", src, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("artifact: copy %s: %w", src, err)
	}
	return nil
}

// Fetch returns a local filesystem path holding the stored file. Local
// stores return the file itself; other stores download into a temporary
// file that release removes. release is never nil.
func Fetch(ctx context.Context, s Store, name string) (local string, release func(), err error) {
	release = func() {}
	if l, ok := s.(Localizer); ok {
		p, err := l.LocalPath(name)
		if err != nil {
			return "", release, err
		}
		if _, err := os.Stat(p); err != nil {
			return "", release, fmt.Errorf("artifact: fetch %s: %w", name, err)
		}
		return p, release, nil
	}

	r, err := s.Read(ctx, name)
	if err != nil {
		return "", release, err
	}
	defer r.Close()

	f, err := os.CreateTemp("", "artifact-*"+path.Ext(name))
	if err != nil {
		return "", release, fmt.Errorf("artifact: fetch %s: %w", name, err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", release, fmt.Errorf("artifact: fetch %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", release, fmt.Errorf("artifact: fetch %s: %w", name, err)
	}
	return tmp, func() { os.Remove(tmp) }, nil
}
