package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocalWriteAndRead(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := WriteBytes(ctx, s, "voices/ryan/audio.wav", []byte("RIFF")); err != nil {
		t.Fatal(err)
	}
	got, err := ReadBytes(ctx, s, "voices/ryan/audio.wav")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "RIFF" {
		t.Fatalf("got %q, want %q", got, "RIFF")
	}
}

func TestLocalReadNotExist(t *testing.T) {
	s := newTestLocal(t)
	_, err := s.Read(context.Background(), "no-such-file")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLocalExistsAndDelete(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "tmp")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	if err := WriteBytes(ctx, s, "tmp", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "tmp"); !ok {
		t.Fatal("expected true for existing file")
	}
	if err := s.Delete(ctx, "tmp"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "tmp"); ok {
		t.Fatal("file should be gone after delete")
	}
	// Delete again is fine.
	if err := s.Delete(ctx, "tmp"); err != nil {
		t.Fatal(err)
	}
}

func TestLocalDeletePrefix(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	WriteBytes(ctx, s, "voices/a/audio.wav", []byte("a"))
	WriteBytes(ctx, s, "voices/a/embedding.npy", []byte("b"))
	WriteBytes(ctx, s, "voices/b/audio.wav", []byte("c"))

	if err := s.DeletePrefix(ctx, "voices/a"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "voices/a/audio.wav"); ok {
		t.Error("voices/a survived")
	}
	if ok, _ := s.Exists(ctx, "voices/b/audio.wav"); !ok {
		t.Error("voices/b was removed")
	}
}

func TestLocalRejectsEscape(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for _, p := range []string{"../outside", "a/../../b", "", "/"} {
		if _, err := s.Write(ctx, p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Write(%q) error = %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestLocalWriteTruncates(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	WriteBytes(ctx, s, "f", []byte("long content here"))
	WriteBytes(ctx, s, "f", []byte("short"))

	r, err := s.Read(ctx, "f")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "short" {
		t.Fatalf("got %q, want %q", got, "short")
	}
}

func TestNewLocalCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatal("expected directory")
	}
}

func TestFetchLocal(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	WriteBytes(ctx, s, "uploads/ref.wav", []byte("RIFF"))

	p, release, err := Fetch(ctx, s, "uploads/ref.wav")
	if err != nil {
		t.Fatal(err)
	}
	defer release()
	if p != filepath.Join(s.Root(), "uploads", "ref.wav") {
		t.Errorf("Fetch() = %q", p)
	}

	if _, _, err := Fetch(ctx, s, "uploads/none.wav"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Fetch(missing) error = %v", err)
	}
}

func TestCopyFile(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "src.wav")
	os.WriteFile(src, []byte("data"), 0o644)
	if err := CopyFile(ctx, s, "voices/x/audio.wav", src); err != nil {
		t.Fatal(err)
	}
	got, _ := ReadBytes(ctx, s, "voices/x/audio.wav")
	if string(got) != "data" {
		t.Errorf("got %q", got)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.wav":         "audio/wav",
		"a/B.WAV":       "audio/wav",
		"meta.json":     "application/json",
		"embedding.npy": "application/octet-stream",
		"speech.pcm":    "audio/L16",
		"noext":         "application/octet-stream",
	}
	for p, want := range tests {
		if got := ContentType(p); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", p, got, want)
		}
	}
}
