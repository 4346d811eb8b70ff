package artifact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}
var errNotFound = &apiError{code: "NotFound", msg: "not found"}

// mockS3 is a thread-safe in-memory S3 backend for testing.
type mockS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string

	putErr error
	getErr error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte), contentTypes: make(map[string]string)}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	m.contentTypes[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, errNotFound
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (m *mockS3) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestS3WriteAndRead(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "bucket", "qwentts/")
	ctx := context.Background()

	if err := WriteBytes(ctx, store, "voices/ryan/audio.wav", []byte("RIFF")); err != nil {
		t.Fatal(err)
	}
	if keys := mock.keys(); len(keys) != 1 || keys[0] != "qwentts/voices/ryan/audio.wav" {
		t.Fatalf("keys = %v", keys)
	}
	if ct := mock.contentTypes["qwentts/voices/ryan/audio.wav"]; ct != "audio/wav" {
		t.Errorf("content type = %q", ct)
	}

	got, err := ReadBytes(ctx, store, "voices/ryan/audio.wav")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "RIFF" {
		t.Fatalf("got %q", got)
	}
}

func TestS3ReadNotFound(t *testing.T) {
	store := NewS3(newMockS3(), "bucket", "")
	_, err := store.Read(context.Background(), "missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestS3ReadOtherError(t *testing.T) {
	mock := newMockS3()
	mock.getErr = &apiError{code: "AccessDenied", msg: "denied"}
	_, err := NewS3(mock, "bucket", "").Read(context.Background(), "x")
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestS3WriteUploadError(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("upload failed")
	err := WriteBytes(context.Background(), NewS3(mock, "bucket", ""), "x", []byte("data"))
	if err == nil {
		t.Fatal("expected upload error")
	}
}

func TestS3Exists(t *testing.T) {
	store := NewS3(newMockS3(), "bucket", "")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "a")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	WriteBytes(ctx, store, "a", []byte("x"))
	ok, err = store.Exists(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Exists(a) = %v, %v", ok, err)
	}
}

func TestS3DeletePrefix(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "bucket", "p")
	ctx := context.Background()

	WriteBytes(ctx, store, "voices/a/audio.wav", []byte("1"))
	WriteBytes(ctx, store, "voices/a/embedding.npy", []byte("2"))
	WriteBytes(ctx, store, "voices/ab/audio.wav", []byte("3"))

	if err := store.DeletePrefix(ctx, "voices/a"); err != nil {
		t.Fatal(err)
	}
	if keys := mock.keys(); len(keys) != 1 || keys[0] != "p/voices/ab/audio.wav" {
		t.Errorf("keys = %v", keys)
	}
}

func TestS3Fetch(t *testing.T) {
	store := NewS3(newMockS3(), "bucket", "")
	ctx := context.Background()
	WriteBytes(ctx, store, "uploads/ref.wav", []byte("RIFF"))

	p, release, err := Fetch(ctx, store, "uploads/ref.wav")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "RIFF" {
		t.Fatalf("fetched %q, %v", data, err)
	}
	release()
	if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
		t.Error("release did not remove the temp file")
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Config{Bucket: "b", Endpoint: "http://localhost:9000", UsePathStyle: true})
	if c == nil {
		t.Fatal("nil client")
	}
	var _ S3Client = c
}
