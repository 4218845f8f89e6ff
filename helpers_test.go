package filecrypt

import (
	"bytes"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"testing"

	"github.com/absfs/memfs"
	"github.com/stretchr/testify/require"
)

// newMemFileManager returns a FileManager over a fresh in-memory filesystem
func newMemFileManager(t testing.TB) *FileManager {
	t.Helper()
	mfs, err := memfs.NewFS()
	require.NoError(t, err)
	fm, err := NewFileManager(mfs)
	require.NoError(t, err)
	return fm
}

// testKey returns a KeySize key filled with b
func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, KeySize)
}

func newTestEngine(t testing.TB, suite CipherSuite) *CipherEngine {
	t.Helper()
	e, err := NewCipherEngineWithKey(testKey(0x42), suite)
	require.NoError(t, err)
	return e
}

// faultyFM is an in-memory BinaryFileManager that fails chosen operations.
// Failures are keyed by "op path", for example "delete /a.txt".
type faultyFM struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  map[string]error
	calls []string
}

func newFaultyFM() *faultyFM {
	return &faultyFM{
		files: make(map[string][]byte),
		fail:  make(map[string]error),
	}
}

func (f *faultyFM) failOn(op, path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op+" "+path] = err
}

func (f *faultyFM) record(op, path string) error {
	f.calls = append(f.calls, op+" "+path)
	return f.fail[op+" "+path]
}

func (f *faultyFM) Read(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("read", path); err != nil {
		return nil, err
	}
	data, ok := f.files[path]
	if !ok {
		return nil, NewNotFoundError(path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (f *faultyFM) Write(path string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("write", path); err != nil {
		return err
	}
	f.files[path] = append([]byte(nil), content...)
	return nil
}

func (f *faultyFM) Append(path string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("append", path); err != nil {
		return err
	}
	f.files[path] = append(f.files[path], content...)
	return nil
}

func (f *faultyFM) ExclusiveAppend(path string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("exclusive-append", path); err != nil {
		return err
	}
	if _, ok := f.files[path]; ok {
		return NewIOError("exclusive-append", path, fs.ErrExist)
	}
	f.files[path] = append([]byte(nil), content...)
	return nil
}

func (f *faultyFM) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete", path); err != nil {
		return err
	}
	if _, ok := f.files[path]; !ok {
		return NewNotFoundError(path, fs.ErrNotExist)
	}
	delete(f.files, path)
	return nil
}

func (f *faultyFM) Move(path, destination string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("move", path); err != nil {
		return err
	}
	data, ok := f.files[path]
	if !ok {
		return NewNotFoundError(path, fs.ErrNotExist)
	}
	delete(f.files, path)
	f.files[destination] = data
	return nil
}

func (f *faultyFM) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}

func (f *faultyFM) get(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path]
}

func (f *faultyFM) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// zeroReader yields an endless stream of one byte value
type zeroReader byte

func (z zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(z)
	}
	return len(p), nil
}

// failingReader always fails
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("entropy source unavailable")
}

var _ BinaryFileManager = (*faultyFM)(nil)
