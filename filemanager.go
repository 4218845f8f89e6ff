package filecrypt

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/absfs/absfs"
)

// BinaryFileManager is the storage collaborator used by SaltStore and
// FileEncryptor. Implementations must report a missing path from Read as a
// *ResourceNotFoundError.
type BinaryFileManager interface {
	// Read returns the full contents of path
	Read(path string) ([]byte, error)

	// Write creates or overwrites path with content
	Write(path string, content []byte) error

	// Append adds content to the end of path, creating it if needed
	Append(path string, content []byte) error

	// ExclusiveAppend creates path with content and fails if it already exists
	ExclusiveAppend(path string, content []byte) error

	// Delete removes path
	Delete(path string) error

	// Move renames path to destination
	Move(path, destination string) error
}

// FileManager implements BinaryFileManager on top of an absfs.FileSystem
type FileManager struct {
	fs   absfs.FileSystem
	perm os.FileMode
}

// NewFileManager creates a file manager over the given filesystem
func NewFileManager(filesystem absfs.FileSystem) (*FileManager, error) {
	if filesystem == nil {
		return nil, fmt.Errorf("base filesystem cannot be nil")
	}
	return &FileManager{fs: filesystem, perm: 0600}, nil
}

// FileSystem returns the underlying filesystem
func (m *FileManager) FileSystem() absfs.FileSystem {
	return m.fs
}

// Read reads the whole file at name
func (m *FileManager) Read(name string) ([]byte, error) {
	if err := ValidateFilePath(name); err != nil {
		return nil, err
	}
	f, err := m.fs.Open(name)
	if err != nil {
		return nil, classify("read", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", name, err)
	}
	return data, nil
}

// Write creates or truncates name and writes content to it
func (m *FileManager) Write(name string, content []byte) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if err := m.ensureDir(name); err != nil {
		return err
	}
	f, err := m.fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, m.perm)
	if err != nil {
		return NewIOError("write", name, err)
	}
	return writeAndClose("write", name, f, content)
}

// Append writes content after the current end of name
func (m *FileManager) Append(name string, content []byte) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if err := m.ensureDir(name); err != nil {
		return err
	}
	f, err := m.fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_APPEND, m.perm)
	if err != nil {
		return NewIOError("append", name, err)
	}
	// Not every absfs backend honours O_APPEND
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return NewIOError("append", name, err)
	}
	return writeAndClose("append", name, f, content)
}

// ExclusiveAppend creates name with content, failing if name already exists
func (m *FileManager) ExclusiveAppend(name string, content []byte) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if _, err := m.fs.Stat(name); err == nil {
		return NewIOError("exclusive-append", name, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist})
	} else if !isNotExist(err) {
		return NewIOError("exclusive-append", name, err)
	}
	if err := m.ensureDir(name); err != nil {
		return err
	}
	f, err := m.fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, m.perm)
	if err != nil {
		return NewIOError("exclusive-append", name, err)
	}
	return writeAndClose("exclusive-append", name, f, content)
}

// Delete removes name
func (m *FileManager) Delete(name string) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if err := m.fs.Remove(name); err != nil {
		return classify("delete", name, err)
	}
	return nil
}

// Move renames name to destination
func (m *FileManager) Move(name, destination string) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if err := ValidateFilePath(destination); err != nil {
		return err
	}
	if err := m.ensureDir(destination); err != nil {
		return err
	}
	if err := m.fs.Rename(name, destination); err != nil {
		return classify("move", name, err)
	}
	return nil
}

// ensureDir creates the parent directory of name if it is missing
func (m *FileManager) ensureDir(name string) error {
	dir := path.Dir(name)
	if dir == "/" || dir == "." {
		return nil
	}
	if _, err := m.fs.Stat(dir); err == nil {
		return nil
	}
	if err := m.fs.MkdirAll(dir, 0700); err != nil {
		return NewIOError("mkdir", dir, err)
	}
	return nil
}

func writeAndClose(op, name string, f absfs.File, content []byte) error {
	if _, err := f.Write(content); err != nil {
		f.Close()
		return NewIOError(op, name, err)
	}
	if err := f.Close(); err != nil {
		return NewIOError(op, name, err)
	}
	return nil
}

// classify maps a missing path to ResourceNotFoundError and anything else
// to IOError
func classify(op, name string, err error) error {
	if isNotExist(err) {
		return NewNotFoundError(name, err)
	}
	return NewIOError(op, name, err)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}
