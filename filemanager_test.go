package filecrypt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
	"github.com/absfs/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileManagerBackends(t *testing.T) map[string]func(t *testing.T) *FileManager {
	return map[string]func(t *testing.T) *FileManager{
		"memfs": func(t *testing.T) *FileManager {
			return newMemFileManager(t)
		},
		"osfs": func(t *testing.T) *FileManager {
			return newDiskFileManager(t, t.TempDir())
		},
	}
}

func TestFileManager(t *testing.T) {
	for name, newFM := range fileManagerBackends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("write then read", func(t *testing.T) {
				fm := newFM(t)
				require.NoError(t, fm.Write("a.bin", []byte{0x00, 0x01, 0xFF}))

				got, err := fm.Read("a.bin")
				require.NoError(t, err)
				assert.Equal(t, []byte{0x00, 0x01, 0xFF}, got)
			})

			t.Run("write truncates", func(t *testing.T) {
				fm := newFM(t)
				require.NoError(t, fm.Write("a", []byte("a much longer first version")))
				require.NoError(t, fm.Write("a", []byte("short")))

				got, err := fm.Read("a")
				require.NoError(t, err)
				assert.Equal(t, "short", string(got))
			})

			t.Run("write creates parent directories", func(t *testing.T) {
				fm := newFM(t)
				require.NoError(t, fm.Write("x/y/z.txt", []byte("deep")))

				got, err := fm.Read("x/y/z.txt")
				require.NoError(t, err)
				assert.Equal(t, "deep", string(got))
			})

			t.Run("read missing", func(t *testing.T) {
				fm := newFM(t)
				_, err := fm.Read("missing.enc")
				require.Error(t, err)
				assert.True(t, IsNotFound(err))
				assert.ErrorIs(t, err, ErrNotFound)

				var nf *ResourceNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "missing.enc", nf.Path)
			})

			t.Run("append", func(t *testing.T) {
				fm := newFM(t)
				require.NoError(t, fm.Append("log", []byte("one,")))
				require.NoError(t, fm.Append("log", []byte("two,")))
				require.NoError(t, fm.Append("log", []byte("three")))

				got, err := fm.Read("log")
				require.NoError(t, err)
				assert.Equal(t, "one,two,three", string(got))
			})

			t.Run("exclusive append", func(t *testing.T) {
				fm := newFM(t)
				require.NoError(t, fm.ExclusiveAppend("lock", []byte("owner")))

				err := fm.ExclusiveAppend("lock", []byte("intruder"))
				require.Error(t, err)
				assert.True(t, IsIOError(err))
				assert.ErrorIs(t, err, os.ErrExist)

				got, err := fm.Read("lock")
				require.NoError(t, err)
				assert.Equal(t, "owner", string(got))
			})

			t.Run("delete", func(t *testing.T) {
				fm := newFM(t)
				require.NoError(t, fm.Write("doomed", []byte("x")))
				require.NoError(t, fm.Delete("doomed"))

				_, err := fm.Read("doomed")
				assert.True(t, IsNotFound(err))

				assert.Error(t, fm.Delete("doomed"))
			})

			t.Run("move", func(t *testing.T) {
				fm := newFM(t)
				require.NoError(t, fm.Write("from", []byte("payload")))
				require.NoError(t, fm.Move("from", "to"))

				_, err := fm.Read("from")
				assert.True(t, IsNotFound(err))

				got, err := fm.Read("to")
				require.NoError(t, err)
				assert.Equal(t, "payload", string(got))

				assert.Error(t, fm.Move("from", "elsewhere"))
			})

			t.Run("empty paths", func(t *testing.T) {
				fm := newFM(t)
				_, err := fm.Read("")
				assert.True(t, IsValidationError(err))
				assert.True(t, IsValidationError(fm.Write("", nil)))
				assert.True(t, IsValidationError(fm.Append("", nil)))
				assert.True(t, IsValidationError(fm.ExclusiveAppend("", nil)))
				assert.True(t, IsValidationError(fm.Delete("")))
				assert.True(t, IsValidationError(fm.Move("a", "")))
			})
		})
	}
}

func TestNewFileManagerNil(t *testing.T) {
	_, err := NewFileManager(nil)
	assert.Error(t, err)
}

func TestFileManagerFileSystem(t *testing.T) {
	mfs, err := memfs.NewFS()
	require.NoError(t, err)
	fm, err := NewFileManager(mfs)
	require.NoError(t, err)

	var base absfs.FileSystem = mfs
	assert.Equal(t, base, fm.FileSystem())
}

// newDiskFileManager returns a FileManager over the local disk with its
// working directory set to root
func newDiskFileManager(t *testing.T, root string) *FileManager {
	t.Helper()
	disk, err := osfs.NewFS()
	require.NoError(t, err)
	require.NoError(t, disk.Chdir(osfs.FromNative(root)))
	fm, err := NewFileManager(disk)
	require.NoError(t, err)
	return fm
}

func TestFileManagerOnDisk(t *testing.T) {
	root := t.TempDir()
	fm := newDiskFileManager(t, root)

	t.Run("relative paths land below the working directory", func(t *testing.T) {
		require.NoError(t, fm.Write("sub/rel.txt", []byte("relative")))

		data, err := os.ReadFile(filepath.Join(root, "sub", "rel.txt"))
		require.NoError(t, err)
		assert.Equal(t, "relative", string(data))
	})

	t.Run("missing paths are not found", func(t *testing.T) {
		assert.True(t, IsNotFound(fm.Delete("nothing")))
		assert.True(t, IsNotFound(fm.Move("nothing", "something")))

		_, err := fm.Read("nothing.enc")
		var nf *ResourceNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "nothing.enc", nf.Path)
	})

	t.Run("move into a new directory", func(t *testing.T) {
		require.NoError(t, fm.Write("outbox/report", []byte("q3")))
		require.NoError(t, fm.Move("outbox/report", "archive/2024/report"))

		data, err := os.ReadFile(filepath.Join(root, "archive", "2024", "report"))
		require.NoError(t, err)
		assert.Equal(t, "q3", string(data))
		assert.NoFileExists(t, filepath.Join(root, "outbox", "report"))
	})

	t.Run("second delete is not found", func(t *testing.T) {
		require.NoError(t, fm.Write("once", []byte("x")))
		require.NoError(t, fm.Delete("once"))
		assert.True(t, IsNotFound(fm.Delete("once")))
	})
}
