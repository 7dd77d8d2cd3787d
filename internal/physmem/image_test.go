package physmem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenImagePersists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "ram.img")

	m, err := Open(path, 0x80000, 0x1000)
	require.NoError(t, err)
	copy(m.Bytes(0x80010, 4), []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 0x1000)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data[0x10:0x14])

	// Reopening maps the same contents at the same physical addresses.
	m, err = Open(path, 0x80000, 0x1000)
	require.NoError(t, err)
	defer m.Close()
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, m.Bytes(0x80010, 4))
}
