package source

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/scatter"
)

func TestPointFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.scpt")
	want := []scatter.Point{
		{ID: 1, X: 0.5, Y: -0.25},
		{ID: 42, X: -1.75, Y: 3},
		{ID: 7, X: 0, Y: 0},
	}

	require.NoError(t, WritePointFile(path, want))
	got, err := ReadPointFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPointFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.scpt")
	require.NoError(t, WritePointFile(path, nil))

	got, err := ReadPointFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPointFileBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.scpt")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	_, err := ReadPointFile(path)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestPointFileBadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ver.scpt")
	require.NoError(t, WritePointFile(path, makePoints(3)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(raw[4:], 99)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = ReadPointFile(path)
	require.ErrorIs(t, err, ErrInvalidVersion)
}

// TestPointFileOversizedHeader rejects crafted headers before any
// allocation sized by them can happen.
func TestPointFileOversizedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.scpt")
	require.NoError(t, WritePointFile(path, makePoints(3)))
	valid, err := os.ReadFile(path)
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset int
		value  uint64
	}{
		{"count overflow", 8, 1 << 40},
		{"count product overflow", 8, ^uint64(0)/recordSize + 1},
		{"payload length", 16, 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := append([]byte(nil), valid...)
			binary.LittleEndian.PutUint64(raw[tt.offset:], tt.value)
			require.NoError(t, os.WriteFile(path, raw, 0o644))

			_, err := ReadPointFile(path)
			require.ErrorIs(t, err, ErrTooLarge)
		})
	}
}

func TestPointFileChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crc.scpt")
	require.NoError(t, WritePointFile(path, makePoints(3)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// Flip a bit in the trailing checksum.
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = ReadPointFile(path)
	require.ErrorIs(t, err, ErrChecksum)
}

func TestFileSourcePagination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.scpt")
	require.NoError(t, WritePointFile(path, makePoints(12)))

	src := NewFileSource(path)
	var got []scatter.Point
	require.NoError(t, LoadAll(context.Background(), src, func(page []scatter.Point) error {
		got = append(got, page...)
		return nil
	}))
	require.Len(t, got, 12)
	assert.Equal(t, int64(12), got[11].ID)
}

func TestDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, make([]byte, 128), 0o644))

	info, err := Describe(path)
	require.NoError(t, err)
	assert.Equal(t, "clip.wav", info.Name)
	assert.Equal(t, path, info.Path)
	assert.Equal(t, int64(128), info.SizeBytes)
	assert.Zero(t, info.Duration)
}
