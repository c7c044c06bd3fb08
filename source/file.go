package source

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/scatter"
)

// Point file binary format, little-endian throughout:
//
//	magic       uint32  "SCPT"
//	version     uint32
//	count       uint64  number of points
//	payloadLen  uint64  compressed payload size in bytes
//	payload     []byte  zstd-compressed records: id int64, x f32, y f32
//	checksum    uint32  CRC32 (IEEE) of the uncompressed payload
const (
	fileMagic   = 0x53435054 // "SCPT"
	fileVersion = 1

	recordSize = 16
	headerSize = 24
)

// maxFilePoints bounds how many points a snapshot may declare: 128M
// points, a 2 GiB decoded payload. Header fields are untrusted input and
// must never size an allocation unchecked.
const maxFilePoints = 1 << 27

// Point file errors.
var (
	ErrInvalidMagic   = errors.New("source: not a point file")
	ErrInvalidVersion = errors.New("source: unsupported point file version")
	ErrChecksum       = errors.New("source: point file checksum mismatch")
	ErrTooLarge       = errors.New("source: point file exceeds size limits")
)

// WritePointFile writes points to path as a compressed snapshot,
// replacing the target atomically via a temp file in the same directory.
func WritePointFile(path string, points []scatter.Point) error {
	payload := make([]byte, len(points)*recordSize)
	for i, p := range points {
		off := i * recordSize
		binary.LittleEndian.PutUint64(payload[off:], uint64(p.ID))
		binary.LittleEndian.PutUint32(payload[off+8:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(payload[off+12:], math.Float32bits(p.Y))
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("source: create encoder: %w", err)
	}
	compressed := enc.EncodeAll(payload, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("source: close encoder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	w := bufio.NewWriterSize(tmp, 256*1024)

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], fileMagic)
	binary.LittleEndian.PutUint32(header[4:], fileVersion)
	binary.LittleEndian.PutUint64(header[8:], uint64(len(points)))
	binary.LittleEndian.PutUint64(header[16:], uint64(len(compressed)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(compressed); err != nil {
		return err
	}
	var footer [4]byte
	binary.LittleEndian.PutUint32(footer[:], crc32.ChecksumIEEE(payload))
	if _, err := w.Write(footer[:]); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""
	return nil
}

// ReadPointFile reads a snapshot written by WritePointFile.
func ReadPointFile(path string) ([]scatter.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPointStream(bufio.NewReaderSize(f, 256*1024))
}

func readPointStream(r io.Reader) ([]scatter.Point, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("source: read header: %w", err)
	}
	if magic := binary.LittleEndian.Uint32(header[0:]); magic != fileMagic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(header[4:]); version != fileVersion {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, version)
	}
	count := binary.LittleEndian.Uint64(header[8:])
	payloadLen := binary.LittleEndian.Uint64(header[16:])
	if count > maxFilePoints {
		return nil, fmt.Errorf("%w: count %d", ErrTooLarge, count)
	}
	if payloadLen > maxFilePoints*recordSize {
		return nil, fmt.Errorf("%w: payload %d bytes", ErrTooLarge, payloadLen)
	}

	compressed := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("source: read payload: %w", err)
	}
	var footer [4]byte
	if _, err := io.ReadFull(r, footer[:]); err != nil {
		return nil, fmt.Errorf("source: read checksum: %w", err)
	}

	// Cap decoder memory so a crafted frame cannot decompress past the
	// declared payload bound.
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxFilePoints*recordSize))
	if err != nil {
		return nil, fmt.Errorf("source: create decoder: %w", err)
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("source: decompress: %w", err)
	}

	if uint64(len(payload)) != count*recordSize {
		return nil, fmt.Errorf("source: payload size %d does not match count %d", len(payload), count)
	}
	if sum := crc32.ChecksumIEEE(payload); sum != binary.LittleEndian.Uint32(footer[:]) {
		return nil, ErrChecksum
	}

	points := make([]scatter.Point, count)
	for i := range points {
		off := i * recordSize
		points[i] = scatter.Point{
			ID: int64(binary.LittleEndian.Uint64(payload[off:])),
			X:  math.Float32frombits(binary.LittleEndian.Uint32(payload[off+8:])),
			Y:  math.Float32frombits(binary.LittleEndian.Uint32(payload[off+12:])),
		}
	}
	return points, nil
}

// FileSource serves a point file as a paginated Source. The file is read
// once on first fetch and cached.
type FileSource struct {
	path  string
	cache *SliceSource
}

// NewFileSource creates a source for the snapshot at path. The file is
// not opened until the first FetchPage call.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchPage implements Source.
func (s *FileSource) FetchPage(ctx context.Context, offset, limit int) ([]scatter.Point, error) {
	if s.cache == nil {
		points, err := ReadPointFile(s.path)
		if err != nil {
			return nil, err
		}
		s.cache = NewSliceSource(points)
	}
	return s.cache.FetchPage(ctx, offset, limit)
}
