package disk

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultBlockSize is the read-ahead size used when none is configured
const DefaultBlockSize = 64 * 1024

// BufferedSource provides a seekable view of a system file with a single
// read-ahead block. Dictionary decoding issues many 4 and 8 byte reads and
// peek/rewind seeks; they are served from the block without touching the
// underlying source.
type BufferedSource struct {
	src   io.ReadSeeker
	file  *os.File
	size  int64
	pos   int64
	block []byte
	start int64 // offset of block[0] in the source
	fill  int   // valid bytes in block
	stats *SourceStatistics
}

// SourceStatistics tracks access to the underlying source
type SourceStatistics struct {
	BlocksRead  int64
	BytesRead   int64
	CacheHits   int64
	CacheMisses int64
}

// NewBufferedSource wraps src. A blockSize of zero or less selects DefaultBlockSize.
func NewBufferedSource(src io.ReadSeeker, blockSize int) (*BufferedSource, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to determine source size: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind source: %w", err)
	}

	return &BufferedSource{
		src:   src,
		size:  size,
		block: make([]byte, blockSize),
		stats: &SourceStatistics{},
	}, nil
}

// OpenFile opens a system file from disk
func OpenFile(path string, blockSize int) (*BufferedSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open system file: %w", err)
	}

	source, err := NewBufferedSource(file, blockSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	source.file = file

	return source, nil
}

// Read implements io.Reader
func (b *BufferedSource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.pos >= b.size {
		return 0, io.EOF
	}

	if b.pos >= b.start && b.pos < b.start+int64(b.fill) {
		b.stats.CacheHits++
		n := copy(p, b.block[b.pos-b.start:b.fill])
		b.pos += int64(n)
		return n, nil
	}
	b.stats.CacheMisses++

	// Large reads bypass the block
	if len(p) >= len(b.block) {
		if _, err := b.src.Seek(b.pos, io.SeekStart); err != nil {
			return 0, err
		}
		n, err := io.ReadFull(b.src, p)
		b.account(n)
		b.pos += int64(n)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = nil
		}
		return n, err
	}

	if err := b.loadBlock(b.pos); err != nil {
		return 0, err
	}
	n := copy(p, b.block[:b.fill])
	b.pos += int64(n)
	return n, nil
}

func (b *BufferedSource) loadBlock(offset int64) error {
	if _, err := b.src.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	n, err := io.ReadFull(b.src, b.block)
	b.account(n)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		b.fill = 0
		return err
	}
	b.start = offset
	b.fill = n
	return nil
}

func (b *BufferedSource) account(n int) {
	if n > 0 {
		b.stats.BlocksRead++
		b.stats.BytesRead += int64(n)
	}
}

// Seek implements io.Seeker. Seeking only moves the logical position.
func (b *BufferedSource) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = b.pos + offset
	case io.SeekEnd:
		next = b.size + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("seek to negative offset %d", next)
	}
	b.pos = next
	return next, nil
}

// Size returns the size of the source in bytes
func (b *BufferedSource) Size() int64 {
	return b.size
}

// Stats returns access statistics
func (b *BufferedSource) Stats() SourceStatistics {
	return *b.stats
}

// CacheHitRate returns the block hit rate as a percentage
func (b *BufferedSource) CacheHitRate() float64 {
	total := b.stats.CacheHits + b.stats.CacheMisses
	if total == 0 {
		return 0.0
	}
	return float64(b.stats.CacheHits) / float64(total) * 100.0
}

// Close closes the file when the source was opened with OpenFile
func (b *BufferedSource) Close() error {
	if b.file != nil {
		return b.file.Close()
	}
	return nil
}
