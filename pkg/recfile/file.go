package recfile

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/calvinalkan/recview/pkg/recview"
)

// File is a REC1 file mapped read-only into memory.
//
// Read operations are safe for concurrent use. Views returned by [File.View]
// borrow the mapping: they must not be used after [File.Close].
type File struct {
	mu     sync.RWMutex
	path   string
	data   []byte
	header Header
	closed bool
}

// Open maps the file at path and validates its header.
//
// A file whose payload is shorter than its header claims opens successfully;
// [File.View] then reports [recview.ErrElementOverflow].
//
// Possible errors: [ErrCorrupt], [ErrIncompatible], os and mmap errors.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	// The mapping outlives the descriptor.
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	size := st.Size()
	if size < HeaderSize {
		return nil, fmt.Errorf("%s is %d bytes, smaller than the %d byte header: %w", path, size, HeaderSize, ErrCorrupt)
	}

	if size > int64(maxInt) {
		return nil, fmt.Errorf("%s is %d bytes, too large to map: %w", path, size, ErrInvalidInput)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	header, _, err := Decode(data)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", path, err), munmap(data))
	}

	// Parallel traversal touches pages out of order; readahead hints would
	// mostly be wasted.
	_ = unix.Madvise(data, unix.MADV_RANDOM)

	return &File{path: path, data: data, header: header}, nil
}

// Path returns the path the file was opened from.
func (f *File) Path() string {
	return f.path
}

// Header returns the file header.
func (f *File) Header() Header {
	return f.header
}

// Size returns the mapped file size in bytes, header included.
func (f *File) Size() (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return 0, ErrClosed
	}

	return len(f.data), nil
}

// View returns a view over the file's records.
//
// Possible errors: [ErrClosed], [recview.ErrElementOverflow] for a truncated
// payload, [ErrInvalidInput].
func (f *File) View() (recview.View[recview.Records[Header], Value], error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return recview.View[recview.Records[Header], Value]{}, ErrClosed
	}

	view, err := NewView(f.header, f.data[HeaderSize:])
	if err != nil {
		return recview.View[recview.Records[Header], Value]{}, fmt.Errorf("%s: %w", f.path, err)
	}

	return view, nil
}

// VerifyPayload checks the payload checksum stored in the header.
//
// Possible errors: [ErrClosed], [ErrCorrupt].
func (f *File) VerifyPayload() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return ErrClosed
	}

	return VerifyPayload(f.header, f.data[HeaderSize:])
}

// Close unmaps the file. Calling Close more than once is a no-op.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true

	data := f.data
	f.data = nil

	return munmap(data)
}

func munmap(data []byte) error {
	err := unix.Munmap(data)
	if err != nil {
		return fmt.Errorf("munmap: %w", err)
	}

	return nil
}
