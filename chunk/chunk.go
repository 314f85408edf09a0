// Package chunk provides a bounded staging buffer for record bytes.
//
// A Buffer owns two fixed capacity regions. The input region receives raw bytes from a
// file region or a byte slice. The output region receives bytes that are ready to be
// decoded, either copied verbatim from the input region or written there by a
// decompressor. Each region has its own length and cursor and every operation keeps
// 0 <= position <= length <= capacity.
//
// A Buffer is not safe for concurrent use. Each editing session should own its own.
package chunk

import (
	"fmt"
	"io"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/binary"
)

// DefaultCapacity is the capacity of each region when none is given (5 MiB).
const DefaultCapacity = 5 * 1024 * 1024

// readSize is the largest read issued against a Source in one call.
const readSize = 8192

// Region selects one of the two regions of a Buffer.
type Region uint8

const (
	Input  Region = 0
	Output Region = 1
)

func (r Region) String() string {
	if r == Input {
		return "input"
	}
	return "output"
}

type region struct {
	data   []byte
	length int
	pos    int
}

// Buffer stages bytes between a byte source and the codec.
type Buffer struct {
	capacity int
	in, out  region
	maxOut   int
}

// New allocates a Buffer whose regions hold capacity bytes each. A capacity <= 0
// means DefaultCapacity.
func New(capacity int) *Buffer {
	b := &Buffer{}
	b.Allocate(capacity)
	return b
}

// Allocate reserves new regions of capacity bytes, releasing any previous ones.
// A capacity <= 0 means DefaultCapacity.
func (b *Buffer) Allocate(capacity int) {
	if b.in.data != nil || b.out.data != nil {
		b.Release()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b.capacity = capacity
	b.in.data = make([]byte, capacity)
	b.out.data = make([]byte, capacity)
	b.Reset()
}

// Cap returns the capacity of each region.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Len returns the number of valid bytes in a region.
func (b *Buffer) Len(which Region) int {
	return b.region(which).length
}

// Pos returns the cursor of a region.
func (b *Buffer) Pos(which Region) int {
	return b.region(which).pos
}

// HighWater returns the largest output cursor seen since the last Reset. It can be used
// to right size the next Allocate.
func (b *Buffer) HighWater() int {
	return b.maxOut
}

// Bytes returns the valid bytes of a region. The slice aliases the buffer and is only
// good until the next mutation.
func (b *Buffer) Bytes(which Region) []byte {
	r := b.region(which)
	return r.data[:r.length]
}

func (b *Buffer) region(which Region) *region {
	if which == Input {
		return &b.in
	}
	return &b.out
}

// LoadFromSource copies n bytes from src, starting at its current position, into the
// input region. Reads are issued in pieces so short reads are tolerated. On success the
// input length is n, the output length is 0 and both cursors are 0.
func (b *Buffer) LoadFromSource(src io.ReadSeeker, n int) error {
	if n < 0 {
		return fmt.Errorf("chunk: LoadFromSource(%d): %w", n, errors.ErrNegativeIndex)
	}
	if n > b.capacity {
		return fmt.Errorf("chunk: LoadFromSource: %d bytes exceeds capacity %d: %w", n, b.capacity, errors.ErrCapacityExceeded)
	}
	remain, err := remaining(src)
	if err != nil {
		return fmt.Errorf("chunk: LoadFromSource: cannot size source: %v: %w", err, errors.ErrSourceRangeInvalid)
	}
	if int64(n) > remain {
		return fmt.Errorf("chunk: LoadFromSource: %d bytes requested but source has %d remaining: %w", n, remain, errors.ErrSourceRangeInvalid)
	}

	read := 0
	for read < n {
		want := min(n-read, readSize)
		got, err := src.Read(b.in.data[read : read+want])
		read += got
		if err != nil && read < n {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("chunk: LoadFromSource: read %d of %d bytes: %v: %w", read, n, err, errors.ErrSourceRangeInvalid)
		}
		if got == 0 && err == nil {
			return fmt.Errorf("chunk: LoadFromSource: source made no progress after %d of %d bytes: %w", read, n, errors.ErrSourceRangeInvalid)
		}
	}
	b.loaded(n)
	return nil
}

// remaining returns the bytes between the current position of src and its end. The
// position of src is left where it was.
func remaining(src io.Seeker) (int64, error) {
	cur, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := src.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end - cur, nil
}

// LoadFromArray copies p[offset:offset+n] into the input region. The same bookkeeping
// as LoadFromSource applies.
func (b *Buffer) LoadFromArray(p []byte, offset, n int) error {
	if offset < 0 || n < 0 {
		return fmt.Errorf("chunk: LoadFromArray(offset %d, count %d): %w", offset, n, errors.ErrNegativeIndex)
	}
	if offset+n > b.capacity {
		return fmt.Errorf("chunk: LoadFromArray: offset %d + count %d exceeds capacity %d: %w", offset, n, b.capacity, errors.ErrCapacityExceeded)
	}
	if offset+n > len(p) {
		return fmt.Errorf("chunk: LoadFromArray: offset %d + count %d exceeds array length %d: %w", offset, n, len(p), errors.ErrSourceRangeInvalid)
	}
	copy(b.in.data, p[offset:offset+n])
	b.loaded(n)
	return nil
}

func (b *Buffer) loaded(n int) {
	b.in.length = n
	b.in.pos = 0
	b.out.length = 0
	b.out.pos = 0
}

// PromoteInputToOutput copies n bytes of the input region verbatim into the output
// region. Whatever the outcome, both cursors are reset to 0 and the output length is set
// to the input length.
func (b *Buffer) PromoteInputToOutput(n int) (err error) {
	defer func() {
		b.out.length = b.in.length
		b.out.pos = 0
		b.in.pos = 0
	}()

	switch {
	case b.in.length == 0:
		return fmt.Errorf("chunk: PromoteInputToOutput: %w", errors.ErrEmptyInput)
	case n < 0:
		return fmt.Errorf("chunk: PromoteInputToOutput(%d): %w", n, errors.ErrNegativeIndex)
	case n > b.capacity:
		return fmt.Errorf("chunk: PromoteInputToOutput: %d bytes exceeds capacity %d: %w", n, b.capacity, errors.ErrCapacityExceeded)
	}
	copy(b.out.data[:n], b.in.data[:n])
	return nil
}

// Seek sets the cursor of a region. pos may equal the region length but not exceed it.
func (b *Buffer) Seek(pos int, which Region) error {
	r := b.region(which)
	if pos < 0 {
		return fmt.Errorf("chunk: Seek(%d, %s): %w", pos, which, errors.ErrNegativeIndex)
	}
	if pos > r.length {
		return fmt.Errorf("chunk: Seek(%d, %s): length is %d: %w", pos, which, r.length, errors.ErrPositionOutOfRange)
	}
	r.pos = pos
	return nil
}

// ReadFixed returns a copy of the next n bytes of a region and advances its cursor.
func (b *Buffer) ReadFixed(n int, which Region) ([]byte, error) {
	r := b.region(which)
	if n < 0 {
		return nil, fmt.Errorf("chunk: ReadFixed(%d, %s): %w", n, which, errors.ErrNegativeIndex)
	}
	if r.pos+n > r.length {
		return nil, fmt.Errorf("chunk: ReadFixed(%d, %s): final position %d is over length %d: %w", n, which, r.pos+n, r.length, errors.ErrBufferOverrun)
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ReadUint16 reads a little endian uint16 from the output region.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.ReadFixed(2, Output)
	if err != nil {
		return 0, err
	}
	return binary.Get[uint16](p), nil
}

// ReadUint32 reads a little endian uint32 from the output region.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.ReadFixed(4, Output)
	if err != nil {
		return 0, err
	}
	return binary.Get[uint32](p), nil
}

// Write copies p[start:start+count] to the output region at its cursor. The output
// length becomes the new cursor, so a Write after a Seek truncates what followed.
func (b *Buffer) Write(p []byte, start, count int) error {
	if start < 0 {
		return fmt.Errorf("chunk: Write: start %d: %w", start, errors.ErrNegativeIndex)
	}
	if count < 0 {
		return fmt.Errorf("chunk: Write: count %d: %w", count, errors.ErrNegativeIndex)
	}
	if start+count > len(p) {
		return fmt.Errorf("chunk: Write: start %d + count %d exceeds source length %d: %w", start, count, len(p), errors.ErrSourceRangeInvalid)
	}
	if b.out.pos+count > b.capacity {
		return fmt.Errorf("chunk: Write: %d bytes at position %d exceeds capacity %d: %w", count, b.out.pos, b.capacity, errors.ErrCapacityExceeded)
	}
	copy(b.out.data[b.out.pos:], p[start:start+count])
	b.out.pos += count
	b.out.length = b.out.pos
	if b.out.pos > b.maxOut {
		b.maxOut = b.out.pos
	}
	return nil
}

// OutputWriter returns an io.Writer that appends to the output region through Write.
func (b *Buffer) OutputWriter() io.Writer {
	return outputWriter{b}
}

type outputWriter struct {
	b *Buffer
}

func (w outputWriter) Write(p []byte) (int, error) {
	if err := w.b.Write(p, 0, len(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// CopyOutput copies the valid output bytes into dst and returns the number copied.
func (b *Buffer) CopyOutput(dst []byte) (int, error) {
	if b.out.length == 0 {
		return 0, fmt.Errorf("chunk: CopyOutput: %w", errors.ErrEmptyOutput)
	}
	return copy(dst, b.out.data[:b.out.length]), nil
}

// Reset zeroes both regions along with their lengths, cursors and the high water mark.
func (b *Buffer) Reset() {
	clear(b.in.data)
	clear(b.out.data)
	b.in.length, b.in.pos = 0, 0
	b.out.length, b.out.pos = 0, 0
	b.maxOut = 0
}

// Release frees both regions. The Buffer has a capacity of 0 until the next Allocate.
func (b *Buffer) Release() {
	b.in = region{}
	b.out = region{}
	b.capacity = 0
	b.maxOut = 0
}
