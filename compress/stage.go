package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bearlytools/snip/chunk"
	"github.com/bearlytools/snip/errors"
)

// Streamer is implemented by compressors that can decompress incrementally. Inflate
// uses it so a large record is never fully materialized outside the chunk.Buffer.
type Streamer interface {
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Inflate decompresses the input region of b, from its cursor to its length, into the
// output region. For CmpNone the input bytes are promoted to the output region as is.
// On success the output cursor is 0 and the output length is the decompressed size.
func Inflate(b *chunk.Buffer, t Type) error {
	if t == CmpNone {
		return b.PromoteInputToOutput(b.Len(chunk.Input))
	}
	c := Get(t)
	if c == nil {
		return fmt.Errorf("compressor not registered for type %s: %w", t, errors.ErrUnknownCompression)
	}

	src := b.Bytes(chunk.Input)[b.Pos(chunk.Input):]
	if err := b.Seek(0, chunk.Output); err != nil {
		return err
	}
	w := b.OutputWriter()

	if s, ok := c.(Streamer); ok {
		r, err := s.NewReader(bytes.NewReader(src))
		if err != nil {
			return fmt.Errorf("compress: %s reader: %w", t, err)
		}
		defer r.Close()
		if _, err := io.CopyBuffer(onlyWriter{w}, r, make([]byte, 8192)); err != nil {
			return fmt.Errorf("compress: %s inflate: %w", t, err)
		}
	} else {
		out, err := c.Decompress(src)
		if err != nil {
			return fmt.Errorf("compress: %s inflate: %w", t, err)
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return b.Seek(0, chunk.Output)
}

// onlyWriter hides any ReaderFrom so io.CopyBuffer writes in buffer sized pieces.
type onlyWriter struct {
	io.Writer
}

// Deflate compresses an encoded span with t. For CmpNone it returns data as is.
func Deflate(data []byte, t Type) ([]byte, error) {
	if t == CmpNone {
		return data, nil
	}
	out, err := Compress(t, data)
	if err != nil {
		return nil, fmt.Errorf("compress: %s deflate: %w", t, err)
	}
	return out, nil
}
