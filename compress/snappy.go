package compress

import (
	"io"

	"github.com/golang/snappy"
)

// Snappy stores records in the framed Snappy stream format, so they can be inflated
// into a chunk.Buffer a frame at a time. Raw Snappy blocks are not accepted.
type Snappy struct{}

// Type returns CmpSnappy.
func (s *Snappy) Type() Type {
	return CmpSnappy
}

// Compress writes data as a framed Snappy stream.
func (s *Snappy) Compress(data []byte) ([]byte, error) {
	return packStream(data, func(w io.Writer) (io.WriteCloser, error) {
		return snappy.NewBufferedWriter(w), nil
	})
}

// Decompress reads a framed Snappy stream.
func (s *Snappy) Decompress(data []byte) ([]byte, error) {
	return unpackStream(s, data)
}

// NewReader implements Streamer.
func (s *Snappy) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(r)), nil
}
