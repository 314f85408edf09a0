package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 stores records as a single LZ4 frame.
type LZ4 struct{}

// Type returns CmpLZ4.
func (l *LZ4) Type() Type {
	return CmpLZ4
}

// Compress writes data as one LZ4 frame.
func (l *LZ4) Compress(data []byte) ([]byte, error) {
	return packStream(data, func(w io.Writer) (io.WriteCloser, error) {
		return lz4.NewWriter(w), nil
	})
}

// Decompress reads an LZ4 frame.
func (l *LZ4) Decompress(data []byte) ([]byte, error) {
	return unpackStream(l, data)
}

// NewReader implements Streamer.
func (l *LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
