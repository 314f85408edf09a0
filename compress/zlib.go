package compress

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// Zlib is the deflate stream with a zlib header that compressed records are stored in.
type Zlib struct {
	// Level is a zlib level such as zlib.BestSpeed. 0 means zlib.DefaultCompression.
	Level int
}

// Type returns CmpZlib.
func (z *Zlib) Type() Type {
	return CmpZlib
}

// Compress deflates an encoded record.
func (z *Zlib) Compress(data []byte) ([]byte, error) {
	level := z.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	return packStream(data, func(w io.Writer) (io.WriteCloser, error) {
		return zlib.NewWriterLevel(w, level)
	})
}

// Decompress inflates a stored record.
func (z *Zlib) Decompress(data []byte) ([]byte, error) {
	return unpackStream(z, data)
}

// NewReader implements Streamer.
func (z *Zlib) NewReader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}
