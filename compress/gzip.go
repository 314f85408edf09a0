package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip stores records as gzip members. It is the format of record bytes exported to
// files that other tools open.
type Gzip struct {
	// Level is a gzip level such as gzip.BestCompression. 0 means gzip.DefaultCompression.
	Level int
}

// Type returns CmpGzip.
func (g *Gzip) Type() Type {
	return CmpGzip
}

// Compress writes data as a single gzip member.
func (g *Gzip) Compress(data []byte) ([]byte, error) {
	level := g.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return packStream(data, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, level)
	})
}

// Decompress reads every gzip member in data.
func (g *Gzip) Decompress(data []byte) ([]byte, error) {
	return unpackStream(g, data)
}

// NewReader implements Streamer.
func (g *Gzip) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}
