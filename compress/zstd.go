package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd stores records as a Zstandard frame. A record is inflated by one goroutine, so
// the decoders it opens run without concurrency.
type Zstd struct {
	// Level is the encoder level. 0 means zstd.SpeedDefault.
	Level zstd.EncoderLevel
}

// Type returns CmpZstd.
func (z *Zstd) Type() Type {
	return CmpZstd
}

// Compress writes data as one Zstandard frame.
func (z *Zstd) Compress(data []byte) ([]byte, error) {
	level := z.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2+64)), nil
}

// Decompress reads every Zstandard frame in data.
func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	return unpackStream(z, data)
}

// NewReader implements Streamer.
func (z *Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
