// Package compress provides the compressors used for compressed records. It includes
// built-in compressors for zlib, lz4, zstd, snappy and gzip, supports custom compressor
// registration and knows how to stage decompressed bytes in a chunk.Buffer.
package compress

import (
	"fmt"
	"strings"

	"github.com/gostdlib/base/concurrency/sync"

	"github.com/bearlytools/snip/errors"
)

// Type identifies a compression algorithm.
type Type uint8

const (
	// CmpNone indicates uncompressed data.
	CmpNone Type = 0
	// CmpZlib is the deflate stream used by compressed records on disk.
	CmpZlib Type = 1
	// CmpLZ4 is an LZ4 frame.
	CmpLZ4 Type = 2
	// CmpZstd is a Zstandard frame.
	CmpZstd Type = 3
	// CmpSnappy is a framed Snappy stream.
	CmpSnappy Type = 4
	// CmpGzip is a gzip stream.
	CmpGzip Type = 5
)

var typeNames = [...]string{
	CmpNone:   "none",
	CmpZlib:   "zlib",
	CmpLZ4:    "lz4",
	CmpZstd:   "zstd",
	CmpSnappy: "snappy",
	CmpGzip:   "gzip",
}

// String returns the human-readable name of a compression type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// ParseType parses a compression type from its string representation.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(n, name) {
			return Type(i), nil
		}
	}
	return CmpNone, fmt.Errorf("unknown compression type %q: %w", name, errors.ErrUnknownCompression)
}

// Compressor defines the interface for compression algorithms.
type Compressor interface {
	// Compress compresses data. Returns compressed data or error.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data. Returns original data or error.
	Decompress(data []byte) ([]byte, error)

	// Type returns the compression type this Compressor handles.
	Type() Type
}

var (
	registry   = map[Type]Compressor{}
	registryMu sync.RWMutex
)

// Register adds a compressor to the registry. This can be used to register
// custom compressors or override built-in compressors. Thread-safe.
func Register(c Compressor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Type()] = c
}

// Get returns the compressor for the given type, or nil if not found.
func Get(t Type) Compressor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[t]
}

// Compress compresses data using the specified algorithm.
// Returns original data unchanged if type is CmpNone.
// Returns an error if the compressor is not registered.
func Compress(t Type, data []byte) ([]byte, error) {
	if t == CmpNone {
		return data, nil
	}
	c := Get(t)
	if c == nil {
		return nil, fmt.Errorf("compressor not registered for type %s: %w", t, errors.ErrUnknownCompression)
	}
	return c.Compress(data)
}

// Decompress decompresses data using the specified algorithm.
// Returns original data unchanged if type is CmpNone.
// Returns an error if the compressor is not registered.
func Decompress(t Type, data []byte) ([]byte, error) {
	if t == CmpNone {
		return data, nil
	}
	if len(data) == 0 {
		return data, nil
	}
	c := Get(t)
	if c == nil {
		return nil, fmt.Errorf("compressor not registered for type %s: %w", t, errors.ErrUnknownCompression)
	}
	return c.Decompress(data)
}

func init() {
	Register(&Zlib{})
	Register(&LZ4{})
	Register(&Zstd{})
	Register(&Snappy{})
	Register(&Gzip{})
}
