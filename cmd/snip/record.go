package main

import (
	"os"

	"github.com/bearlytools/snip/compress"
)

// fileRecord is a record read from a file. SetData only keeps the bytes, write stores them.
type fileRecord struct {
	path  string
	data  []byte
	dirty bool
}

func readRecord(path string) (*fileRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &fileRecord{path: path, data: b}, nil
}

func (r *fileRecord) Data() []byte {
	return r.data
}

func (r *fileRecord) SetData(b []byte) {
	r.data = b
	r.dirty = true
}

// write stores the record at path, or where it was read from when path is "".
func (r *fileRecord) write(path string) error {
	if path == "" {
		path = r.path
	}
	return os.WriteFile(path, r.data, 0o644)
}

// compressedRecord marks a fileRecord as compressed.
type compressedRecord struct {
	*fileRecord
	cmp compress.Type
}

func (c compressedRecord) Compression() compress.Type {
	return c.cmp
}
