package compress

import (
	"bytes"
	"slices"
	"testing"

	"github.com/bearlytools/snip/chunk"
	"github.com/bearlytools/snip/errors"
	"github.com/kylelemons/godebug/pretty"
)

func TestCompressors(t *testing.T) {
	tests := []struct {
		name string
		alg  Type
		data []byte
	}{
		{"Success: zlib small data", CmpZlib, []byte("hello world")},
		{"Success: zlib large data", CmpZlib, bytes.Repeat([]byte("hello world "), 1000)},
		{"Success: lz4 small data", CmpLZ4, []byte("hello world")},
		{"Success: lz4 large data", CmpLZ4, bytes.Repeat([]byte("hello world "), 1000)},
		{"Success: gzip small data", CmpGzip, []byte("hello world")},
		{"Success: snappy large data", CmpSnappy, bytes.Repeat([]byte("hello world "), 1000)},
		{"Success: zstd large data", CmpZstd, bytes.Repeat([]byte("hello world "), 1000)},
		{"Success: none passthrough", CmpNone, []byte("hello world")},
	}

	for _, test := range tests {
		compressed, err := Compress(test.alg, test.data)
		if err != nil {
			t.Errorf("TestCompressors(%s): Compress got err == %s, want err == nil", test.name, err)
			continue
		}

		decompressed, err := Decompress(test.alg, compressed)
		if err != nil {
			t.Errorf("TestCompressors(%s): Decompress got err == %s, want err == nil", test.name, err)
			continue
		}

		if diff := pretty.Compare(test.data, decompressed); diff != "" {
			t.Errorf("TestCompressors(%s): roundtrip mismatch (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Type
		wantErr bool
	}{
		{name: "Success: zlib", in: "zlib", want: CmpZlib},
		{name: "Success: upper case", in: "LZ4", want: CmpLZ4},
		{name: "Success: none", in: "none", want: CmpNone},
		{name: "Error: unknown", in: "brotli", wantErr: true},
	}

	for _, test := range tests {
		got, err := ParseType(test.in)
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestParseType(%s): got err == nil, want err != nil", test.name)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestParseType(%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			if !errors.Is(err, errors.ErrUnknownCompression) {
				t.Errorf("TestParseType(%s): got %v, want ErrUnknownCompression", test.name, err)
			}
			continue
		}
		if got != test.want {
			t.Errorf("TestParseType(%s): got %v, want %v", test.name, got, test.want)
		}
	}
}

// cmpReverse is a test compressor that has no Streamer, so Inflate falls back to
// Decompress.
const cmpReverse Type = 150

type reverse struct{}

func (reverse) Type() Type { return cmpReverse }

func (reverse) Compress(data []byte) ([]byte, error) {
	out := bytes.Clone(data)
	slices.Reverse(out)
	return out, nil
}

func (r reverse) Decompress(data []byte) ([]byte, error) {
	return r.Compress(data)
}

func init() {
	Register(reverse{})
}

func TestStreamers(t *testing.T) {
	for _, typ := range []Type{CmpZlib, CmpLZ4, CmpZstd, CmpSnappy, CmpGzip} {
		if _, ok := Get(typ).(Streamer); !ok {
			t.Errorf("TestStreamers(%s): compressor does not implement Streamer", typ)
		}
	}

	out, err := Compress(CmpSnappy, []byte("Iron Sword"))
	if err != nil {
		t.Fatalf("TestStreamers: snappy Compress: %s", err)
	}
	if magic := []byte("\xff\x06\x00\x00sNaPpY"); !bytes.HasPrefix(out, magic) {
		t.Errorf("TestStreamers: snappy output starts %q, want the stream identifier", out[:min(len(out), 10)])
	}
}

func TestInflate(t *testing.T) {
	record := bytes.Repeat([]byte("EDID\x05\x00Iron\x00"), 3000)

	tests := []struct {
		name     string
		alg      Type
		capacity int
		wantKind errors.Type
	}{
		{name: "Success: zlib", alg: CmpZlib, capacity: 64 * 1024},
		{name: "Success: lz4", alg: CmpLZ4, capacity: 64 * 1024},
		{name: "Success: zstd", alg: CmpZstd, capacity: 64 * 1024},
		{name: "Success: snappy", alg: CmpSnappy, capacity: 64 * 1024},
		{name: "Success: gzip", alg: CmpGzip, capacity: 64 * 1024},
		{name: "Success: block compressor (not streamed)", alg: cmpReverse, capacity: 64 * 1024},
		{name: "Success: none", alg: CmpNone, capacity: 64 * 1024},
		{name: "Error: decompressed size over capacity", alg: CmpZlib, capacity: 16 * 1024, wantKind: errors.TypeCapacityExceeded},
	}

	for _, test := range tests {
		compressed, err := Compress(test.alg, record)
		if err != nil {
			t.Fatalf("TestInflate(%s): Compress: %s", test.name, err)
		}
		prefixed := append([]byte{0xDE, 0xAD}, compressed...)

		b := chunk.New(test.capacity)
		if test.alg == CmpNone {
			prefixed = compressed
		}
		if err := b.LoadFromArray(prefixed, 0, len(prefixed)); err != nil {
			t.Fatalf("TestInflate(%s): load: %s", test.name, err)
		}
		if test.alg != CmpNone {
			// Skip a header the caller already consumed.
			if _, err := b.ReadFixed(2, chunk.Input); err != nil {
				t.Fatal(err)
			}
		}

		err = Inflate(b, test.alg)
		if test.wantKind != errors.TypeUnknown {
			if got := errors.KindOf(err); got != test.wantKind {
				t.Errorf("TestInflate(%s): got err kind %v (%v), want %v", test.name, got, err, test.wantKind)
			}
			continue
		}
		if err != nil {
			t.Errorf("TestInflate(%s): got err == %s, want err == nil", test.name, err)
			continue
		}
		if !bytes.Equal(b.Bytes(chunk.Output), record) {
			t.Errorf("TestInflate(%s): output does not match the original record", test.name)
		}
		if b.Pos(chunk.Output) != 0 {
			t.Errorf("TestInflate(%s): output cursor = %d, want 0", test.name, b.Pos(chunk.Output))
		}
	}
}

func TestUnregistered(t *testing.T) {
	if _, err := Compress(Type(200), []byte("x")); !errors.Is(err, errors.ErrUnknownCompression) {
		t.Errorf("TestUnregistered: Compress got %v, want ErrUnknownCompression", err)
	}
	b := chunk.New(16)
	if err := b.LoadFromArray([]byte("x"), 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := Inflate(b, Type(200)); !errors.Is(err, errors.ErrUnknownCompression) {
		t.Errorf("TestUnregistered: Inflate got %v, want ErrUnknownCompression", err)
	}
}

func TestDeflate(t *testing.T) {
	record := bytes.Repeat([]byte("FULL\x00"), 500)

	for _, alg := range []Type{CmpNone, CmpZlib, CmpGzip} {
		packed, err := Deflate(record, alg)
		if err != nil {
			t.Errorf("TestDeflate(%s): got err == %s, want err == nil", alg, err)
			continue
		}
		if alg != CmpNone && len(packed) >= len(record) {
			t.Errorf("TestDeflate(%s): %d bytes did not shrink (got %d)", alg, len(record), len(packed))
		}
		got, err := Decompress(alg, packed)
		if err != nil {
			t.Errorf("TestDeflate(%s): Decompress: %s", alg, err)
			continue
		}
		if !bytes.Equal(got, record) {
			t.Errorf("TestDeflate(%s): round trip does not match", alg)
		}
	}
	if _, err := Deflate(record, Type(99)); !errors.Is(err, errors.ErrUnknownCompression) {
		t.Errorf("TestDeflate(unregistered): got %v, want ErrUnknownCompression", err)
	}
}
