package snip

import (
	"bytes"
	"context"
	"testing"

	"github.com/bearlytools/snip/codec"
	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/schema"
)

func TestDecodeEncode(t *testing.T) {
	ctx := context.Background()
	sub := schema.MustNewSubrecord(
		"WEAP:DNAM",
		schema.Element{Name: "Speed", Type: FTFloat},
		schema.Element{Name: "Reach", Type: FTFloat},
		schema.Element{Name: "Flags", Type: FTUShort, Flags: []string{"IgnoresResist", "Automatic"}},
		schema.Element{Name: "Name", Type: FTBString},
	)
	data := []byte{
		0x00, 0x00, 0x80, 0x3F, // 1
		0x00, 0x00, 0x00, 0x40, // 2
		0x02, 0x00,
		0x03, 0x00, 'A', 'x', 'e',
	}

	tests := []struct {
		name     string
		data     []byte
		options  []codec.Option
		wantKind errors.Type
	}{
		{name: "Success: default code page", data: data},
		{name: "Success: other code page", data: data, options: []codec.Option{codec.WithCodePage("windows-1250")}},
		{name: "Error: truncated", data: data[:12], wantKind: errors.TypeStructureMismatch},
	}

	for _, test := range tests {
		l, err := Decode(ctx, sub, test.data, test.options...)
		if test.wantKind != errors.TypeUnknown {
			if got := errors.KindOf(err); got != test.wantKind {
				t.Errorf("TestDecodeEncode(%s): got err kind %v (%v), want %v", test.name, got, err, test.wantKind)
			}
			continue
		}
		if err != nil {
			t.Errorf("TestDecodeEncode(%s): Decode: got err == %s, want err == nil", test.name, err)
			continue
		}
		got, err := Encode(ctx, l, test.options...)
		if err != nil {
			t.Errorf("TestDecodeEncode(%s): Encode: got err == %s, want err == nil", test.name, err)
			continue
		}
		if !bytes.Equal(got, test.data) {
			t.Errorf("TestDecodeEncode(%s): got % X, want % X", test.name, got, test.data)
		}
	}

	if _, err := Decode(ctx, sub, data, codec.WithCodePage("utf-8")); err == nil {
		t.Errorf("TestDecodeEncode(utf-8 code page): got err == nil, want err != nil")
	}
}

func TestParseFieldType(t *testing.T) {
	if got, err := ParseFieldType("lstring"); err != nil || got != FTLString {
		t.Errorf("TestParseFieldType: got %v, %v, want %v, nil", got, err, FTLString)
	}
	if _, err := ParseFieldType("Double"); err == nil {
		t.Errorf("TestParseFieldType(Double): got err == nil, want err != nil")
	}
}
