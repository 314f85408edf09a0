// Package snip decodes and encodes game subrecords against a schema.
//
// The work is done by the schema, codec and session packages. This package names the
// field types for callers that build schemas in code, and offers one shot Decode and
// Encode for callers that do not need a session.
package snip

import (
	"context"

	"github.com/bearlytools/snip/codec"
	"github.com/bearlytools/snip/internal/field"
	"github.com/bearlytools/snip/schema"
)

// FieldType is the type of a subrecord element.
type FieldType = field.Type

const (
	FTUnknown = field.FTUnknown
	FTUInt    = field.FTUInt
	FTInt     = field.FTInt
	FTFloat   = field.FTFloat
	FTUShort  = field.FTUShort
	FTShort   = field.FTShort
	FTByte    = field.FTByte
	FTSByte   = field.FTSByte
	FTFormID  = field.FTFormID
	FTString  = field.FTString
	FTBString = field.FTBString
	FTIString = field.FTIString
	FTLString = field.FTLString
	FTStr4    = field.FTStr4
)

// ParseFieldType returns the FieldType named s, ignoring case.
func ParseFieldType(s string) (FieldType, error) {
	return field.Parse(s)
}

// Decode decodes data as an instance of sub with a codec built from options.
func Decode(ctx context.Context, sub *schema.Subrecord, data []byte, options ...codec.Option) (*codec.List, error) {
	c, err := codec.New(options...)
	if err != nil {
		return nil, err
	}
	return c.Decode(ctx, sub, data)
}

// Encode encodes the enabled fields of list with a codec built from options.
func Encode(ctx context.Context, list *codec.List, options ...codec.Option) ([]byte, error) {
	c, err := codec.New(options...)
	if err != nil {
		return nil, err
	}
	return c.Encode(ctx, list)
}
