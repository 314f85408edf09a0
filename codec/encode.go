package codec

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/binary"
	"github.com/bearlytools/snip/internal/field"
)

// FieldError describes a field whose text could not be encoded.
type FieldError struct {
	// Index is the field's position in the List.
	Index int
	// Name is the element name.
	Name string
	// Text is the text that was rejected.
	Text string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %d (%s): cannot encode %q: %v", e.Index, e.Name, e.Text, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// str4Pad fills a Str4 whose text is shorter than 4 bytes.
const str4Pad = '2'

/*
Encode writes the enabled fields of list, in order, and returns the bytes. Disabled
fields are skipped.

Numeric text starting with "0x" is read as hex, so "0xFFFFFFFF" is -1 for an Int and
a Float's raw bits. Other numeric text is decimal. FormIDs and LString ids are always
unprefixed hex. BString and IString lengths are taken from the encoded text.

Any field that cannot be encoded fails the whole call with a ValidationError wrapping
a *FieldError, and no bytes are returned.
*/
func (c *Codec) Encode(ctx context.Context, list *List) ([]byte, error) {
	type lstringAt struct {
		index, start, end int
	}
	var (
		out      []byte
		lstrings []lstringAt
	)

	for i := range list.Fields {
		f := &list.Fields[i]
		if !f.Enabled {
			continue
		}
		start := len(out)
		b, err := c.encodeField(out, f)
		if err != nil {
			if errors.Is(err, errors.ErrUnknownFieldType) {
				return nil, errors.E(ctx, errors.CatSchema, errors.TypeUnknownFieldType, err)
			}
			return nil, c.validationErr(ctx, i, f, err)
		}
		out = b
		if f.Element.Type == field.FTLString {
			lstrings = append(lstrings, lstringAt{i, start, len(out)})
		}
	}

	// An LString is told apart from an id by looking at the bytes that follow it, so
	// check each one reads back the way it was written.
	for _, at := range lstrings {
		f := &list.Fields[at.index]
		inline := f.LString != nil && f.LString.Inline
		switch {
		case inline && at.end != len(out):
			return nil, c.validationErr(ctx, at.index, f, fmt.Errorf("inline text must be the last value written"))
		case inline && !likelyString(out[at.start:]):
			return nil, c.validationErr(ctx, at.index, f, fmt.Errorf("inline text has characters that would read back as a string id"))
		case !inline && likelyString(out[at.start:]):
			return nil, c.validationErr(ctx, at.index, f, fmt.Errorf("string id would read back as inline text"))
		}
	}
	return out, nil
}

func (c *Codec) validationErr(ctx context.Context, i int, f *Field, err error) error {
	if !errors.Is(err, errors.ErrValidation) {
		err = fmt.Errorf("%w: %w", errors.ErrValidation, err)
	}
	text := f.Value.Text
	if f.LString != nil && f.LString.Inline {
		text = f.LString.Text
	}
	return errors.E(ctx, errors.CatUser, errors.TypeValidation, &FieldError{Index: i, Name: f.Element.Name, Text: text, Err: err})
}

// encodeField appends the bytes of f to out.
func (c *Codec) encodeField(out []byte, f *Field) ([]byte, error) {
	text := f.Value.Text
	e := f.Element

	switch e.Type {
	case field.FTUInt, field.FTInt, field.FTUShort, field.FTShort, field.FTByte, field.FTSByte:
		bits := field.Width(e.Type) * 8
		u, err := parseInt(text, bits, e.Type == field.FTInt || e.Type == field.FTShort || e.Type == field.FTSByte)
		if err != nil {
			return nil, err
		}
		switch bits {
		case 8:
			return append(out, byte(u)), nil
		case 16:
			return binary.Append(out, uint16(u)), nil
		}
		return binary.Append(out, uint32(u)), nil
	case field.FTFloat:
		bits, err := parseFloat(text)
		if err != nil {
			return nil, err
		}
		return binary.Append(out, bits), nil
	case field.FTFormID:
		u, err := strconv.ParseUint(strings.TrimSpace(text), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("FormID must be unprefixed hex: %w", numErr(err))
		}
		return binary.Append(out, uint32(u)), nil
	case field.FTString:
		b, err := c.encodeString(text)
		if err != nil {
			return nil, err
		}
		if bytes.IndexByte(b, 0) >= 0 {
			return nil, fmt.Errorf("string cannot contain a zero byte")
		}
		out = append(out, b...)
		return append(out, 0), nil
	case field.FTBString:
		b, err := c.encodeString(text)
		if err != nil {
			return nil, err
		}
		if len(b) > math.MaxUint16 {
			return nil, fmt.Errorf("string of %d bytes is too long for a 2 byte length", len(b))
		}
		out = binary.Append(out, uint16(len(b)))
		return append(out, b...), nil
	case field.FTIString:
		b, err := c.encodeString(text)
		if err != nil {
			return nil, err
		}
		if len(b) > math.MaxInt32 {
			return nil, fmt.Errorf("string of %d bytes is too long for a 4 byte length", len(b))
		}
		out = binary.Append(out, int32(len(b)))
		return append(out, b...), nil
	case field.FTLString:
		if f.LString != nil && f.LString.Inline {
			b, err := c.encodeString(f.LString.Text)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
			return append(out, 0), nil
		}
		u, err := strconv.ParseUint(strings.TrimSpace(text), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("string id must be unprefixed hex: %w", numErr(err))
		}
		return binary.Append(out, uint32(u)), nil
	case field.FTStr4:
		b, err := c.encodeString(text)
		if err != nil {
			return nil, err
		}
		s4 := [4]byte{str4Pad, str4Pad, str4Pad, str4Pad}
		copy(s4[:], b)
		return append(out, s4[:]...), nil
	}
	return nil, fmt.Errorf("%s: %w", e.Type, errors.ErrUnknownFieldType)
}

// parseInt parses text as an integer of the given bit size and returns its two's
// complement bits. Text starting with "0x" is hex.
func parseInt(text string, bits int, signed bool) (uint64, error) {
	t := strings.TrimSpace(text)
	if h, ok := strings.CutPrefix(t, "0x"); ok {
		u, err := strconv.ParseUint(h, 16, bits)
		return u, numErr(err)
	}
	if signed {
		v, err := strconv.ParseInt(t, 10, bits)
		return uint64(v) & (1<<bits - 1), numErr(err)
	}
	u, err := strconv.ParseUint(t, 10, bits)
	return u, numErr(err)
}

// parseFloat returns the IEEE-754 bits of text. Text starting with "0x" is the bits.
func parseFloat(text string) (uint32, error) {
	t := strings.TrimSpace(text)
	if h, ok := strings.CutPrefix(t, "0x"); ok {
		u, err := strconv.ParseUint(h, 16, 32)
		return uint32(u), numErr(err)
	}
	v, err := strconv.ParseFloat(t, 32)
	if err != nil {
		return 0, numErr(err)
	}
	return math.Float32bits(float32(v)), nil
}

// numErr strips the function name and input from strconv errors, the FieldError
// already carries the text.
func numErr(err error) error {
	if err == nil {
		return nil
	}
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
