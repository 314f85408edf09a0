package codec

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/binary"
	"github.com/bearlytools/snip/internal/field"
	"github.com/bearlytools/snip/schema"
)

// reader is a cursor over an immutable byte span.
type reader struct {
	data []byte
	off  int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, r.off, len(r.data)-r.off, errors.ErrStructureMismatch)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) rest() []byte {
	return r.data[r.off:]
}

// zeros is enough zero bytes to decode any element once. Placeholders are decoded from it.
var zeros [4]byte

/*
Decode decodes data according to sub.

Elements are visited in order with a single cursor:

  - An Optional element found at the end of data becomes a disabled placeholder.
  - Consecutive elements sharing a non-zero Group are all decoded from the offset where
    the group starts. The first is enabled, the others are disabled alternates. The
    cursor is not rewound when the group ends, so decoding resumes after the last
    alternate. When the alternates of a group are optional and data ends where the
    group starts, every alternate is a placeholder and none of them is enabled.
  - An element with Repeat > 0 is decoded again while data remains. If the last
    element repeats and was decoded at least once, a disabled placeholder for another
    occurrence is appended.

A StructureMismatch is returned when an element reads past the end of data, when a
String has no terminator or an IString a negative length, and when bytes are left
unread after the last element. The fields decoded before the mismatch are returned
with the error so a caller can show them, but they must not be encoded.

Alternates of different widths decode, but only the enabled alternate is encoded, so
such a record only encodes back to the same bytes when the enabled alternate is as
wide as the last one.
*/
func (c *Codec) Decode(ctx context.Context, sub *schema.Subrecord, data []byte) (*List, error) {
	list := &List{Subrecord: sub, removed: map[int]string{}}
	r := &reader{data: data}

	var (
		currentGroup int
		groupOffset  int
		repeated     int
		occurrences  = map[int]int{}
	)

	for i := 0; i < sub.Len(); i++ {
		e := sub.Element(i)

		if e.Optional && r.off == len(data) {
			list.Fields = append(list.Fields, c.placeholder(list, e, r.off, occurrences[i]))
			continue
		}

		enabled := true
		switch {
		case e.Group == 0:
			currentGroup = 0
		case e.Group != currentGroup:
			currentGroup = e.Group
			groupOffset = r.off
		default:
			r.off = groupOffset
			enabled = false
		}

		f := Field{
			Element:     e,
			Offset:      r.off,
			Enabled:     enabled,
			Group:       e.Group,
			RepeatIndex: occurrences[i],
		}
		if err := c.decodeField(r, e, &f); err != nil {
			return list, c.decodeErr(ctx, sub, i, err)
		}
		list.Fields = append(list.Fields, f)

		if e.Repeat > 0 {
			repeated++
			occurrences[i]++
			if r.off < len(data) {
				i--
			}
		}
	}
	if r.off != len(data) {
		err := fmt.Errorf("%d bytes left after the last element: %w", len(data)-r.off, errors.ErrStructureMismatch)
		return list, c.decodeErr(ctx, sub, sub.Len()-1, err)
	}

	last := sub.Len() - 1
	if e := sub.Element(last); e.Repeat > 0 && repeated > 0 {
		list.Fields = append(list.Fields, c.placeholder(list, e, len(data), occurrences[last]))
	}

	c.log.Debug("decoded subrecord", "subrecord", sub.Name(), "bytes", len(data), "fields", len(list.Fields))
	return list, nil
}

func (c *Codec) decodeErr(ctx context.Context, sub *schema.Subrecord, i int, err error) error {
	e := sub.Element(i)
	err = fmt.Errorf("subrecord %s element %d (%s %s): %w", sub.Name(), i, e.Name, e.Type, err)
	if errors.Is(err, errors.ErrUnknownFieldType) {
		return errors.E(ctx, errors.CatSchema, errors.TypeUnknownFieldType, err)
	}
	c.log.Debug("subrecord does not match its schema", "subrecord", sub.Name(), "error", err)
	return errors.E(ctx, errors.CatUser, errors.TypeStructureMismatch, err)
}

// placeholder returns a disabled field for e that holds no decoded bytes. Text removed
// from the same position by an earlier repeat toggle is restored.
func (c *Codec) placeholder(list *List, e *schema.Element, off, repeatIndex int) Field {
	f := Field{
		Element:     e,
		Offset:      off,
		Group:       e.Group,
		RepeatIndex: repeatIndex,
		Placeholder: true,
	}
	if err := c.decodeField(&reader{data: zeros[:]}, e, &f); err != nil {
		f.Value = Value{}
	}
	if t, ok := list.removed[len(list.Fields)]; ok {
		f.Value.Text = t
	}
	return f
}

// decodeField decodes one value of e at the cursor of r into f.
func (c *Codec) decodeField(r *reader, e *schema.Element, f *Field) error {
	f.Choices = e.Options

	switch e.Type {
	case field.FTUInt:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		v := binary.Get[uint32](b)
		f.Value = Value{Raw: v, Text: intText(e, uint64(v), strconv.FormatUint(uint64(v), 10))}
	case field.FTInt:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		v := binary.Get[int32](b)
		f.Value = Value{Raw: v, Text: intText(e, uint64(uint32(v)), strconv.FormatInt(int64(v), 10))}
	case field.FTUShort:
		b, err := r.take(2)
		if err != nil {
			return err
		}
		v := binary.Get[uint16](b)
		f.Value = Value{Raw: v, Text: intText(e, uint64(v), strconv.FormatUint(uint64(v), 10))}
	case field.FTShort:
		b, err := r.take(2)
		if err != nil {
			return err
		}
		v := binary.Get[int16](b)
		f.Value = Value{Raw: v, Text: intText(e, uint64(uint16(v)), strconv.FormatInt(int64(v), 10))}
	case field.FTByte:
		b, err := r.take(1)
		if err != nil {
			return err
		}
		v := b[0]
		f.Value = Value{Raw: v, Text: intText(e, uint64(v), strconv.FormatUint(uint64(v), 10))}
	case field.FTSByte:
		b, err := r.take(1)
		if err != nil {
			return err
		}
		v := int8(b[0])
		f.Value = Value{Raw: v, Text: intText(e, uint64(uint8(v)), strconv.FormatInt(int64(v), 10))}
	case field.FTFloat:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		bits := binary.Get[uint32](b)
		v := math.Float32frombits(bits)
		f.Value = Value{Raw: v, Text: floatText(v, bits)}
	case field.FTFormID:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		v := binary.Get[uint32](b)
		f.Value = Value{Raw: v, Text: fmt.Sprintf("%08X", v)}
		if c.resolve != nil {
			f.Display = c.resolve(e.FormIDType, f.Value.Text)
		}
		if opts := c.choices(e.FormIDType); opts != nil {
			f.Choices = opts
		}
	case field.FTString:
		i := bytes.IndexByte(r.rest(), 0)
		if i < 0 {
			return fmt.Errorf("string at offset %d has no terminator: %w", r.off, errors.ErrStructureMismatch)
		}
		b, _ := r.take(i + 1)
		s := c.decodeString(b[:i])
		f.Value = Value{Raw: s, Text: s}
	case field.FTBString:
		b, err := r.take(2)
		if err != nil {
			return err
		}
		if b, err = r.take(int(binary.Get[uint16](b))); err != nil {
			return err
		}
		s := c.decodeString(b)
		f.Value = Value{Raw: s, Text: s}
	case field.FTIString:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		n := binary.Get[int32](b)
		if n < 0 {
			return fmt.Errorf("string length %d at offset %d is negative: %w", n, r.off-4, errors.ErrStructureMismatch)
		}
		if b, err = r.take(int(n)); err != nil {
			return err
		}
		s := c.decodeString(b)
		f.Value = Value{Raw: s, Text: s}
	case field.FTLString:
		return c.decodeLString(r, f)
	case field.FTStr4:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		s := c.decodeString(b)
		f.Value = Value{Raw: s, Text: s}
	default:
		return fmt.Errorf("%s: %w", e.Type, errors.ErrUnknownFieldType)
	}
	return nil
}

func (c *Codec) decodeLString(r *reader, f *Field) error {
	if rest := r.rest(); likelyString(rest) {
		s := c.decodeString(rest[:len(rest)-1])
		r.off = len(r.data)
		f.Value = Value{Raw: s, Text: fmt.Sprintf("%08X", 0)}
		f.LString = &LString{Inline: true, Text: s}
		return nil
	}

	b, err := r.take(4)
	if err != nil {
		return err
	}
	id := binary.Get[uint32](b)
	ls := &LString{ID: id}
	if c.lstrings != nil {
		ls.Text, ls.Resolved = c.lstrings(id)
	}
	f.Value = Value{Raw: id, Text: fmt.Sprintf("%08X", id)}
	f.LString = ls
	return nil
}

// intText renders an integer whose unsigned bits are u. Elements with flags or the hex
// attribute render as 0x prefixed hex padded to the type's width, others use dec.
func intText(e *schema.Element, u uint64, dec string) string {
	if e.HasFlags() || e.Hex {
		return fmt.Sprintf("0x%0*X", field.Width(e.Type)*2, u)
	}
	return dec
}

// floatText renders a float with the fewest digits that read back to the same value.
// NaN and infinities are written as their raw bits so their payload survives.
func floatText(v float32, bits uint32) string {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return fmt.Sprintf("0x%08X", bits)
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
