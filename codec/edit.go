package codec

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/bits"
	"github.com/bearlytools/snip/internal/field"
	"github.com/bearlytools/snip/schema"
)

// The Apply functions edit a copy of a List and return it. The input List is never
// changed, so a caller can keep it for undo.

func checkIndex(l *List, index int) error {
	if index < 0 || index >= len(l.Fields) {
		return fmt.Errorf("field index %d out of range [0, %d): %w", index, len(l.Fields), errors.ErrPositionOutOfRange)
	}
	return nil
}

// ApplyGroupSelection makes the field at index the enabled alternate of its group
// occurrence and disables the other alternates of that occurrence.
func ApplyGroupSelection(l *List, index int) (*List, error) {
	if err := checkIndex(l, index); err != nil {
		return nil, err
	}
	g := l.Fields[index].Group
	if g == 0 {
		return nil, fmt.Errorf("field %d (%s) is not in a group: %w", index, l.Fields[index].Element.Name, errors.ErrValidation)
	}

	n := l.clone()
	start, end := index, index
	for start > 0 && n.Fields[start-1].Group == g {
		start--
	}
	for end < len(n.Fields)-1 && n.Fields[end+1].Group == g {
		end++
	}
	for i := start; i <= end; i++ {
		n.Fields[i].Enabled = i == index
	}
	return n, nil
}

// ApplyRepeatToggle switches an optional field or a repeat occurrence on or off.
//
// Switching on enables the field and, when the last element of the subrecord repeats,
// appends a disabled placeholder for its next occurrence. Switching off disables the
// field and removes every field after it. The text of removed fields is remembered and
// given back to placeholders created later at the same position.
func (c *Codec) ApplyRepeatToggle(l *List, index int, on bool) (*List, error) {
	if err := checkIndex(l, index); err != nil {
		return nil, err
	}
	if f := &l.Fields[index]; !f.Toggle() {
		return nil, fmt.Errorf("field %d (%s) cannot be switched on or off: %w", index, f.Element.Name, errors.ErrValidation)
	}

	n := l.clone()
	f := &n.Fields[index]
	if !on {
		f.Enabled = false
		for i := index + 1; i < len(n.Fields); i++ {
			n.removed[i] = n.Fields[i].Value.Text
		}
		n.Fields = n.Fields[:index+1]
		return n, nil
	}

	if f.Enabled {
		return n, nil
	}
	f.Enabled = true
	f.Placeholder = false

	last := n.Subrecord.Len() - 1
	if e := n.Subrecord.Element(last); e.Repeat > 0 {
		ri := 0
		for _, prev := range n.Fields {
			if prev.Element == e {
				ri = prev.RepeatIndex + 1
			}
		}
		n.Fields = append(n.Fields, c.placeholder(n, e, f.Offset, ri))
	}
	return n, nil
}

// ApplyText replaces the text of the field at index. It is not checked until Encode.
func ApplyText(l *List, index int, text string) (*List, error) {
	if err := checkIndex(l, index); err != nil {
		return nil, err
	}
	n := l.clone()
	n.Fields[index].Value.Text = text
	return n, nil
}

// ApplyChoice sets the text of the field at index to the value of one of its Choices.
func ApplyChoice(l *List, index, choice int) (*List, error) {
	if err := checkIndex(l, index); err != nil {
		return nil, err
	}
	f := &l.Fields[index]
	if choice < 0 || choice >= len(f.Choices) {
		return nil, fmt.Errorf("field %d (%s) has no choice %d: %w", index, f.Element.Name, choice, errors.ErrValidation)
	}
	n := l.clone()
	n.Fields[index].Value.Text = f.Choices[choice].Value
	if f.Element.Type == field.FTFormID {
		n.Fields[index].Display = f.Choices[choice].Name
	}
	return n, nil
}

// ApplyFlags sets a flags field to mask, written as hex.
func ApplyFlags(l *List, index int, mask uint32) (*List, error) {
	if err := checkIndex(l, index); err != nil {
		return nil, err
	}
	f := &l.Fields[index]
	if !f.Element.HasFlags() {
		return nil, fmt.Errorf("field %d (%s) has no flags: %w", index, f.Element.Name, errors.ErrValidation)
	}
	w := field.Width(f.Element.Type)
	if !bits.Fits(mask, w*8) {
		return nil, fmt.Errorf("field %d (%s): mask 0x%X does not fit in a %s: %w", index, f.Element.Name, mask, f.Element.Type, errors.ErrValidation)
	}
	n := l.clone()
	n.Fields[index].Value.Text = fmt.Sprintf("0x%0*X", w*2, mask)
	return n, nil
}

// ActiveFlags returns the labels of the bits set in a flags field.
func ActiveFlags(f *Field) ([]string, error) {
	if !f.Element.HasFlags() {
		return nil, nil
	}
	u, err := parseInt(f.Value.Text, field.Width(f.Element.Type)*8, false)
	if err != nil {
		// Signed decimal text is still a valid flags value.
		if u, err = parseInt(f.Value.Text, field.Width(f.Element.Type)*8, true); err != nil {
			return nil, fmt.Errorf("field %s: %q is not a number: %w", f.Element.Name, f.Value.Text, errors.ErrValidation)
		}
	}
	var out []string
	for i, name := range f.Element.Flags {
		if bits.IsSet(u, i) {
			out = append(out, name)
		}
	}
	return out, nil
}

// FlagMask returns the mask with the bits of the named flags of e set.
func FlagMask(e *schema.Element, labels ...string) (uint32, error) {
	var mask uint32
	for _, label := range labels {
		i := slices.Index(e.Flags, strings.TrimSpace(label))
		if i < 0 {
			return 0, fmt.Errorf("element %s has no flag %q: %w", e.Name, label, errors.ErrValidation)
		}
		mask = bits.Set(mask, i)
	}
	return mask, nil
}

// ApplyLString switches an LString between inline text and a string id. When inline
// is set, text is the inline text. Otherwise text is the id as unprefixed hex.
func ApplyLString(l *List, index int, inline bool, text string) (*List, error) {
	if err := checkIndex(l, index); err != nil {
		return nil, err
	}
	if l.Fields[index].Element.Type != field.FTLString {
		return nil, fmt.Errorf("field %d (%s) is not an LString: %w", index, l.Fields[index].Element.Name, errors.ErrValidation)
	}
	n := l.clone()
	f := &n.Fields[index]
	if f.LString == nil {
		f.LString = &LString{}
	}
	f.LString.Inline = inline
	if inline {
		f.LString.Text = text
		f.LString.ID = 0
		f.Value.Text = fmt.Sprintf("%08X", 0)
		return n, nil
	}
	f.Value.Text = text
	return n, nil
}
