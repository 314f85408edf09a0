package codec

import (
	"fmt"
	"maps"
	"slices"

	"github.com/bearlytools/snip/schema"
)

// Value is a decoded value. Raw holds the typed value as read from the bytes (uint32,
// int32, float32, uint16, int16, uint8, int8 or string). Text is the editable form and
// is what Encode reads back.
type Value struct {
	Raw  any
	Text string
}

// LString is the extra state of an LString field.
type LString struct {
	// Inline is set when the field holds its text directly instead of a string id.
	Inline bool
	// Text is the inline text, or the resolved text of ID when it could be resolved.
	Text string
	// ID is the localized string id. It is 0 for inline strings.
	ID uint32
	// Resolved reports if the StringResolver knew ID.
	Resolved bool
}

// Field is one decoded element.
type Field struct {
	// Element is the schema element the field was decoded from.
	Element *schema.Element
	// Offset is the byte offset within the decoded span. Placeholders hold the offset
	// at which they would be written.
	Offset int
	// Enabled fields are written by Encode. Losing group alternates and disabled
	// optional or repeat tails are not.
	Enabled bool
	// Group is Element.Group, copied for convenience.
	Group int
	// RepeatIndex counts occurrences of a repeating element, starting at 0.
	RepeatIndex int
	// Placeholder is set when no bytes were decoded for the field.
	Placeholder bool
	Value       Value
	// LString is only set for LString fields.
	LString *LString
	// Display is the name of a FormID as given by the FormIDResolver.
	Display string
	// Choices are the element's options, or the scanned FormIDs of its category.
	Choices []schema.Option
}

// Toggle reports if the field has an on/off switch that ApplyRepeatToggle accepts.
// Optional fields have one, as does every occurrence of a repeating element but the
// first.
func (f *Field) Toggle() bool {
	return f.Element.Optional || (f.Element.Repeat > 0 && f.RepeatIndex > 0)
}

func (f Field) clone() Field {
	if f.LString != nil {
		ls := *f.LString
		f.LString = &ls
	}
	return f
}

// List is the ordered field list of one subrecord. A List belongs to the editing
// session that decoded it. Edit functions return a new List and leave their input as is.
type List struct {
	Subrecord *schema.Subrecord
	Fields    []Field

	// removed holds the text of fields dropped by a repeat toggle, keyed by position.
	removed map[int]string
}

// Len is the number of fields.
func (l *List) Len() int {
	return len(l.Fields)
}

// Field returns field i.
func (l *List) Field(i int) (*Field, error) {
	if i < 0 || i >= len(l.Fields) {
		return nil, fmt.Errorf("field index %d out of range [0, %d)", i, len(l.Fields))
	}
	return &l.Fields[i], nil
}

// Lookup returns the index of the first field named name, or -1.
func (l *List) Lookup(name string) int {
	for i, f := range l.Fields {
		if f.Element.Name == name {
			return i
		}
	}
	return -1
}

func (l *List) clone() *List {
	n := &List{
		Subrecord: l.Subrecord,
		Fields:    make([]Field, len(l.Fields)),
		removed:   maps.Clone(l.removed),
	}
	for i, f := range l.Fields {
		n.Fields[i] = f.clone()
	}
	if n.removed == nil {
		n.removed = map[int]string{}
	}
	return n
}

// Enabled returns the indexes of enabled fields.
func (l *List) Enabled() []int {
	var out []int
	for i, f := range l.Fields {
		if f.Enabled {
			out = append(out, i)
		}
	}
	return slices.Clip(out)
}
