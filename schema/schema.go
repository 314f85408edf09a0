// Package schema holds the declarative description of subrecord layouts. A Subrecord is
// an ordered list of Elements, each describing one field's type, grouping, repetition and
// presentation. Schemas are built once, validated and never mutated afterwards.
//
// Schemas can be written in a small line oriented language (see ParseIDL) or in YAML
// (see ParseYAML).
package schema

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/field"
)

// DefaultCodePage is used when a schema file does not name one.
const DefaultCodePage = "windows-1252"

// maxFlags is the number of bit labels the widest integer type can carry.
const maxFlags = 32

// Option is a named value offered as a choice for an Element.
type Option struct {
	Name  string
	Value string
}

// Element describes one field of a subrecord.
type Element struct {
	// Name is the field's name. Required.
	Name string
	// Description is free form help text.
	Description string
	// Type is how the field is stored.
	Type field.Type
	// Group is 0 when the element is standalone. Consecutive elements that share a
	// non-zero Group are alternatives over the same bytes.
	Group int
	// Repeat > 0 means the element may occur any number of times.
	Repeat int
	// Optional elements may be absent when the data ends before them.
	Optional bool
	// Hex renders integers as 0x prefixed hex.
	Hex bool
	// Multiline is a presentation hint for long strings.
	Multiline bool
	// Options are the enumerated choices for the field.
	Options []Option
	// Flags labels the bits of an integer field, lowest bit first.
	Flags []string
	// FormIDType is the category used for FormID lookups.
	FormIDType string
}

// HasFlags reports if the element is edited as a set of bit flags. That takes at least
// two labels and no options; a single label or an option list leaves the field a plain
// number.
func (e *Element) HasFlags() bool {
	return len(e.Options) == 0 && len(e.Flags) > 1
}

// Validate checks the element for definition errors.
func (e *Element) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("element must have a name")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("element %q: %s: %w", e.Name, e.Type, errors.ErrUnknownFieldType)
	}
	if e.Group < 0 {
		return fmt.Errorf("element %q: group %d cannot be negative", e.Name, e.Group)
	}
	if e.Repeat < 0 {
		return fmt.Errorf("element %q: repeat %d cannot be negative", e.Name, e.Repeat)
	}
	if e.Group != 0 && e.Repeat != 0 {
		return fmt.Errorf("element %q: a grouped element cannot repeat", e.Name)
	}
	if len(e.Flags) > 0 {
		if !field.IsInteger(e.Type) {
			return fmt.Errorf("element %q: flags are only allowed on integer types, not %s", e.Name, e.Type)
		}
		if len(e.Flags) > field.Width(e.Type)*8 || len(e.Flags) > maxFlags {
			return fmt.Errorf("element %q: %d flags do not fit in a %s", e.Name, len(e.Flags), e.Type)
		}
	}
	for _, o := range e.Options {
		if o.Name == "" {
			return fmt.Errorf("element %q: option with value %q has no name", e.Name, o.Value)
		}
	}
	return nil
}

// Subrecord is a validated, ordered list of elements.
type Subrecord struct {
	name     string
	elements []Element
}

// NewSubrecord validates elements and returns a Subrecord that owns a copy of them.
func NewSubrecord(name string, elements ...Element) (*Subrecord, error) {
	if name == "" {
		return nil, fmt.Errorf("subrecord must have a name")
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("subrecord %q has no elements", name)
	}
	s := &Subrecord{name: name, elements: make([]Element, len(elements))}
	for i, e := range elements {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("subrecord %q element %d: %w", name, i, err)
		}
		e.Options = slices.Clone(e.Options)
		e.Flags = slices.Clone(e.Flags)
		s.elements[i] = e
	}
	return s, nil
}

// MustNewSubrecord is NewSubrecord that panics on error. For tests and static tables.
func MustNewSubrecord(name string, elements ...Element) *Subrecord {
	s, err := NewSubrecord(name, elements...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the subrecord's name, such as "BOOK:DATA".
func (s *Subrecord) Name() string {
	return s.name
}

// Len is the number of elements.
func (s *Subrecord) Len() int {
	return len(s.elements)
}

// Element returns element i. The returned value must not be modified.
func (s *Subrecord) Element(i int) *Element {
	return &s.elements[i]
}

// Elements returns a copy of the element list.
func (s *Subrecord) Elements() []Element {
	return slices.Clone(s.elements)
}

// Set is every subrecord defined by one schema file.
type Set struct {
	// CodePage is the name of the 8 bit code page strings are stored in.
	CodePage string

	subs map[string]*Subrecord
}

// NewSet returns an empty Set. An empty codePage means DefaultCodePage.
func NewSet(codePage string) *Set {
	if codePage == "" {
		codePage = DefaultCodePage
	}
	return &Set{CodePage: codePage, subs: map[string]*Subrecord{}}
}

// Add adds s to the set. Names must be unique.
func (st *Set) Add(s *Subrecord) error {
	if _, ok := st.subs[s.name]; ok {
		return fmt.Errorf("subrecord %q defined twice", s.name)
	}
	st.subs[s.name] = s
	return nil
}

// Get returns the named subrecord.
func (st *Set) Get(name string) (*Subrecord, bool) {
	s, ok := st.subs[name]
	return s, ok
}

// Names returns the sorted subrecord names.
func (st *Set) Names() []string {
	names := make([]string, 0, len(st.subs))
	for n := range st.subs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len is the number of subrecords in the set.
func (st *Set) Len() int {
	return len(st.subs)
}
