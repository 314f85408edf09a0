package schema

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/johnsiilver/halfpike"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/field"
)

/*
ParseIDL parses a schema written in the snip IDL. A file looks like:

	// Comments start with two slashes.
	codepage windows-1252

	Subrecord BOOK:DATA {
		Flags    Byte   hex flags=Scroll,CanTakeSkill  // book flags
		Skill    SByte  options=None:-1,Alchemy:20
		Value    UInt
		Weight   Float
	}

Each element line is a name, a type and then any number of attributes:

	hex                 render integers as hex
	optional            the element may be missing at the end of the data
	multiline           long text hint
	repeat, repeat=N    the element repeats until the data runs out
	group=N             alternatives over the same bytes
	formid=CAT          FormID lookup category
	flags=A,B,C         bit labels, lowest bit first
	options=Name:Val,.. enumerated choices

Text after // on an element line becomes the element's description. Option and flag
names cannot contain spaces or commas; use the YAML form when they must.
*/
func ParseIDL(ctx context.Context, content string) (*Set, error) {
	f := &idlFile{set: NewSet("")}
	if err := halfpike.Parse(ctx, content, f); err != nil {
		if f.err != nil {
			err = f.err
		}
		return nil, schemaErr(ctx, err)
	}
	return f.set, nil
}

// idlFile holds the halfpike parse state for one IDL file.
type idlFile struct {
	set *Set
	eof bool
	// err is the first error that carries a kind, kept because halfpike formats errors.
	err error
}

func (f *idlFile) Validate() error {
	if f.set.Len() == 0 {
		return fmt.Errorf("schema defines no subrecords")
	}
	return nil
}

// Start is the start point for reading the IDL.
func (f *idlFile) Start(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	return f.FindNext
}

// next returns the next line that has content along with its words, stopping at a
// comment. ok is false at the end of the input.
func (f *idlFile) next(p *halfpike.Parser) (l halfpike.Line, w []string, ok bool) {
	for !f.eof {
		l = p.Next()
		if p.EOF(l) {
			f.eof = true
		}
		w = words(l)
		if len(w) > 0 {
			return l, w, true
		}
	}
	return l, nil, false
}

func words(l halfpike.Line) []string {
	var w []string
	for _, item := range l.Items {
		if item.Val == "" {
			continue
		}
		if isComment(item) {
			break
		}
		w = append(w, item.Val)
	}
	return w
}

func isComment(item halfpike.Item) bool {
	return strings.HasPrefix(item.Val, "//")
}

func (f *idlFile) FindNext(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	l, w, ok := f.next(p)
	if !ok {
		return nil
	}

	switch w[0] {
	case "codepage":
		if f.set.Len() != 0 {
			return p.Errorf("[Line %d] 'codepage' must come before any Subrecord", l.LineNum)
		}
		if len(w) != 2 {
			return p.Errorf("[Line %d] error: got %q, want: 'codepage {{name}}'", l.LineNum, l.Raw)
		}
		f.set.CodePage = w[1]
		return f.FindNext
	case "Subrecord":
		p.Backup()
		return f.ParseSubrecord
	}
	for _, kw := range []string{"codepage", "Subrecord"} {
		if err := caseSensitiveCheck(kw, w[0]); err != nil && strings.EqualFold(kw, w[0]) {
			return p.Errorf("[Line %d] error: %s", l.LineNum, err)
		}
	}
	return p.Errorf("[Line %d] do not understand this line: %q", l.LineNum, strings.TrimSpace(l.Raw))
}

// ParseSubrecord reads a "Subrecord NAME {" block through its closing brace.
func (f *idlFile) ParseSubrecord(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	l, w, _ := f.next(p)
	if len(w) != 3 || w[2] != "{" {
		return p.Errorf("[Line %d] error: got %q, want: 'Subrecord {{name}} {'", l.LineNum, strings.TrimSpace(l.Raw))
	}
	name := w[1]

	var elems []Element
	for {
		l, w, ok := f.next(p)
		if !ok {
			return p.Errorf("[Line %d] Subrecord %s: EOF reached before closing '}'", l.LineNum, name)
		}
		if w[0] == "}" {
			if len(w) != 1 {
				return p.Errorf("[Line %d] error: unexpected %q after '}'", l.LineNum, halfpike.ItemJoin(l, 1, len(l.Items)))
			}
			break
		}
		e, err := parseElement(w)
		if err != nil {
			f.keep(err)
			return p.Errorf("[Line %d] Subrecord %s: %s", l.LineNum, name, err)
		}
		if i := strings.Index(l.Raw, "//"); i >= 0 {
			e.Description = strings.TrimSpace(l.Raw[i+2:])
		}
		elems = append(elems, e)
	}

	sub, err := NewSubrecord(name, elems...)
	if err != nil {
		f.keep(err)
		return p.Errorf("%s", err)
	}
	if err := f.set.Add(sub); err != nil {
		return p.Errorf("%s", err)
	}
	return f.FindNext
}

func (f *idlFile) keep(err error) {
	if f.err == nil {
		f.err = err
	}
}

func parseElement(w []string) (Element, error) {
	if len(w) < 2 {
		return Element{}, fmt.Errorf("element line needs a name and a type, got %q", strings.Join(w, " "))
	}
	e := Element{Name: w[0]}
	t, err := field.Parse(w[1])
	if err != nil {
		return Element{}, fmt.Errorf("element %q: %v: %w", w[0], err, errors.ErrUnknownFieldType)
	}
	e.Type = t

	for _, attr := range w[2:] {
		key, val, hasVal := strings.Cut(attr, "=")
		if hasVal && val == "" {
			return Element{}, fmt.Errorf("element %q: attribute %q has no value", e.Name, key)
		}
		switch key {
		case "hex":
			e.Hex = true
		case "optional":
			e.Optional = true
		case "multiline":
			e.Multiline = true
		case "repeat":
			e.Repeat = 1
			if hasVal {
				if e.Repeat, err = strconv.Atoi(val); err != nil {
					return Element{}, fmt.Errorf("element %q: repeat=%s is not an integer", e.Name, val)
				}
			}
		case "group":
			if e.Group, err = strconv.Atoi(val); err != nil {
				return Element{}, fmt.Errorf("element %q: group=%s is not an integer", e.Name, val)
			}
		case "formid":
			e.FormIDType = val
		case "flags":
			e.Flags = strings.Split(val, ",")
		case "options":
			for _, o := range strings.Split(val, ",") {
				n, v, ok := strings.Cut(o, ":")
				if !ok {
					return Element{}, fmt.Errorf("element %q: option %q must be Name:Value", e.Name, o)
				}
				e.Options = append(e.Options, Option{Name: n, Value: v})
			}
		default:
			return Element{}, fmt.Errorf("element %q: unknown attribute %q", e.Name, attr)
		}
	}
	return e, nil
}

func caseSensitiveCheck(want string, item string) error {
	if item != want {
		if strings.EqualFold(item, want) {
			return fmt.Errorf("%q keyword found, but it is required to be %q", item, want)
		}
		return fmt.Errorf("got: %q, want: %q", item, want)
	}
	return nil
}

func schemaErr(ctx context.Context, err error) error {
	t := errors.TypeParameter
	if errors.Is(err, errors.ErrUnknownFieldType) {
		t = errors.TypeUnknownFieldType
	}
	return errors.E(ctx, errors.CatSchema, t, err)
}
