package schema

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/conversions"
	"github.com/bearlytools/snip/internal/field"
)

// yamlFile is the YAML form of a schema file:
//
//	codepage: windows-1252
//	subrecords:
//	  - name: BOOK:DATA
//	    elements:
//	      - {name: Flags, type: Byte, hex: true, flags: [Scroll, CanTakeSkill]}
//	      - name: Skill
//	        type: SByte
//	        options:
//	          - {name: None, value: "-1"}
type yamlFile struct {
	CodePage   string          `yaml:"codepage"`
	Subrecords []yamlSubrecord `yaml:"subrecords"`
}

type yamlSubrecord struct {
	Name     string        `yaml:"name"`
	Elements []yamlElement `yaml:"elements"`
}

type yamlElement struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Type        string       `yaml:"type"`
	Group       int          `yaml:"group"`
	Repeat      int          `yaml:"repeat"`
	Optional    bool         `yaml:"optional"`
	Hex         bool         `yaml:"hex"`
	Multiline   bool         `yaml:"multiline"`
	Options     []yamlOption `yaml:"options"`
	Flags       []string     `yaml:"flags"`
	FormIDType  string       `yaml:"formid"`
}

type yamlOption struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ParseYAML parses a schema written in YAML. Unknown keys are rejected.
func ParseYAML(ctx context.Context, b []byte) (*Set, error) {
	var yf yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&yf); err != nil {
		return nil, schemaErr(ctx, fmt.Errorf("schema yaml: %w", err))
	}

	set := NewSet(yf.CodePage)
	for _, ys := range yf.Subrecords {
		elems := make([]Element, 0, len(ys.Elements))
		for _, ye := range ys.Elements {
			e, err := ye.element()
			if err != nil {
				return nil, schemaErr(ctx, fmt.Errorf("subrecord %q: %w", ys.Name, err))
			}
			elems = append(elems, e)
		}
		sub, err := NewSubrecord(ys.Name, elems...)
		if err != nil {
			return nil, schemaErr(ctx, err)
		}
		if err := set.Add(sub); err != nil {
			return nil, schemaErr(ctx, err)
		}
	}
	if set.Len() == 0 {
		return nil, schemaErr(ctx, fmt.Errorf("schema defines no subrecords"))
	}
	return set, nil
}

func (ye yamlElement) element() (Element, error) {
	t, err := field.Parse(ye.Type)
	if err != nil {
		return Element{}, fmt.Errorf("element %q: %v: %w", ye.Name, err, errors.ErrUnknownFieldType)
	}
	e := Element{
		Name:        ye.Name,
		Description: ye.Description,
		Type:        t,
		Group:       ye.Group,
		Repeat:      ye.Repeat,
		Optional:    ye.Optional,
		Hex:         ye.Hex,
		Multiline:   ye.Multiline,
		Flags:       ye.Flags,
		FormIDType:  ye.FormIDType,
	}
	for _, o := range ye.Options {
		e.Options = append(e.Options, Option{Name: o.Name, Value: o.Value})
	}
	return e, nil
}

// Load reads a schema file. Files ending in .yaml or .yml are YAML, anything else is
// treated as IDL.
func Load(ctx context.Context, path string) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(ctx, b)
	}
	return ParseIDL(ctx, conversions.ByteSlice2String(b))
}
