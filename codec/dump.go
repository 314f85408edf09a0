package codec

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// FieldView is the JSON form of a Field written by Dump.
type FieldView struct {
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Offset      int      `json:"offset"`
	Enabled     bool     `json:"enabled"`
	Group       int      `json:"group,omitzero"`
	RepeatIndex int      `json:"repeatIndex,omitzero"`
	Placeholder bool     `json:"placeholder,omitzero"`
	Text        string   `json:"text"`
	Display     string   `json:"display,omitzero"`
	Inline      *bool    `json:"inline,omitempty"`
	String      string   `json:"string,omitzero"`
	Flags       []string `json:"flags,omitempty"`
	Description string   `json:"description,omitzero"`
}

// View returns the JSON form of every field in l.
func (l *List) View() []FieldView {
	views := make([]FieldView, 0, len(l.Fields))
	for i := range l.Fields {
		f := &l.Fields[i]
		v := FieldView{
			Index:       i,
			Name:        f.Element.Name,
			Type:        f.Element.Type.String(),
			Offset:      f.Offset,
			Enabled:     f.Enabled,
			Group:       f.Group,
			RepeatIndex: f.RepeatIndex,
			Placeholder: f.Placeholder,
			Text:        f.Value.Text,
			Display:     f.Display,
			Description: f.Element.Description,
		}
		if f.LString != nil {
			inline := f.LString.Inline
			v.Inline = &inline
			v.String = f.LString.Text
		}
		if flags, err := ActiveFlags(f); err == nil {
			v.Flags = flags
		}
		views = append(views, v)
	}
	return views
}

// Dump writes the fields of l as indented JSON.
func Dump(l *List) ([]byte, error) {
	return json.Marshal(l.View(), jsontext.WithIndent("  "))
}
