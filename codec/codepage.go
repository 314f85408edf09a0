package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/schema"
)

// privateBase is where bytes go that a code page leaves unassigned and whose C1 or
// Latin-1 rune is already taken by an assigned byte.
const privateBase = 0xF700

// codePage is a lossless single byte code page. Every byte decodes to a distinct rune
// and that rune encodes back to the same byte. Bytes the code page leaves unassigned
// decode to U+0080+(b-0x80), the C1 control or Latin-1 rune of the same value.
type codePage struct {
	name string
	dec  [256]rune
	enc  map[rune]byte
}

var defaultCodePage = newCodePage(schema.DefaultCodePage, charmap.Windows1252)

func newCodePage(name string, cm *charmap.Charmap) *codePage {
	cp := &codePage{name: name, enc: make(map[rune]byte, 256)}

	var unassigned []int
	for b := 0; b < 256; b++ {
		r := cm.DecodeByte(byte(b))
		if r == utf8.RuneError {
			unassigned = append(unassigned, b)
			continue
		}
		if _, taken := cp.enc[r]; taken {
			unassigned = append(unassigned, b)
			continue
		}
		cp.dec[b] = r
		cp.enc[r] = byte(b)
	}
	for _, b := range unassigned {
		r := rune(b)
		if _, taken := cp.enc[r]; taken {
			r = privateBase + rune(b)
		}
		cp.dec[b] = r
		cp.enc[r] = byte(b)
	}
	return cp
}

func lookupCodePage(name string) (*codePage, error) {
	if name == "" {
		return defaultCodePage, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown code page %q: %w", name, err)
	}
	cm, ok := enc.(*charmap.Charmap)
	if !ok {
		return nil, fmt.Errorf("code page %q is not a single byte encoding", name)
	}
	return newCodePage(name, cm), nil
}

// decodeString converts code page bytes to a string. Every byte has a rune, so this
// cannot fail.
func (c *Codec) decodeString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, x := range b {
		sb.WriteRune(c.cp.dec[x])
	}
	return sb.String()
}

// encodeString converts s to code page bytes. Runes the code page cannot represent are
// a validation error.
func (c *Codec) encodeString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		b, ok := c.cp.enc[r]
		if !ok {
			return nil, fmt.Errorf("text cannot be written in code page %s (%U at byte %d): %w", c.cp.name, r, i, errors.ErrValidation)
		}
		out = append(out, b)
	}
	return out, nil
}
