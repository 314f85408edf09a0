// Package codec decodes subrecord bytes into editable fields and encodes them back.
//
// Decoding walks a schema.Subrecord against a byte span and yields a List of Fields.
// Fields carry an editable text form that Encode parses to rebuild the exact bytes, so
// Encode(Decode(b)) == b for any span Decode accepts, unless a group holds alternates
// of different widths. Edits are made with the Apply functions, which return a new List.
//
// FormID and localized string lookups are supplied by the caller as callbacks.
package codec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gostdlib/base/concurrency/sync"

	"github.com/bearlytools/snip/chunk"
	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/schema"
)

// FormIDResolver returns the display name of the FormID hexID (8 hex digits) within
// category. It returns "" when the id is unknown.
type FormIDResolver func(category, hexID string) string

// FormIDScanner lists every FormID of a category as Name (display name) and Value
// (8 hex digits) pairs.
type FormIDScanner func(category string) []schema.Option

// StringResolver returns the localized text of a string id.
type StringResolver func(id uint32) (string, bool)

// Codec decodes and encodes subrecords. A Codec holds a cache of FormID scans, so one
// should live as long as the editing session that uses it.
type Codec struct {
	cp       *codePage
	resolve  FormIDResolver
	scan     FormIDScanner
	lstrings StringResolver
	log      *slog.Logger

	mu    sync.Mutex
	scans map[string][]schema.Option
}

// Option is an optional argument to New.
type Option func(c *Codec) error

// WithCodePage sets the code page strings are stored in by its WHATWG name, such as
// "windows-1252" or "windows-1251". The default is windows-1252.
func WithCodePage(name string) Option {
	return func(c *Codec) error {
		cp, err := lookupCodePage(name)
		if err != nil {
			return err
		}
		c.cp = cp
		return nil
	}
}

// WithFormIDResolver sets the callback used to name FormIDs.
func WithFormIDResolver(r FormIDResolver) Option {
	return func(c *Codec) error {
		c.resolve = r
		return nil
	}
}

// WithFormIDScanner sets the callback used to list FormID choices.
func WithFormIDScanner(s FormIDScanner) Option {
	return func(c *Codec) error {
		c.scan = s
		return nil
	}
}

// WithStringResolver sets the callback used to resolve LString ids.
func WithStringResolver(r StringResolver) Option {
	return func(c *Codec) error {
		c.lstrings = r
		return nil
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) error {
		if l == nil {
			return fmt.Errorf("WithLogger: logger cannot be nil")
		}
		c.log = l
		return nil
	}
}

// New creates a Codec.
func New(options ...Option) (*Codec, error) {
	c := &Codec{
		cp:    defaultCodePage,
		log:   slog.New(slog.DiscardHandler),
		scans: map[string][]schema.Option{},
	}
	for _, o := range options {
		if err := o(c); err != nil {
			return nil, errors.E(context.Background(), errors.CatUser, errors.TypeParameter, err)
		}
	}
	return c, nil
}

// CodePage returns the name of the code page in use.
func (c *Codec) CodePage() string {
	return c.cp.name
}

// choices returns the FormID choices for category, scanning at most once per category.
func (c *Codec) choices(category string) []schema.Option {
	if c.scan == nil || category == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if opts, ok := c.scans[category]; ok {
		return opts
	}
	opts := c.scan(category)
	c.scans[category] = opts
	c.log.Debug("scanned FormID category", "category", category, "count", len(opts))
	return opts
}

// DecodeBuffer decodes the valid output region of buf.
func (c *Codec) DecodeBuffer(ctx context.Context, sub *schema.Subrecord, buf *chunk.Buffer) (*List, error) {
	return c.Decode(ctx, sub, buf.Bytes(chunk.Output))
}

// EncodeInto encodes list into the output region of buf, replacing what was there.
// Nothing is written when encoding fails.
func (c *Codec) EncodeInto(ctx context.Context, list *List, buf *chunk.Buffer) error {
	b, err := c.Encode(ctx, list)
	if err != nil {
		return err
	}
	if len(b) > buf.Cap() {
		err := fmt.Errorf("%d encoded bytes exceeds capacity %d: %w", len(b), buf.Cap(), errors.ErrCapacityExceeded)
		return errors.E(ctx, errors.CatUser, errors.TypeCapacityExceeded, err)
	}
	if err := buf.Seek(0, chunk.Output); err != nil {
		return errors.E(ctx, errors.CatInternal, errors.KindOf(err), err)
	}
	if err := buf.Write(b, 0, len(b)); err != nil {
		return errors.E(ctx, errors.CatUser, errors.KindOf(err), err)
	}
	return nil
}
