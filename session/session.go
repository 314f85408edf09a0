/*
Package session ties a record, a schema subrecord and a codec together for one round of
editing.

Open stages the record bytes in the session's own chunk.Buffer, inflating them first
when the record is compressed, and decodes them. Edits are made with the codec Apply
functions and handed back with Update. Save encodes the list and commits it to the
record in one step.

A record that does not fit its schema still opens. Its fields are kept for display,
Warning says what went wrong and Save refuses with ErrReadOnly.

	s, err := session.Open(ctx, rec, sub, session.WithLogger(log))
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := codec.ApplyText(s.Fields(), 0, "42")
	if err != nil {
		return err
	}
	s.Update(l)
	return s.Save(ctx)
*/
package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/bearlytools/snip/chunk"
	"github.com/bearlytools/snip/codec"
	"github.com/bearlytools/snip/compress"
	"github.com/bearlytools/snip/config"
	"github.com/bearlytools/snip/errors"
	"github.com/bearlytools/snip/internal/binary"
	"github.com/bearlytools/snip/schema"
)

// Record is the owner of a subrecord's bytes.
type Record interface {
	// Data returns the stored bytes. The session does not modify them.
	Data() []byte
	// SetData replaces the stored bytes.
	SetData([]byte)
}

// Compressed is implemented by records whose bytes are compressed. Compressed bytes
// start with the decompressed size as a little endian uint32.
type Compressed interface {
	Compression() compress.Type
}

// sizePrefix is the length of the decompressed size header of a compressed record.
const sizePrefix = 4

// Session is one editing session over a record. It is not safe for concurrent use.
type Session struct {
	rec   Record
	sub   *schema.Subrecord
	codec *codec.Codec
	buf   *chunk.Buffer
	cmp   compress.Type
	log   *slog.Logger

	list     *codec.List
	warning  string
	readOnly bool

	capacity  int
	codecOpts []codec.Option
}

// Option is an optional argument to Open.
type Option func(s *Session) error

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.log = l
		return nil
	}
}

// WithCapacity sets the capacity of each region of the session's buffer. The default is
// chunk.DefaultCapacity.
func WithCapacity(n int) Option {
	return func(s *Session) error {
		if n <= 0 {
			return fmt.Errorf("capacity must be positive, got %d", n)
		}
		s.capacity = n
		return nil
	}
}

// WithCodec uses c instead of building a codec. Any WithCodecOptions are ignored.
func WithCodec(c *codec.Codec) Option {
	return func(s *Session) error {
		if c == nil {
			return fmt.Errorf("codec cannot be nil")
		}
		s.codec = c
		return nil
	}
}

// WithCodecOptions passes options to codec.New.
func WithCodecOptions(options ...codec.Option) Option {
	return func(s *Session) error {
		s.codecOpts = append(s.codecOpts, options...)
		return nil
	}
}

// WithConfig applies the buffer capacity and code page of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.capacity = int(cfg.Buffer.Capacity)
		if cfg.CodePage != "" {
			s.codecOpts = append(s.codecOpts, codec.WithCodePage(cfg.CodePage))
		}
		return nil
	}
}

// Open starts a session over rec, which must hold an instance of sub.
//
// A StructureMismatch while decoding does not fail Open. The session is opened read
// only with the fields decoded before the mismatch.
func Open(ctx context.Context, rec Record, sub *schema.Subrecord, options ...Option) (*Session, error) {
	if rec == nil || sub == nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("session.Open: record and subrecord are required"))
	}
	s := &Session{
		rec:      rec,
		sub:      sub,
		log:      slog.New(slog.DiscardHandler),
		capacity: chunk.DefaultCapacity,
	}
	for _, o := range options {
		if err := o(s); err != nil {
			return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, err)
		}
	}
	if s.codec == nil {
		c, err := codec.New(s.codecOpts...)
		if err != nil {
			return nil, err
		}
		s.codec = c
	}
	if c, ok := rec.(Compressed); ok {
		s.cmp = c.Compression()
	}

	s.buf = chunk.New(s.capacity)
	if err := s.stage(ctx); err != nil {
		s.buf.Release()
		return nil, err
	}

	list, err := s.codec.DecodeBuffer(ctx, sub, s.buf)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrStructureMismatch):
		s.readOnly = true
		s.warning = err.Error()
		s.log.Warn("record does not match its schema, opened read only",
			"subrecord", sub.Name(), "fields", len(list.Fields), "err", err)
	default:
		s.buf.Release()
		return nil, err
	}
	s.list = list
	s.log.Debug("session opened", "subrecord", sub.Name(), "bytes", s.buf.Len(chunk.Output), "compression", s.cmp.String())
	return s, nil
}

// stage loads the record into the input region and fills the output region with the
// bytes to decode.
func (s *Session) stage(ctx context.Context) error {
	data := s.rec.Data()
	if err := s.buf.LoadFromArray(data, 0, len(data)); err != nil {
		return errors.E(ctx, errors.CatUser, errors.KindOf(err), err)
	}

	if s.cmp == compress.CmpNone {
		if len(data) == 0 {
			return nil
		}
		if err := s.buf.PromoteInputToOutput(len(data)); err != nil {
			return errors.E(ctx, errors.CatInternal, errors.KindOf(err), err)
		}
		return nil
	}

	hdr, err := s.buf.ReadFixed(sizePrefix, chunk.Input)
	if err != nil {
		return errors.E(ctx, errors.CatUser, errors.TypeStructureMismatch,
			fmt.Errorf("compressed record has no size header (%v): %w", err, errors.ErrStructureMismatch))
	}
	size := int(binary.Get[uint32](hdr))
	if size > s.buf.Cap() {
		return errors.E(ctx, errors.CatUser, errors.TypeCapacityExceeded,
			fmt.Errorf("decompressed size %d exceeds buffer capacity %d: %w", size, s.buf.Cap(), errors.ErrCapacityExceeded))
	}
	if size == 0 {
		return nil
	}
	if err := compress.Inflate(s.buf, s.cmp); err != nil {
		return errors.E(ctx, errors.CatUser, errors.KindOf(err), err)
	}
	if got := s.buf.Len(chunk.Output); got != size {
		return errors.E(ctx, errors.CatUser, errors.TypeStructureMismatch,
			fmt.Errorf("decompressed %d bytes, header says %d: %w", got, size, errors.ErrStructureMismatch))
	}
	return nil
}

// Fields returns the current field list.
func (s *Session) Fields() *codec.List {
	return s.list
}

// Codec returns the codec the session decodes and encodes with.
func (s *Session) Codec() *codec.Codec {
	return s.codec
}

// Subrecord returns the schema the record is decoded against.
func (s *Session) Subrecord() *schema.Subrecord {
	return s.sub
}

// Bytes returns a copy of the decoded record bytes, as opened or as last saved. For a
// compressed record these are the decompressed bytes.
func (s *Session) Bytes() []byte {
	return bytes.Clone(s.buf.Bytes(chunk.Output))
}

// Update replaces the field list, usually with the result of a codec Apply function.
func (s *Session) Update(l *codec.List) {
	s.list = l
}

// Warning describes why the session is read only. It is "" for a writable session.
func (s *Session) Warning() string {
	return s.warning
}

// CanSave reports whether Save may succeed.
func (s *Session) CanSave() bool {
	return !s.readOnly
}

// Save encodes the field list and commits it to the record, compressing it again when
// the record is compressed. When anything fails neither the record nor Bytes changes.
//
// The encoded bytes are decoded again before they are committed. If they no longer fit
// the schema, which happens when a group alternate narrower than the others is enabled,
// Save returns a ValidationError whose FieldError names that alternate.
func (s *Session) Save(ctx context.Context) error {
	if s.readOnly {
		return errors.E(ctx, errors.CatUser, errors.TypeReadOnly, fmt.Errorf("%s: %s: %w", s.sub.Name(), s.warning, errors.ErrReadOnly))
	}

	encoded, err := s.codec.Encode(ctx, s.list)
	if err != nil {
		return err
	}
	if len(encoded) > s.buf.Cap() {
		err := fmt.Errorf("%s: %d encoded bytes exceeds capacity %d: %w", s.sub.Name(), len(encoded), s.buf.Cap(), errors.ErrCapacityExceeded)
		return errors.E(ctx, errors.CatUser, errors.TypeCapacityExceeded, err)
	}

	// Decode what was encoded so field offsets match the new bytes. Alternates of
	// different widths can encode to bytes that no longer fit the schema.
	list, err := s.codec.Decode(ctx, s.sub, encoded)
	if err != nil {
		return s.saveErr(ctx, err)
	}

	data := encoded
	if s.cmp != compress.CmpNone {
		packed, err := compress.Deflate(encoded, s.cmp)
		if err != nil {
			return errors.E(ctx, errors.CatInternal, errors.KindOf(err), err)
		}
		data = make([]byte, 0, sizePrefix+len(packed))
		data = binary.Append(data, uint32(len(encoded)))
		data = append(data, packed...)
	}

	if err := s.buf.Seek(0, chunk.Output); err != nil {
		return errors.E(ctx, errors.CatInternal, errors.KindOf(err), err)
	}
	if err := s.buf.Write(encoded, 0, len(encoded)); err != nil {
		return errors.E(ctx, errors.CatInternal, errors.KindOf(err), err)
	}
	s.rec.SetData(data)
	s.list = list
	s.log.Debug("record saved", "subrecord", s.sub.Name(), "bytes", len(encoded), "stored", len(data))
	return nil
}

// saveErr reports encoded bytes that do not decode. The enabled group alternate is named
// when there is one, as its width is what moved the fields after it.
func (s *Session) saveErr(ctx context.Context, err error) error {
	for i, f := range s.list.Fields {
		if f.Group == 0 || !f.Enabled {
			continue
		}
		fe := &codec.FieldError{
			Index: i,
			Name:  f.Element.Name,
			Text:  f.Value.Text,
			Err:   fmt.Errorf("record no longer fits its schema with this alternate (%v): %w", err, errors.ErrValidation),
		}
		return errors.E(ctx, errors.CatUser, errors.TypeValidation, fe)
	}
	return errors.E(ctx, errors.CatUser, errors.TypeStructureMismatch, fmt.Errorf("%s: encoded record does not decode: %w", s.sub.Name(), err))
}

// Close releases the session's buffer. The session cannot be used afterwards.
func (s *Session) Close() {
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
}
