package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bearlytools/snip/codec"
	"github.com/bearlytools/snip/compress"
	"github.com/bearlytools/snip/config"
	"github.com/bearlytools/snip/internal/field"
	"github.com/bearlytools/snip/schema"
	"github.com/bearlytools/snip/session"
)

// common holds the flags shared by the record commands.
type common struct {
	configPath  string
	schemaPath  string
	subrecord   string
	compressed  bool
	compression string
	codePage    string
	logLevel    string
}

func (c *common) flagSet(name string, e *env) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVar(&c.configPath, "config", "", "config file (default: $"+config.EnvVar+")")
	fs.StringVarP(&c.schemaPath, "schema", "s", "", "schema file, .snip or .yaml")
	fs.StringVarP(&c.subrecord, "subrecord", "r", "", "subrecord the record holds, such as BOOK:DATA")
	fs.BoolVar(&c.compressed, "compressed", false, "the record is compressed with the configured compression")
	fs.StringVar(&c.compression, "compression", "", "the record is compressed with this compression")
	fs.StringVar(&c.codePage, "codepage", "", "code page of strings (default: the schema's)")
	fs.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (default: the config's)")
	return fs
}

// setup is everything a record command needs before it opens the record.
type setup struct {
	cfg      *config.Config
	log      *slog.Logger
	set      *schema.Set
	sub      *schema.Subrecord
	cmp      compress.Type
	codePage string
}

func (c *common) setup(ctx context.Context, e *env, needSub bool) (*setup, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	s := &setup{cfg: cfg, log: cfg.Logger(e.stderr)}

	if c.schemaPath == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	if s.set, err = schema.Load(ctx, c.schemaPath); err != nil {
		return nil, err
	}
	s.codePage = s.set.CodePage
	if c.codePage != "" {
		s.codePage = c.codePage
	}
	if !needSub {
		return s, nil
	}

	sub, ok := s.set.Get(c.subrecord)
	if !ok {
		return nil, fmt.Errorf("schema %s has no subrecord %q, it has: %s", c.schemaPath, c.subrecord, strings.Join(s.set.Names(), ", "))
	}
	s.sub = sub

	switch {
	case c.compression != "":
		s.cmp, err = compress.ParseType(c.compression)
	case c.compressed:
		s.cmp, err = cfg.CompressionType()
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *setup) open(ctx context.Context, path string) (*session.Session, *fileRecord, error) {
	fr, err := readRecord(path)
	if err != nil {
		return nil, nil, err
	}
	var rec session.Record = fr
	if s.cmp != compress.CmpNone {
		rec = compressedRecord{fileRecord: fr, cmp: s.cmp}
	}
	sess, err := session.Open(
		ctx, rec, s.sub,
		session.WithLogger(s.log),
		session.WithConfig(s.cfg),
		session.WithCodecOptions(codec.WithCodePage(s.codePage), codec.WithLogger(s.log)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return sess, fr, nil
}

func oneRecord(fs *pflag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s needs exactly one record file, got %d", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func runDecode(ctx context.Context, e *env, args []string) error {
	c := &common{}
	fs := c.flagSet("decode", e)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneRecord(fs)
	if err != nil {
		return err
	}
	s, err := c.setup(ctx, e, true)
	if err != nil {
		return err
	}
	sess, _, err := s.open(ctx, path)
	if err != nil {
		return err
	}
	defer sess.Close()

	out, err := codec.Dump(sess.Fields())
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s\n", out)
	if w := sess.Warning(); w != "" {
		fmt.Fprintf(e.stderr, "warning: read only: %s\n", w)
	}
	return nil
}

func runRoundTrip(ctx context.Context, e *env, args []string) error {
	c := &common{}
	fs := c.flagSet("roundtrip", e)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneRecord(fs)
	if err != nil {
		return err
	}
	s, err := c.setup(ctx, e, true)
	if err != nil {
		return err
	}
	sess, _, err := s.open(ctx, path)
	if err != nil {
		return err
	}
	defer sess.Close()

	if !sess.CanSave() {
		return fmt.Errorf("%s does not match %s: %s", path, s.sub.Name(), sess.Warning())
	}
	want := sess.Bytes()
	got, err := sess.Codec().Encode(ctx, sess.Fields())
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		at := 0
		for at < len(got) && at < len(want) && got[at] == want[at] {
			at++
		}
		return fmt.Errorf("%s: encoded %d bytes differ from the %d decoded bytes at offset %d", path, len(got), len(want), at)
	}
	fmt.Fprintf(e.stdout, "%s: %d bytes, %d fields, round trip ok\n", path, len(want), sess.Fields().Len())
	return nil
}

func runSet(ctx context.Context, e *env, args []string) error {
	c := &common{}
	var (
		fields, enable, disable, sel []string
		out                          string
		dryRun                       bool
	)
	fs := c.flagSet("set", e)
	fs.StringArrayVarP(&fields, "field", "f", nil, "set a field, as Name=Value (repeatable)")
	fs.StringArrayVar(&enable, "enable", nil, "switch on an optional or repeated field (repeatable)")
	fs.StringArrayVar(&disable, "disable", nil, "switch off an optional or repeated field and everything after it (repeatable)")
	fs.StringArrayVar(&sel, "select", nil, "make a field the chosen alternate of its group (repeatable)")
	fs.StringVarP(&out, "out", "o", "", "write the record here instead of over the input")
	fs.BoolVar(&dryRun, "dry-run", false, "print the edited fields instead of saving")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneRecord(fs)
	if err != nil {
		return err
	}
	s, err := c.setup(ctx, e, true)
	if err != nil {
		return err
	}
	sess, rec, err := s.open(ctx, path)
	if err != nil {
		return err
	}
	defer sess.Close()
	if !sess.CanSave() {
		return fmt.Errorf("%s: %s", path, sess.Warning())
	}

	l := sess.Fields()
	cd := sess.Codec()
	for _, ref := range sel {
		i, err := resolve(l, ref)
		if err != nil {
			return err
		}
		if l, err = codec.ApplyGroupSelection(l, i); err != nil {
			return err
		}
	}
	for _, ref := range enable {
		i, err := resolve(l, ref)
		if err != nil {
			return err
		}
		if l, err = cd.ApplyRepeatToggle(l, i, true); err != nil {
			return err
		}
	}
	for _, ref := range disable {
		i, err := resolve(l, ref)
		if err != nil {
			return err
		}
		if l, err = cd.ApplyRepeatToggle(l, i, false); err != nil {
			return err
		}
	}
	for _, a := range fields {
		ref, value, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("--field %q: want Name=Value", a)
		}
		i, err := resolve(l, ref)
		if err != nil {
			return err
		}
		if l, err = setValue(l, i, value); err != nil {
			return err
		}
	}
	sess.Update(l)

	if dryRun {
		b, err := codec.Dump(l)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "%s\n", b)
		return nil
	}
	if err := sess.Save(ctx); err != nil {
		return err
	}
	if err := rec.write(out); err != nil {
		return err
	}
	s.log.Info("record saved", "path", rec.path, "out", out, "bytes", len(rec.data))
	return nil
}

func runSchema(ctx context.Context, e *env, args []string) error {
	c := &common{}
	fs := c.flagSet("schema", e)
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.setup(ctx, e, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "codepage %s\n", s.codePage)
	for _, name := range s.set.Names() {
		sub, _ := s.set.Get(name)
		fmt.Fprintf(e.stdout, "%s\n", name)
		for _, el := range sub.Elements() {
			fmt.Fprintf(e.stdout, "  %-20s %s\n", el.Name, el.Type)
		}
	}
	return nil
}

// resolve finds a field by reference. A reference is a field name, which matches the
// first field of that name, Name[k] for the k-th field of that name counting from 0, or
// #i for the field at index i.
func resolve(l *codec.List, ref string) (int, error) {
	if s, ok := strings.CutPrefix(ref, "#"); ok {
		i, err := strconv.Atoi(s)
		if err != nil || i < 0 || i >= l.Len() {
			return 0, fmt.Errorf("field reference %q: want #0 to #%d", ref, l.Len()-1)
		}
		return i, nil
	}

	name, k := ref, 0
	if open := strings.IndexByte(ref, '['); open > 0 && strings.HasSuffix(ref, "]") {
		n, err := strconv.Atoi(ref[open+1 : len(ref)-1])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("field reference %q: bad occurrence", ref)
		}
		name, k = ref[:open], n
	}
	for i, f := range l.Fields {
		if f.Element.Name != name {
			continue
		}
		if k == 0 {
			return i, nil
		}
		k--
	}
	return 0, fmt.Errorf("no field %q", ref)
}

// setValue applies value to field i. An option name picks that option. A flags field
// takes labels joined with "|". An LString takes inline text, or "id:" and a hex string
// id. Anything else is the field's text.
func setValue(l *codec.List, i int, value string) (*codec.List, error) {
	f := &l.Fields[i]
	for n, o := range f.Choices {
		if o.Name == value {
			return codec.ApplyChoice(l, i, n)
		}
	}
	if f.Element.HasFlags() && value != "" && !startsNumeric(value) {
		mask, err := codec.FlagMask(f.Element, strings.Split(value, "|")...)
		if err != nil {
			return nil, err
		}
		return codec.ApplyFlags(l, i, mask)
	}
	if f.Element.Type == field.FTLString {
		if id, ok := strings.CutPrefix(value, "id:"); ok {
			return codec.ApplyLString(l, i, false, id)
		}
		return codec.ApplyLString(l, i, true, value)
	}
	return codec.ApplyText(l, i, value)
}

func startsNumeric(s string) bool {
	c := s[0]
	return c >= '0' && c <= '9' || c == '-' || c == '+'
}
