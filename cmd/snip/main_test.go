package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/snip/codec"
	"github.com/bearlytools/snip/compress"
	"github.com/bearlytools/snip/config"
	"github.com/bearlytools/snip/internal/binary"
	"github.com/bearlytools/snip/internal/field"
	"github.com/bearlytools/snip/schema"
)

// bookData is a BOOK:DATA record: Scroll, a book, no skill, value 10, weight 1.5.
var bookData = []byte{0x01, 0x00, 0xFF, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x3F}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(context.Background(), &env{stdout: stdout, stderr: stderr}, args)
	return stdout.String(), stderr.String(), err
}

func writeRecord(t *testing.T, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "record.bin")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

var schemaFlags = []string{"--schema", filepath.Join("testdata", "book.snip"), "--subrecord", "BOOK:DATA"}

func TestDecode(t *testing.T) {
	path := writeRecord(t, bookData)
	out, _, err := runCmd(t, append(append([]string{"decode"}, schemaFlags...), path)...)
	if err != nil {
		t.Fatalf("TestDecode: got err == %s, want err == nil", err)
	}

	var views []codec.FieldView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("TestDecode: output is not JSON: %s\n%s", err, out)
	}
	var got []string
	for _, v := range views {
		got = append(got, v.Name+"="+v.Text)
	}
	want := []string{"Flags=0x01", "Type=0", "Skill=-1", "Value=10", "Weight=1.5"}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("TestDecode: -want/+got:\n%s", diff)
	}
	if diff := pretty.Compare([]string{"Scroll"}, views[0].Flags); diff != "" {
		t.Errorf("TestDecode: flags -want/+got:\n%s", diff)
	}
}

func TestDecodeReadOnly(t *testing.T) {
	path := writeRecord(t, bookData[:6])
	_, stderr, err := runCmd(t, append(append([]string{"decode"}, schemaFlags...), path)...)
	if err != nil {
		t.Fatalf("TestDecodeReadOnly: got err == %s, want err == nil", err)
	}
	if !strings.Contains(stderr, "read only") {
		t.Errorf("TestDecodeReadOnly: stderr %q does not warn", stderr)
	}
}

func TestRoundTrip(t *testing.T) {
	path := writeRecord(t, bookData)
	out, _, err := runCmd(t, append(append([]string{"roundtrip"}, schemaFlags...), path)...)
	if err != nil {
		t.Fatalf("TestRoundTrip: got err == %s, want err == nil", err)
	}
	if !strings.Contains(out, "round trip ok") {
		t.Errorf("TestRoundTrip: got %q", out)
	}

	short := writeRecord(t, bookData[:6])
	if _, _, err := runCmd(t, append(append([]string{"roundtrip"}, schemaFlags...), short)...); err == nil {
		t.Errorf("TestRoundTrip(short record): got err == nil, want err != nil")
	}
}

func TestSet(t *testing.T) {
	want := []byte{0x03, 0xFF, 0x14, 0x2A, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x3F}

	tests := []struct {
		name string
		cmp  compress.Type
	}{
		{name: "Success: plain record"},
		{name: "Success: zlib record", cmp: compress.CmpZlib},
	}

	for _, test := range tests {
		data := bookData
		var extra []string
		if test.cmp != compress.CmpNone {
			packed, err := compress.Deflate(bookData, test.cmp)
			if err != nil {
				t.Fatal(err)
			}
			data = append(binary.Append([]byte{}, uint32(len(bookData))), packed...)
			extra = []string{"--compression", test.cmp.String()}
		}
		path := writeRecord(t, data)
		outPath := filepath.Join(t.TempDir(), "out.bin")

		args := append([]string{"set"}, schemaFlags...)
		args = append(args, extra...)
		args = append(args,
			"--field", "Flags=Scroll|CanTakeSkill",
			"--field", "Type=Note",
			"--field", "Skill=Alchemy",
			"-f", "Value=42",
			"--out", outPath,
			path,
		)
		if _, _, err := runCmd(t, args...); err != nil {
			t.Errorf("TestSet(%s): got err == %s, want err == nil", test.name, err)
			continue
		}

		got, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatal(err)
		}
		if test.cmp != compress.CmpNone {
			if got, err = compress.Decompress(test.cmp, got[4:]); err != nil {
				t.Fatalf("TestSet(%s): %s", test.name, err)
			}
		}
		if !bytes.Equal(got, want) {
			t.Errorf("TestSet(%s): wrote % X, want % X", test.name, got, want)
		}
		if orig, _ := os.ReadFile(path); !bytes.Equal(orig, data) {
			t.Errorf("TestSet(%s): input record was changed", test.name)
		}
	}
}

func TestSetErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "Error: no such field", args: []string{"--field", "Price=1"}},
		{name: "Error: not an assignment", args: []string{"--field", "Value"}},
		{name: "Error: bad number", args: []string{"--field", "Value=lots"}},
		{name: "Error: unknown flag label", args: []string{"--field", "Flags=Heavy"}},
		{name: "Error: select outside a group", args: []string{"--select", "Value"}},
		{name: "Error: toggle a required field", args: []string{"--disable", "Value"}},
	}

	for _, test := range tests {
		path := writeRecord(t, bookData)
		args := append(append([]string{"set"}, schemaFlags...), test.args...)
		args = append(args, path)
		if _, _, err := runCmd(t, args...); err == nil {
			t.Errorf("TestSetErrors(%s): got err == nil, want err != nil", test.name)
		}
		if got, _ := os.ReadFile(path); !bytes.Equal(got, bookData) {
			t.Errorf("TestSetErrors(%s): record was changed", test.name)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	path := writeRecord(t, bookData)

	tests := []struct {
		name string
		args []string
	}{
		{name: "Error: unknown command", args: []string{"explode"}},
		{name: "Error: no schema", args: []string{"decode", path}},
		{name: "Error: unknown subrecord", args: []string{"decode", "--schema", filepath.Join("testdata", "book.snip"), "--subrecord", "WEAP:DATA", path}},
		{name: "Error: no record", args: append([]string{"decode"}, schemaFlags...)},
		{name: "Error: missing config", args: append(append([]string{"decode", "--config", "testdata/none.yaml"}, schemaFlags...), path)},
		{name: "Error: bad compression", args: append(append([]string{"decode", "--compression", "rar"}, schemaFlags...), path)},
	}

	for _, test := range tests {
		if _, _, err := runCmd(t, test.args...); err == nil {
			t.Errorf("TestCommandErrors(%s): got err == nil, want err != nil", test.name)
		}
	}

	if _, stderr, err := runCmd(t); err != nil || !strings.Contains(stderr, "roundtrip") {
		t.Errorf("TestCommandErrors(no args): got %v, usage %q", err, stderr)
	}
}

func TestSchema(t *testing.T) {
	out, _, err := runCmd(t, "schema", "--schema", filepath.Join("testdata", "book.snip"))
	if err != nil {
		t.Fatalf("TestSchema: got err == %s, want err == nil", err)
	}
	for _, want := range []string{"codepage windows-1252", "BOOK:DATA", "BOOK:FULL", "CNTO:CNTO", "Weight"} {
		if !strings.Contains(out, want) {
			t.Errorf("TestSchema: output does not contain %q:\n%s", want, out)
		}
	}
}

func TestResolve(t *testing.T) {
	sub := schema.MustNewSubrecord(
		"TEST:TEST",
		schema.Element{Name: "A", Type: field.FTByte},
		schema.Element{Name: "B", Type: field.FTByte, Repeat: 1},
	)
	c, err := codec.New()
	if err != nil {
		t.Fatal(err)
	}
	l, err := c.Decode(context.Background(), sub, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ref     string
		want    int
		wantErr bool
	}{
		{name: "Success: name", ref: "A", want: 0},
		{name: "Success: first occurrence", ref: "B", want: 1},
		{name: "Success: later occurrence", ref: "B[1]", want: 2},
		{name: "Success: index", ref: "#2", want: 2},
		{name: "Error: occurrence past the end", ref: "B[9]", wantErr: true},
		{name: "Error: index past the end", ref: "#9", wantErr: true},
		{name: "Error: bad occurrence", ref: "B[x]", wantErr: true},
		{name: "Error: unknown name", ref: "C", wantErr: true},
	}

	for _, test := range tests {
		got, err := resolve(l, test.ref)
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestResolve(%s): got err == nil, want err != nil", test.name)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestResolve(%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			continue
		}
		if got != test.want {
			t.Errorf("TestResolve(%s): got %d, want %d", test.name, got, test.want)
		}
	}
}
