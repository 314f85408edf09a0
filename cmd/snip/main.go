// Command snip decodes and edits game subrecords against a schema file.
//
//	snip decode    --schema book.snip --subrecord BOOK:DATA record.bin
//	snip roundtrip --schema book.snip --subrecord BOOK:DATA record.bin
//	snip set       --schema book.snip --subrecord BOOK:DATA --field Value=42 record.bin
//	snip schema    --schema book.snip
//
// Records are raw subrecord bytes. With --compressed the file holds a little endian
// uint32 decompressed size followed by the compressed stream.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{name: "decode", usage: "print the fields of a record as JSON", run: runDecode},
	{name: "roundtrip", usage: "check a record encodes back to the same bytes", run: runRoundTrip},
	{name: "set", usage: "edit fields of a record and save it", run: runSet},
	{name: "schema", usage: "list the subrecords of a schema file", run: runSchema},
}

// env is what every command writes to.
type env struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	e := &env{stdout: os.Stdout, stderr: os.Stderr}
	if err := run(context.Background(), e, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(e.stderr)
		return nil
	}
	i := slices.IndexFunc(commands, func(c command) bool { return c.name == args[0] })
	if i < 0 {
		printUsage(e.stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
	err := commands[i].run(ctx, e, args[1:])
	if err == pflag.ErrHelp {
		return nil
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "snip edits game subrecords against a schema file.\n\nUsage:\n  snip <command> [flags] [record]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(w, "\nRun \"snip <command> --help\" for the flags of a command.\n")
}
