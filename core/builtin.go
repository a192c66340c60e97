package core

import (
	"fmt"
	"io"

	getopt "github.com/pborman/getopt/v2"
)

// SimpleBuiltin handles flag parsing and help text for built-in commands.
type SimpleBuiltin struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the builtin.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag
	// isn't added.
	ShowHelp *bool

	flags *getopt.Set
}

// Flags gets the builtin's flag set.
func (b *SimpleBuiltin) Flags() *getopt.Set {
	if b.flags == nil {
		b.flags = getopt.New()
	}

	return b.flags
}

// PrintHelp writes help for the builtin to the given writer.
func (b *SimpleBuiltin) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, b.Use)
	fmt.Fprintln(w, b.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	b.Flags().PrintOptions(w)
}

// Run the builtin, if flag parsing was successful call the callback with
// the remaining positional arguments.
func (b *SimpleBuiltin) Run(argv []string, stdout, stderr io.Writer, callback func(args []string) int) int {
	opts := b.Flags()

	// Add help flag if not overridden.
	if b.ShowHelp == nil {
		b.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if err := opts.Getopt(argv, nil); err != nil {
		fmt.Fprintf(stderr, "error: %s\n\n", err)

		b.PrintHelp(stdout)
		return 1
	}

	if *b.ShowHelp {
		b.PrintHelp(stdout)
		return 0
	}

	return callback(opts.Args())
}
