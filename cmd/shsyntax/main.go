// shsyntax parses shell source and re-prints its canonical form,
// demonstrating the syntax package's Parser/Display round trip.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/renameio/v2/maybe"
	diffpkg "github.com/pkg/diff"
	"golang.org/x/term"

	"shsyntax.dev/shsyntax/syntax"
)

var (
	posix    = flag.Bool("posix", false, "parse in POSIX-conformant mode")
	tildeAll = flag.Bool("tilde-everywhere", false, "expand ~ after every unquoted ':' as well as at word fronts")
	write    = flag.Bool("w", false, "write the canonical form back to the file instead of stdout")
	showDiff = flag.Bool("diff", false, "print a diff between the original and canonical form instead of writing it")
	aliasDef = multiFlag{}
)

func init() {
	flag.Var(&aliasDef, "alias", "name=replacement alias to predefine, may be repeated")
}

// multiFlag collects repeated -alias=name=value occurrences, the same
// shape shfmt uses for flags that can be given more than once.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(s string) error {
	*m = append(*m, s)
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: shsyntax [flags] [path]

shsyntax parses shell source and prints its canonical form. With
no path, or with "-", standard input is read.

  -posix                 parse in POSIX-conformant mode
  -tilde-everywhere      expand ~ after every unquoted ':' as well as word fronts
  -alias name=repl       predefine an alias, may be repeated
  -w                     write the canonical form back to the file
  -diff                  print a diff instead of the canonical form
`)
	}
	flag.Parse()

	path := "-"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if err := run(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	var src []byte
	var err error
	name := path
	if path == "-" {
		name = "<standard input>"
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	aliases, err := parseAliasFlags(aliasDef)
	if err != nil {
		return err
	}

	opts := []syntax.ParserOption{
		syntax.WithName(name),
		syntax.WithPosixConformant(*posix),
		syntax.WithTildeEverywhere(*tildeAll),
	}
	if aliases != nil {
		opts = append(opts, syntax.WithAliases(aliases))
	}
	p := syntax.NewParser(syntax.NewStringInput(string(src)), opts...)

	var sb strings.Builder
	for {
		list, err := p.ParseCommandLine(context.Background())
		if err != nil {
			printDiagnostic(os.Stderr, err, name)
			return fmt.Errorf("parse failed")
		}
		if list == nil {
			break
		}
		sb.WriteString(syntax.String(list) + "\n")
	}
	out := sb.String()

	switch {
	case *write:
		if path == "-" {
			return fmt.Errorf("-w cannot be used on standard input")
		}
		info, statErr := os.Stat(path)
		perm := os.FileMode(0o644)
		if statErr == nil {
			perm = info.Mode().Perm()
		}
		return maybe.WriteFile(path, []byte(out), perm)
	case *showDiff:
		if bytes.Equal(src, []byte(out)) {
			return nil
		}
		return diffpkg.Text(path+".orig", path, bytes.NewReader(src), strings.NewReader(out), os.Stdout)
	default:
		_, err := os.Stdout.WriteString(out)
		return err
	}
}

func parseAliasFlags(defs multiFlag) (syntax.AliasGlossary, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	set := syntax.NewAliasSet()
	for _, kv := range defs {
		name, repl, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("-alias %q: expected name=replacement", kv)
		}
		set.Define(&syntax.AliasEntry{Name: name, Replacement: repl})
	}
	return set, nil
}

// printDiagnostic renders a *syntax.ParseError with its primary span,
// any supplementary spans, and a help note, colorized when stderr is
// a terminal the same way shfmt decides whether to colorize its diff
// output.
func printDiagnostic(w io.Writer, err error, name string) {
	pe, ok := err.(*syntax.ParseError)
	if !ok {
		fmt.Fprintf(w, "%s: %v\n", name, err)
		return
	}
	color := term.IsTerminal(int(os.Stderr.Fd()))
	d := pe.Render()

	bold, reset := "", ""
	if color {
		bold, reset = "[1m", "[0m"
	}
	fmt.Fprintf(w, "%s%s: %s%s\n", bold, d.Primary.Location, d.Title, reset)
	fmt.Fprintf(w, "  %s: %s\n", d.Primary.Location, d.Primary.Label)
	for _, sp := range d.Supplementary {
		fmt.Fprintf(w, "  %s: %s\n", sp.Location, sp.Label)
	}
	if d.Help != "" {
		fmt.Fprintf(w, "  help: %s\n", d.Help)
	}
}
