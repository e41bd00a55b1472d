/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package report serializes checker.Dependencies into the plain-text
// report format of spec.md §6.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/B4ckslash/jar-verifier/checker"
)

// Write serializes deps in ascending class-name order (the caller is
// expected to have already sorted via checker.Resolve) to w, one block per
// class, with no separator between blocks, per spec.md §6's exact format.
func Write(w io.Writer, deps []checker.Dependencies) error {
	bw := bufio.NewWriter(w)
	for _, d := range deps {
		if _, err := fmt.Fprintf(bw, "%s\n", d.ClassName); err != nil {
			return err
		}
		for _, cls := range d.Classes {
			if _, err := fmt.Fprintf(bw, "\tClass %s\n", cls); err != nil {
				return err
			}
		}
		for _, m := range d.ClassMethods {
			if _, err := fmt.Fprintf(bw, "\tClassMethod %s#%s\n", m.Owner, m.Signature); err != nil {
				return err
			}
		}
		for _, m := range d.IfaceMethods {
			if _, err := fmt.Fprintf(bw, "\tIfaceMethod %s#%s\n", m.Owner, m.Signature); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteTo opens (or creates/truncates) path and writes the report there.
// An empty path means stdout, in which case a human-readable summary
// footer is appended when stdout is an interactive terminal -- piping or
// redirecting the output suppresses it, so machine consumers see exactly
// the format of spec.md §6 and nothing else.
func WriteTo(path string, deps []checker.Dependencies) error {
	if path == "" {
		if err := Write(os.Stdout, deps); err != nil {
			return err
		}
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintf(os.Stdout, "\n%d class(es) with unmet dependencies\n", len(deps))
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, deps)
}
