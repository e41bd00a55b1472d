/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classfile

import (
	"fmt"

	"github.com/B4ckslash/jar-verifier/jlerr"
)

// cfe builds a class-format-error the way jacobin's classloader.cfe() does:
// every parse failure in this package funnels through here, naming the
// offending structural element per spec.md §7's requirement that a
// ParseError name "the offending structural element (pool index, tag,
// offset)".
func cfe(format string, args ...interface{}) error {
	return jlerr.New(jlerr.ParseError, fmt.Sprintf(format, args...))
}

// errBadMagic is the message of the ParseError Parse returns when the
// first four bytes of a class file are not 0xCAFEBABE.
var errBadMagic = "invalid magic number, not a class file"
