/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package shutdown gives main() named exit codes instead of scattering
// os.Exit(n) calls, mirroring jacobin's shutdown.Exit (jvm/jvmStart.go).
package shutdown

import (
	"os"

	"github.com/B4ckslash/jar-verifier/jlerr"
)

const (
	OK = 0
	// the remaining codes are assigned 1:1 with jlerr.Kind + 1, so any
	// fatal jlerr.Error can be turned directly into an exit code.
	ArgErrorCode        = int(jlerr.ArgError) + 1
	IoErrorCode         = int(jlerr.IoError) + 1
	ArchiveErrorCode    = int(jlerr.ArchiveError) + 1
	ParseErrorCode      = int(jlerr.ParseError) + 1
	ThreadingErrorCode  = int(jlerr.ThreadingError) + 1
	UnexpectedErrorCode = 99
)

// CodeFor maps an error produced anywhere in the pipeline to a process exit
// code. A nil error maps to OK; an unrecognized error kind maps to
// UnexpectedErrorCode rather than panicking, since main must always be able
// to terminate.
func CodeFor(err error) int {
	if err == nil {
		return OK
	}
	kind, ok := jlerr.KindOf(err)
	if !ok {
		return UnexpectedErrorCode
	}
	switch kind {
	case jlerr.ArgError:
		return ArgErrorCode
	case jlerr.IoError:
		return IoErrorCode
	case jlerr.ArchiveError:
		return ArchiveErrorCode
	case jlerr.ParseError:
		return ParseErrorCode
	case jlerr.ThreadingError:
		return ThreadingErrorCode
	default:
		return UnexpectedErrorCode
	}
}

// Exit terminates the process with the given code. It is the single place
// where main calls os.Exit.
func Exit(code int) {
	os.Exit(code)
}
