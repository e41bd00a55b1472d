/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

//go:build embeddeddigests

package embeddeddigests

import (
	_ "embed"

	"github.com/B4ckslash/jar-verifier/config"
)

//go:embed data/java11.digest
var java11 []byte

//go:embed data/java17.digest
var java17 []byte

//go:embed data/java21.digest
var java21 []byte

//go:embed data/java25.digest
var java25 []byte

func init() {
	config.EmbeddedDigestsSupported = true
}

// Get returns the embedded platform digest bytes for the given
// -j/--java-version value, and whether that version is shipped by this
// binary.
func Get(javaVersion string) ([]byte, bool) {
	switch javaVersion {
	case "11":
		return java11, true
	case "17":
		return java17, true
	case "21":
		return java21, true
	case "25":
		return java25, true
	default:
		return nil, false
	}
}
