/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package config holds the resolved run configuration, populated from CLI
// flags by cmd/jarlint and validated here so cmd/jarlint stays a thin
// cobra wrapper.
package config

import (
	"github.com/B4ckslash/jar-verifier/jlerr"
)

// EmbeddedDigestsSupported is true only in binaries built with the
// "embeddeddigests" tag; cmd/jarlint consults it to decide whether
// -j/--java-version is a legal flag at all.
var EmbeddedDigestsSupported = false

// Config is the fully resolved set of options for one run.
type Config struct {
	Classpath    string
	Threads      int
	OutputFile   string // empty means stdout
	JdkClassinfo string // empty means "use embedded digest instead"
	JavaVersion  string // one of "11", "17", "21", "25"; empty means "use --jdk-classinfo"
}

// Validate enforces spec.md §6's flag-combination rules: a classpath is
// always required, thread count must be positive, and exactly one of
// --jdk-classinfo or --java-version must be supplied (the latter only
// when the binary supports embedded digests).
func (c Config) Validate() error {
	if c.Classpath == "" {
		return jlerr.New(jlerr.ArgError, "classpath is required")
	}
	if c.Threads < 1 {
		return jlerr.New(jlerr.ArgError, "--threads must be >= 1")
	}
	haveDigestFile := c.JdkClassinfo != ""
	haveJavaVersion := c.JavaVersion != ""

	if haveJavaVersion && !EmbeddedDigestsSupported {
		return jlerr.New(jlerr.ArgError, "--java-version requires a binary built with embedded digests")
	}
	if !haveDigestFile && !haveJavaVersion {
		return jlerr.New(jlerr.ArgError, "one of --jdk-classinfo or --java-version is required")
	}
	if haveDigestFile && haveJavaVersion {
		return jlerr.New(jlerr.ArgError, "--jdk-classinfo and --java-version are mutually exclusive")
	}
	if haveJavaVersion && !isSupportedJavaVersion(c.JavaVersion) {
		return jlerr.New(jlerr.ArgError, "--java-version must be one of 11, 17, 21, 25")
	}
	return nil
}

func isSupportedJavaVersion(v string) bool {
	switch v {
	case "11", "17", "21", "25":
		return true
	}
	return false
}
