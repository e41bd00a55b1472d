/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

//go:build !embeddeddigests

// Package embeddeddigests exposes the -j/--java-version convenience
// digests. This build (without the "embeddeddigests" tag) carries no
// embedded data; cmd/jarlint consults config.EmbeddedDigestsSupported,
// left false by this variant, to reject --java-version before ever
// calling Get.
package embeddeddigests

// Get always fails in a binary built without the embeddeddigests tag.
func Get(javaVersion string) ([]byte, bool) {
	return nil, false
}
