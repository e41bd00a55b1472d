/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classinfo parses the platform digest: a flat text description of
// every type the target JDK ships, used by the reference checker as the
// universe of "already provided" classes and methods.
package classinfo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/B4ckslash/jar-verifier/jlerr"
)

// Method is one entry of a PlatformClass's method set: a full "name+descriptor"
// signature plus the polymorphic-signature marker (the ":PS" suffix).
type Method struct {
	Signature   string
	Polymorphic bool
}

// PlatformClass is a single record of the digest.
type PlatformClass struct {
	Name       string
	Super      string // empty means "no super-class"
	Interfaces []string
	Methods    map[string]Method // keyed by Signature
}

// Digest is the full mapping from internal class name to its record.
type Digest map[string]PlatformClass

// Parse reads a digest file in its entirety. Any structural mismatch
// aborts with a descriptive error naming the offending byte offset;
// partial results are never returned.
func Parse(r io.Reader) (Digest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	digest := make(Digest)
	byteOffset := 0
	lineStart := 0

	nextLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		line := scanner.Text()
		lineStart = byteOffset
		byteOffset += len(line) + 1
		return line, true
	}

	for {
		header, ok := nextLine()
		if !ok {
			break
		}
		if header == "" {
			continue
		}
		fields := strings.SplitN(header, ":", 4)
		if len(fields) != 4 {
			return nil, parseErr(lineStart, "malformed record header %q: expected 4 colon-separated fields", header)
		}
		name := fields[0]
		super := fields[1]
		ifaces := splitInterfaces(fields[2])
		methodCount, err := strconv.Atoi(fields[3])
		if err != nil || methodCount < 0 {
			return nil, parseErr(lineStart, "malformed method count %q for class %q", fields[3], name)
		}

		pc := PlatformClass{
			Name:       name,
			Super:      super,
			Interfaces: ifaces,
			Methods:    make(map[string]Method, methodCount),
		}

		for i := 0; i < methodCount; i++ {
			line, ok := nextLine()
			if !ok {
				return nil, parseErr(byteOffset, "class %q declares %d methods but the file ended after %d", name, methodCount, i)
			}
			if !strings.HasPrefix(line, "--") {
				return nil, parseErr(lineStart, "method line %q for class %q does not start with '--'", line, name)
			}
			body := line[2:]
			polymorphic := false
			if strings.HasSuffix(body, ":PS") {
				polymorphic = true
				body = body[:len(body)-len(":PS")]
			}
			pc.Methods[body] = Method{Signature: body, Polymorphic: polymorphic}
		}

		digest[name] = pc
	}

	return digest, nil
}

func splitInterfaces(field string) []string {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}

func parseErr(offset int, format string, args ...interface{}) error {
	msg := fmt.Sprintf("byte offset %d: %s", offset, fmt.Sprintf(format, args...))
	return jlerr.New(jlerr.ParseError, msg)
}

// Provides reports whether owner (a key of the digest) transitively exposes
// sig, walking the super/interface chain the same way the reference
// checker's platform_provides predicate does (spec.md §4.3 resolution
// step 1). It never recurses into a name absent from the digest.
func (d Digest) Provides(owner, sig string) bool {
	return d.providesVisited(owner, sig, make(map[string]bool))
}

func (d Digest) providesVisited(owner, sig string, visited map[string]bool) bool {
	if visited[owner] {
		return false
	}
	visited[owner] = true
	pc, ok := d[owner]
	if !ok {
		return false
	}
	if _, ok := pc.Methods[sig]; ok {
		return true
	}
	if pc.Super != "" && d.providesVisited(pc.Super, sig, visited) {
		return true
	}
	for _, iface := range pc.Interfaces {
		if d.providesVisited(iface, sig, visited) {
			return true
		}
	}
	return false
}
