/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package archive implements the classpath / zip-archive loader: it turns
// a classpath string into a mapping from class internal name to decoded
// classfile.Class, running the decode step across the worker pool.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/B4ckslash/jar-verifier/classfile"
	"github.com/B4ckslash/jar-verifier/jlerr"
	"github.com/B4ckslash/jar-verifier/trace"
	"github.com/B4ckslash/jar-verifier/workpool"
)

// ResolveClasspath splits a semicolon-separated classpath, shell-expands
// each entry (environment variables and "~"), and expands any entry
// containing "*" as a glob, in the order spec.md §6 describes. The result
// is every concrete archive path to load, in classpath order, duplicates
// included. Load keys its last-one-wins rule by class name, so a class in
// a later archive replaces one of the same name from an earlier archive.
func ResolveClasspath(classpath string) ([]string, error) {
	var paths []string
	for _, entry := range strings.Split(classpath, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		expanded, err := expandShell(entry)
		if err != nil {
			return nil, jlerr.Wrap(jlerr.ArgError, "expanding classpath entry "+entry, err)
		}
		if strings.Contains(expanded, "*") {
			matches, err := filepath.Glob(expanded)
			if err != nil {
				return nil, jlerr.Wrap(jlerr.ArgError, "globbing classpath entry "+expanded, err)
			}
			paths = append(paths, matches...)
			continue
		}
		paths = append(paths, expanded)
	}
	return paths, nil
}

func expandShell(entry string) (string, error) {
	expanded := os.Expand(entry, os.Getenv)
	if strings.HasPrefix(expanded, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		expanded = home + strings.TrimPrefix(expanded, "~")
	}
	return expanded, nil
}

// Load opens every archive on the classpath, decodes every .class entry
// via classfile.Parse, and returns the mapping from internal class name
// to its decoded record. Duplicate internal names across archives: last
// one wins (spec.md §4.4), with a trace.Warning on the overwrite. Decoding
// runs across pool's worker count; a malformed class-file entry fails
// only that entry (logged and skipped) unless failFast is set, in which
// case any parse failure aborts the whole load -- matching spec.md §7's
// distinction between a fatal input and a skippable one.
func Load(pool *workpool.Pool, archivePaths []string, failFast bool) (map[string]*classfile.Class, error) {
	type entry struct {
		name string
		data []byte
	}

	var allEntries []entry
	for _, path := range archivePaths {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, jlerr.Wrap(jlerr.ArchiveError, "opening archive "+path, err)
		}
		for _, f := range zr.File {
			if !strings.HasSuffix(f.Name, ".class") {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				zr.Close()
				return nil, jlerr.Wrap(jlerr.ArchiveError, "opening entry "+f.Name+" in "+path, err)
			}
			data := make([]byte, f.UncompressedSize64)
			_, readErr := io.ReadFull(rc, data)
			rc.Close()
			if readErr != nil {
				zr.Close()
				return nil, jlerr.Wrap(jlerr.ArchiveError, "reading entry "+f.Name+" in "+path, readErr)
			}
			allEntries = append(allEntries, entry{name: f.Name, data: data})
		}
		zr.Close()
	}

	type decoded struct {
		class *classfile.Class
		err   error
	}
	decodedEntries, poolErr := workpool.RunCollect(pool, len(allEntries), func(i int) (decoded, error) {
		c, err := classfile.Parse(bytes.NewReader(allEntries[i].data))
		if err != nil {
			if failFast {
				return decoded{}, err
			}
			trace.Warning("skipping unparseable class entry " + allEntries[i].name)
			return decoded{err: err}, nil
		}
		return decoded{class: c}, nil
	})
	if poolErr != nil {
		return nil, poolErr
	}

	classes := make(map[string]*classfile.Class, len(decodedEntries))
	for _, d := range decodedEntries {
		if d.class == nil {
			continue
		}
		name, err := d.class.Name()
		if err != nil {
			if failFast {
				return nil, jlerr.Wrap(jlerr.ParseError, "resolving decoded class name", err)
			}
			trace.Warning("skipping class with unresolvable name")
			continue
		}
		if _, exists := classes[name]; exists {
			trace.Warning("duplicate class " + name + " on classpath, last one wins")
		}
		classes[name] = d.class
	}
	return classes, nil
}
