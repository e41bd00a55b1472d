/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/B4ckslash/jar-verifier/classfile"
	"github.com/B4ckslash/jar-verifier/workpool"
)

func TestResolveClasspathSplitsAndExpandsEnv(t *testing.T) {
	os.Setenv("JARLINT_TEST_DIR", "/opt/libs")
	defer os.Unsetenv("JARLINT_TEST_DIR")

	got, err := ResolveClasspath("$JARLINT_TEST_DIR/a.jar;$JARLINT_TEST_DIR/b.jar")
	if err != nil {
		t.Fatalf("ResolveClasspath: %v", err)
	}
	want := []string{"/opt/libs/a.jar", "/opt/libs/b.jar"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveClasspathExpandsGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jar", "b.jar"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	got, err := ResolveClasspath(filepath.Join(dir, "*.jar"))
	if err != nil {
		t.Fatalf("ResolveClasspath: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected glob to expand to 2 entries, got %v", got)
	}
}

// minimalClassBytes builds a cut-down version of classfile_test.go's
// fixture (no Long entry, caller-chosen class name); kept local and tiny
// rather than exported cross-package plumbing.
func minimalClassBytes(thisName string) []byte {
	var buf bytes.Buffer
	u16 := func(v uint16) { binary.Write(&buf, binary.BigEndian, v) }
	u32 := func(v uint32) { binary.Write(&buf, binary.BigEndian, v) }
	utf8 := func(s string) {
		buf.WriteByte(1)
		u16(uint16(len(s)))
		buf.WriteString(s)
	}
	classEntry := func(nameIdx uint16) {
		buf.WriteByte(7)
		u16(nameIdx)
	}

	u32(0xCAFEBABE)
	u16(0)
	u16(61)
	u16(5) // pool_count: entries #1 (Class), #2 (Utf8), #3 (Class), #4 (Utf8)
	classEntry(2)
	utf8(thisName)
	classEntry(4)
	utf8("java/lang/Object")
	u16(0x0021) // access_flags
	u16(1)      // this_class
	u16(3)      // super_class
	u16(0)      // interfaces_count
	u16(0)      // fields_count
	u16(0)      // methods_count
	u16(0)      // attributes_count
	return buf.Bytes()
}

func writeJarWithClass(t *testing.T, path, entryName, thisName string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	w, err := zw.Create(entryName)
	if err != nil {
		t.Fatalf("Create entry: %v", err)
	}
	if _, err := w.Write(minimalClassBytes(thisName)); err != nil {
		t.Fatalf("Write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
}

func TestLoadDecodesClassEntries(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "lib.jar")
	writeJarWithClass(t, jarPath, "acme/Foo.class", "acme/Foo")

	pool := workpool.New(1)
	classes, err := Load(pool, []string{jarPath}, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := classes["acme/Foo"]; !ok {
		t.Fatalf("expected acme/Foo to be loaded, got %v", keys(classes))
	}
}

func TestLoadLastOneWinsOnDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jar")
	second := filepath.Join(dir, "second.jar")
	writeJarWithClass(t, first, "acme/Foo.class", "acme/Foo")
	writeJarWithClass(t, second, "acme/Foo.class", "acme/Foo")

	pool := workpool.New(1)
	classes, err := Load(pool, []string{first, second}, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(classes) != 1 {
		t.Fatalf("expected exactly one surviving class, got %d", len(classes))
	}
}

func keys(m map[string]*classfile.Class) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
