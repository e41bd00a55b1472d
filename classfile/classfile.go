/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classfile decodes the JVM class-file binary format: the magic
// number, the constant pool, and the class/field/method/attribute tables.
// It performs no bytecode verification and no accessibility checking --
// those are explicit non-goals of spec.md §1.
package classfile

import (
	"bufio"
	"encoding/binary"
	"io"
)

const magic = 0xCAFEBABE

// accInterface / accModule are the only two access-flag bits this
// checker materially consults (spec.md §3); the rest are recorded for
// completeness but never branched on.
const (
	accInterface = 0x0200
	accModule    = 0x8000
)

// AttributeInfo preserves an attribute structurally; its payload is
// semantically inert for dependency checking (spec.md §3).
type AttributeInfo struct {
	NameIndex uint16
	Data      []byte
}

// FieldInfo is preserved structurally only -- fields never contribute
// references to the requirements/dependencies computation.
type FieldInfo struct {
	Flags           uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// MethodInfo is one entry of a class's method table.
type MethodInfo struct {
	Flags           uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// Class is the decoded class-file record of spec.md §3.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo

	// classEntryUsed records, per pool index, whether some FieldRef,
	// MethodRef, or InterfaceMethodRef entry has that index as its
	// class_index -- used by IsClassEntryUsed (spec.md §4.1) to suppress
	// references to classes that only ever appear as literals.
	classEntryUsed map[uint16]bool
}

// IsInterface reports the ACC_INTERFACE bit of the class access flags.
func (c *Class) IsInterface() bool { return c.AccessFlags&accInterface != 0 }

// IsModule reports the ACC_MODULE bit. Module-descriptor classes are
// skipped entirely by the checker (spec.md §4.3).
func (c *Class) IsModule() bool { return c.AccessFlags&accModule != 0 }

// Name resolves the class's own internal name via ThisClass.
func (c *Class) Name() (string, error) {
	return c.Pool.Class(c.ThisClass)
}

// SuperName resolves the superclass's internal name. A SuperClass of 0 is
// permitted only for java/lang/Object (spec.md §3); callers that need to
// distinguish "no super" from "has super" should check SuperClass == 0
// directly before calling SuperName.
func (c *Class) SuperName() (string, error) {
	if c.SuperClass == 0 {
		return "", nil
	}
	return c.Pool.Class(c.SuperClass)
}

// InterfaceNames resolves every entry of Interfaces to its internal name.
func (c *Class) InterfaceNames() ([]string, error) {
	names := make([]string, 0, len(c.Interfaces))
	for _, idx := range c.Interfaces {
		name, err := c.Pool.Class(idx)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// MethodSignatures returns the set of "name+descriptor" signatures
// declared directly by this class (spec.md §4.1's methods() derived
// operation).
func (c *Class) MethodSignatures() (map[string]struct{}, error) {
	result := make(map[string]struct{}, len(c.Methods))
	for _, m := range c.Methods {
		name, err := c.Pool.Utf8(m.NameIndex)
		if err != nil {
			return nil, err
		}
		descriptor, err := c.Pool.Utf8(m.DescriptorIndex)
		if err != nil {
			return nil, err
		}
		result[name+descriptor] = struct{}{}
	}
	return result, nil
}

// IsClassEntryUsed reports whether constant-pool index idx is used as the
// class_index of some FieldRef/MethodRef/InterfaceMethodRef entry.
func (c *Class) IsClassEntryUsed(idx uint16) bool {
	return c.classEntryUsed[idx]
}

// Parse decodes a class-file byte stream per spec.md §4.1. A malformed
// header, pool, or structural tail aborts the whole parse with a
// *jlerr.Error of kind ParseError.
func Parse(r io.Reader) (*Class, error) {
	br := bufio.NewReader(r)

	var gotMagic uint32
	if err := binary.Read(br, binary.BigEndian, &gotMagic); err != nil {
		return nil, cfe(errBadMagic)
	}
	if gotMagic != magic {
		return nil, cfe(errBadMagic)
	}

	c := &Class{}
	var err error

	if c.MinorVersion, err = readU16(br); err != nil {
		return nil, cfe("truncated file reading minor version")
	}
	if c.MajorVersion, err = readU16(br); err != nil {
		return nil, cfe("truncated file reading major version")
	}

	poolCount, err := readU16(br)
	if err != nil {
		return nil, cfe("truncated file reading constant pool count")
	}

	c.Pool, err = parseConstantPool(br, poolCount)
	if err != nil {
		return nil, err
	}

	if c.AccessFlags, err = readU16(br); err != nil {
		return nil, cfe("truncated file reading access flags")
	}
	if c.ThisClass, err = readU16(br); err != nil {
		return nil, cfe("truncated file reading this_class")
	}
	if c.SuperClass, err = readU16(br); err != nil {
		return nil, cfe("truncated file reading super_class")
	}

	ifaceCount, err := readU16(br)
	if err != nil {
		return nil, cfe("truncated file reading interfaces_count")
	}
	for i := uint16(0); i < ifaceCount; i++ {
		idx, err := readU16(br)
		if err != nil {
			return nil, cfe("truncated file reading interface #%d", i)
		}
		c.Interfaces = append(c.Interfaces, idx)
	}

	fieldCount, err := readU16(br)
	if err != nil {
		return nil, cfe("truncated file reading fields_count")
	}
	for i := uint16(0); i < fieldCount; i++ {
		f, err := parseFieldInfo(br)
		if err != nil {
			return nil, cfe("field #%d: %v", i, err)
		}
		c.Fields = append(c.Fields, f)
	}

	methodCount, err := readU16(br)
	if err != nil {
		return nil, cfe("truncated file reading methods_count")
	}
	for i := uint16(0); i < methodCount; i++ {
		m, err := parseMethodInfo(br)
		if err != nil {
			return nil, cfe("method #%d: %v", i, err)
		}
		c.Methods = append(c.Methods, m)
	}

	attrCount, err := readU16(br)
	if err != nil {
		return nil, cfe("truncated file reading attributes_count")
	}
	for i := uint16(0); i < attrCount; i++ {
		a, err := parseAttributeInfo(br)
		if err != nil {
			return nil, cfe("class attribute #%d: %v", i, err)
		}
		c.Attributes = append(c.Attributes, a)
	}

	c.classEntryUsed = computeClassEntryUsed(c.Pool)

	return c, nil
}

// WithClassEntryUsed attaches a precomputed class-entry-usage index to a
// hand-built Class, for callers (tests, primarily) that construct Class
// values directly rather than through Parse.
func WithClassEntryUsed(c *Class, used map[uint16]bool) *Class {
	c.classEntryUsed = used
	return c
}

func computeClassEntryUsed(pool ConstantPool) map[uint16]bool {
	used := make(map[uint16]bool)
	for _, entry := range pool {
		switch e := entry.(type) {
		case FieldRefEntry:
			used[e.ClassIndex] = true
		case MethodRefEntry:
			used[e.ClassIndex] = true
		case InterfaceMethodRefEntry:
			used[e.ClassIndex] = true
		}
	}
	return used
}

func parseFieldInfo(br *bufio.Reader) (FieldInfo, error) {
	f := FieldInfo{}
	var err error
	if f.Flags, err = readU16(br); err != nil {
		return f, err
	}
	if f.NameIndex, err = readU16(br); err != nil {
		return f, err
	}
	if f.DescriptorIndex, err = readU16(br); err != nil {
		return f, err
	}
	attrCount, err := readU16(br)
	if err != nil {
		return f, err
	}
	for i := uint16(0); i < attrCount; i++ {
		a, err := parseAttributeInfo(br)
		if err != nil {
			return f, err
		}
		f.Attributes = append(f.Attributes, a)
	}
	return f, nil
}

func parseMethodInfo(br *bufio.Reader) (MethodInfo, error) {
	m := MethodInfo{}
	var err error
	if m.Flags, err = readU16(br); err != nil {
		return m, err
	}
	if m.NameIndex, err = readU16(br); err != nil {
		return m, err
	}
	if m.DescriptorIndex, err = readU16(br); err != nil {
		return m, err
	}
	attrCount, err := readU16(br)
	if err != nil {
		return m, err
	}
	for i := uint16(0); i < attrCount; i++ {
		a, err := parseAttributeInfo(br)
		if err != nil {
			return m, err
		}
		m.Attributes = append(m.Attributes, a)
	}
	return m, nil
}

func parseAttributeInfo(br *bufio.Reader) (AttributeInfo, error) {
	a := AttributeInfo{}
	var err error
	if a.NameIndex, err = readU16(br); err != nil {
		return a, err
	}
	length, err := readU32(br)
	if err != nil {
		return a, err
	}
	a.Data = make([]byte, length)
	if _, err := io.ReadFull(br, a.Data); err != nil {
		return a, err
	}
	return a, nil
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
