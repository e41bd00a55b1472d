/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package checker computes, for a set of user classes and a platform
// digest, which references each class makes are unmet: not satisfiable by
// any other user class and not provided by the platform.
package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/B4ckslash/jar-verifier/classfile"
	"github.com/B4ckslash/jar-verifier/classinfo"
	"github.com/B4ckslash/jar-verifier/jlerr"
)

const clonedObjectSig = "clone()Ljava/lang/Object;"

// MethodRef is an (owner, signature) pair, the unit of a method dependency.
type MethodRef struct {
	Owner     string
	Signature string
}

// Requirements is everything a single user class refers to, before any
// resolution against the user universe or the platform digest.
type Requirements struct {
	ClassName            string
	ConsumedClasses      map[string]struct{}
	ConsumedClassMethods map[MethodRef]struct{}
	ConsumedIfaceMethods map[MethodRef]struct{}
}

// Dependencies is the surviving, unresolved subset of a Requirements after
// the resolution pass. It is the unit of output.
type Dependencies struct {
	ClassName    string
	Classes      []string
	ClassMethods []MethodRef
	IfaceMethods []MethodRef
}

// Empty reports whether all three sets are empty; empty Dependencies are
// dropped from the final result (spec.md §4.3, resolution step 3).
func (d Dependencies) Empty() bool {
	return len(d.Classes) == 0 && len(d.ClassMethods) == 0 && len(d.IfaceMethods) == 0
}

// ProvidedClass is the producer-pass record for one user class: its
// transitive method set and whether it is an interface.
type ProvidedClass struct {
	name    string
	methods map[string]struct{}
	isIface bool
}

// ComputeRequirements scans c's constant pool and builds its Requirements,
// per spec.md §4.3's consumer pass. Any malformed pool reference fails the
// whole computation -- the caller decides whether to skip this class or
// abort the run (spec.md §7 propagation policy).
func ComputeRequirements(c *classfile.Class) (Requirements, error) {
	name, err := c.Name()
	if err != nil {
		return Requirements{}, jlerr.Wrap(jlerr.ParseError, "computing requirements", err)
	}

	req := Requirements{
		ClassName:            name,
		ConsumedClasses:      make(map[string]struct{}),
		ConsumedClassMethods: make(map[MethodRef]struct{}),
		ConsumedIfaceMethods: make(map[MethodRef]struct{}),
	}

	// Module descriptors are not real types and contribute no requirements.
	if c.IsModule() {
		return req, nil
	}

	for idx, entry := range c.Pool {
		switch e := entry.(type) {
		case classfile.ClassEntry:
			if !c.IsClassEntryUsed(idx) {
				continue
			}
			rawName, err := c.Pool.Utf8(e.NameIndex)
			if err != nil {
				return Requirements{}, jlerr.Wrap(jlerr.ParseError, fmt.Sprintf("class %s: resolving Class entry %d", name, idx), err)
			}
			if stripped, ok := stripToReferenceType(rawName); ok {
				req.ConsumedClasses[stripped] = struct{}{}
			}
		case classfile.MethodRefEntry:
			owner, sig, err := resolveMemberRef(c, e.ClassIndex, e.NameTypeIndex)
			if err != nil {
				return Requirements{}, jlerr.Wrap(jlerr.ParseError, fmt.Sprintf("class %s: resolving MethodRef entry %d", name, idx), err)
			}
			if sig == clonedObjectSig {
				continue
			}
			req.ConsumedClassMethods[MethodRef{Owner: owner, Signature: sig}] = struct{}{}
		case classfile.InterfaceMethodRefEntry:
			owner, sig, err := resolveMemberRef(c, e.ClassIndex, e.NameTypeIndex)
			if err != nil {
				return Requirements{}, jlerr.Wrap(jlerr.ParseError, fmt.Sprintf("class %s: resolving InterfaceMethodRef entry %d", name, idx), err)
			}
			req.ConsumedIfaceMethods[MethodRef{Owner: owner, Signature: sig}] = struct{}{}
		}
	}

	return req, nil
}

func resolveMemberRef(c *classfile.Class, classIndex, nameTypeIndex uint16) (owner, sig string, err error) {
	owner, err = c.Pool.Class(classIndex)
	if err != nil {
		return "", "", err
	}
	methodName, descriptor, err := c.Pool.NameAndType(nameTypeIndex)
	if err != nil {
		return "", "", err
	}
	return owner, methodName + descriptor, nil
}

// stripToReferenceType implements spec.md §4.3's consumed_classes field
// extraction: strip leading '[' (array dimensions), then a leading 'L',
// then a trailing ';'. If what remains is a single-character primitive
// tag, or the original had array dimensions stripped down to a primitive
// element, it is not a reference type and ok is false.
func stripToReferenceType(raw string) (name string, ok bool) {
	s := raw
	for strings.HasPrefix(s, "[") {
		s = s[1:]
	}
	if strings.HasPrefix(s, "L") && strings.HasSuffix(s, ";") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "L"), ";")
		return s, true
	}
	if isPrimitiveTag(s) {
		return "", false
	}
	return s, true
}

func isPrimitiveTag(s string) bool {
	if len(s) != 1 {
		return false
	}
	switch s[0] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return true
	}
	return false
}

// Provided computes provided(C) for every user class, per spec.md §4.3's
// producer pass: the transitive method set each class instance exposes,
// walking super/interface chains through both the user universe and the
// platform digest. Classes whose is_module() bit is set are skipped
// entirely. A class whose Name() cannot be resolved fails the whole
// computation with a ParseError.
func Provided(classes []*classfile.Class, digest classinfo.Digest) (map[string]ProvidedClass, error) {
	byName := make(map[string]*classfile.Class, len(classes))
	for _, c := range classes {
		if c.IsModule() {
			continue
		}
		name, err := c.Name()
		if err != nil {
			return nil, jlerr.Wrap(jlerr.ParseError, "computing provided set", err)
		}
		byName[name] = c
	}

	result := make(map[string]ProvidedClass, len(byName))
	for name, c := range byName {
		methods, err := collect(name, byName, digest, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		result[name] = ProvidedClass{name: name, methods: methods, isIface: c.IsInterface()}
	}
	return result, nil
}

// collect is the recursive method-set union of spec.md §4.3's collect().
// It is memo-free by design (recomputation is cheap for realistic
// inheritance depth); a visited set guards only against malformed cyclic
// input, which is impossible for well-formed class files.
func collect(name string, users map[string]*classfile.Class, digest classinfo.Digest, visited map[string]bool) (map[string]struct{}, error) {
	if visited[name] {
		return map[string]struct{}{}, nil
	}
	visited[name] = true

	if c, ok := users[name]; ok {
		own, err := c.MethodSignatures()
		if err != nil {
			return nil, jlerr.Wrap(jlerr.ParseError, fmt.Sprintf("collecting methods of %s", name), err)
		}
		union := make(map[string]struct{}, len(own))
		for sig := range own {
			union[sig] = struct{}{}
		}
		if c.SuperClass != 0 {
			superName, err := c.SuperName()
			if err != nil {
				return nil, err
			}
			superMethods, err := collect(superName, users, digest, visited)
			if err != nil {
				return nil, err
			}
			mergeInto(union, superMethods)
		}
		ifaceNames, err := c.InterfaceNames()
		if err != nil {
			return nil, err
		}
		for _, iface := range ifaceNames {
			ifaceMethods, err := collect(iface, users, digest, visited)
			if err != nil {
				return nil, err
			}
			mergeInto(union, ifaceMethods)
		}
		return union, nil
	}

	if pc, ok := digest[name]; ok {
		union := make(map[string]struct{}, len(pc.Methods))
		for sig := range pc.Methods {
			union[sig] = struct{}{}
		}
		if pc.Super != "" {
			superMethods, err := collect(pc.Super, users, digest, visited)
			if err != nil {
				return nil, err
			}
			mergeInto(union, superMethods)
		}
		for _, iface := range pc.Interfaces {
			ifaceMethods, err := collect(iface, users, digest, visited)
			if err != nil {
				return nil, err
			}
			mergeInto(union, ifaceMethods)
		}
		return union, nil
	}

	return map[string]struct{}{}, nil
}

func mergeInto(dst, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}

// Resolve runs the resolution phase of spec.md §4.3 over every
// Requirements, removing anything satisfied by the platform digest or by a
// user class's provided set, and returns the surviving non-empty
// Dependencies sorted by class name, with each record's three line groups
// sorted by key.
func Resolve(reqs []Requirements, userProvided map[string]ProvidedClass, digest classinfo.Digest) []Dependencies {
	result := make([]Dependencies, 0, len(reqs))

	for _, req := range reqs {
		classes := make(map[string]struct{}, len(req.ConsumedClasses))
		for name := range req.ConsumedClasses {
			classes[name] = struct{}{}
		}
		classMethods := make(map[MethodRef]struct{}, len(req.ConsumedClassMethods))
		for ref := range req.ConsumedClassMethods {
			classMethods[ref] = struct{}{}
		}
		ifaceMethods := make(map[MethodRef]struct{}, len(req.ConsumedIfaceMethods))
		for ref := range req.ConsumedIfaceMethods {
			ifaceMethods[ref] = struct{}{}
		}

		// Step 1: remove anything the platform digest satisfies.
		for name := range classes {
			if _, ok := digest[name]; ok {
				delete(classes, name)
			}
		}
		for ref := range classMethods {
			if digest.Provides(ref.Owner, ref.Signature) {
				delete(classMethods, ref)
			}
		}
		for ref := range ifaceMethods {
			if digest.Provides(ref.Owner, ref.Signature) {
				delete(ifaceMethods, ref)
			}
		}

		// Step 2: remove anything a user class satisfies.
		for _, p := range userProvided {
			if _, ok := classes[p.name]; ok {
				delete(classes, p.name)
			}
			if !p.isIface {
				for ref := range classMethods {
					if ref.Owner != p.name {
						continue
					}
					if _, has := p.methods[ref.Signature]; has {
						delete(classMethods, ref)
					}
				}
			} else {
				for ref := range ifaceMethods {
					if ref.Owner != p.name {
						continue
					}
					if _, has := p.methods[ref.Signature]; has {
						delete(ifaceMethods, ref)
					}
				}
			}
		}

		dep := Dependencies{
			ClassName:    req.ClassName,
			Classes:      sortedKeys(classes),
			ClassMethods: sortedRefs(classMethods),
			IfaceMethods: sortedRefs(ifaceMethods),
		}
		if !dep.Empty() {
			result = append(result, dep)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ClassName < result[j].ClassName })
	return result
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedRefs(m map[MethodRef]struct{}) []MethodRef {
	out := make([]MethodRef, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Owner != out[j].Owner {
			return out[i].Owner < out[j].Owner
		}
		return out[i].Signature < out[j].Signature
	})
	return out
}
