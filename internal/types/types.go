// Package types defines the core system types.
package types

import (
	"bytes"
	"fmt"
	"strings"
)

// Void is used for values in maps used as sets.
type Void struct{}

// Scope is the extent of a search relative to its base entry.
type Scope int

const (
	// ScopeBase selects only the base entry.
	ScopeBase Scope = iota
	// ScopeOneLevel selects the immediate children of the base entry.
	ScopeOneLevel
	// ScopeSubtree selects the base entry and all of its descendants.
	ScopeSubtree
)

func (s Scope) String() string {
	switch s {
	case ScopeBase:
		return "base"
	case ScopeOneLevel:
		return "one"
	case ScopeSubtree:
		return "sub"
	default:
		return "unknown"
	}
}

// Operation is the kind of a modification.
type Operation int

const (
	// OperationAdd adds values to an attribute.
	OperationAdd Operation = 0
	// OperationDelete deletes values from an attribute, or the attribute itself when no values are given.
	OperationDelete Operation = 1
	// OperationReplace replaces all values of an attribute, removing it when no values are given.
	OperationReplace Operation = 2
)

func (op Operation) String() string {
	switch op {
	case OperationAdd:
		return "add"
	case OperationDelete:
		return "delete"
	case OperationReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is a single modification of one attribute of an entry.
type Change struct {
	Operation Operation
	Attribute string
	Values    [][]byte
}

func (c Change) String() string {
	return fmt.Sprintf("#change[%s %s %d]", c.Operation, c.Attribute, len(c.Values))
}

// RawAttribute is an attribute name with its values in wire form.
type RawAttribute struct {
	Name   string
	Values [][]byte
}

// Record is an entry as stored or returned by a directory.
type Record struct {
	DN         string
	Attributes []RawAttribute
}

// Get returns the values of the named attribute. Names are compared case-insensitively.
func (r Record) Get(name string) (values [][]byte, ok bool) {
	for _, attr := range r.Attributes {
		if strings.EqualFold(attr.Name, name) {
			values = attr.Values
			ok = true
			return
		}
	}
	return
}

// HasValue returns true if the named attribute holds the value. String values
// are compared case-insensitively, as most directory string syntaxes are.
func (r Record) HasValue(name string, value []byte) bool {
	values, ok := r.Get(name)
	if !ok {
		return false
	}
	for _, v := range values {
		if bytes.EqualFold(v, value) {
			return true
		}
	}
	return false
}
