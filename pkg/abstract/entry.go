package abstract

import (
	"strings"
	"weak"

	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/sys"
	"github.com/dball/ldapabstract/internal/types"
)

// Change is a modification of one attribute, as sent to a Connection.
type Change = types.Change

// Operation is the kind of a Change.
type Operation = types.Operation

const (
	OperationAdd     = types.OperationAdd
	OperationDelete  = types.OperationDelete
	OperationReplace = types.OperationReplace
)

// Encoder is implemented by definitions that encode staged values themselves. Other
// definitions are encoded by the syntax of the standard attribute type of their name.
type Encoder interface {
	Encode(values []any) ([][]byte, error)
}

// Entry is a record read from a directory: a distinguished name and its attributes.
// Entries are not safe for concurrent use.
type Entry struct {
	dn         string
	reader     weak.Pointer[Reader]
	attributes []*Attribute
}

func newEntry(dn string, reader *Reader) (entry *Entry) {
	entry = &Entry{dn: dn}
	if reader != nil {
		entry.reader = weak.Make(reader)
	}
	return
}

// NewEntry returns a detached entry holding the given attributes.
func NewEntry(dn string, attributes ...*Attribute) *Entry {
	entry := newEntry(dn, nil)
	entry.attributes = append(entry.attributes, attributes...)
	return entry
}

// DN returns the distinguished name of the entry.
func (entry *Entry) DN() string { return entry.dn }

// Reader returns the reader that read the entry, or nil.
func (entry *Entry) Reader() *Reader { return entry.reader.Value() }

// Attribute returns the attribute with the given key or directory name, compared case-insensitively.
func (entry *Entry) Attribute(key string) (attr *Attribute, found bool) {
	for _, a := range entry.attributes {
		if strings.EqualFold(a.key, key) || strings.EqualFold(a.definition.Name(), key) {
			attr = a
			found = true
			return
		}
	}
	return
}

// Attributes returns the attributes in definition order.
func (entry *Entry) Attributes() []*Attribute {
	attrs := make([]*Attribute, len(entry.attributes))
	copy(attrs, entry.attributes)
	return attrs
}

// Keys returns the attribute keys in definition order.
func (entry *Entry) Keys() []string {
	keys := make([]string, len(entry.attributes))
	for i, attr := range entry.attributes {
		keys[i] = attr.key
	}
	return keys
}

// Len returns the number of attributes.
func (entry *Entry) Len() int {
	return len(entry.attributes)
}

func (entry *Entry) String() string {
	var b strings.Builder
	b.WriteString("DN: ")
	b.WriteString(entry.dn)
	for _, attr := range entry.attributes {
		b.WriteString("\n")
		b.WriteString(attr.Format(4))
	}
	return b.String()
}

// HasChanges returns true if any attribute has a staged modification.
func (entry *Entry) HasChanges() bool {
	for _, attr := range entry.attributes {
		if attr.HasStaged() {
			return true
		}
	}
	return false
}

// Changes encodes the staged modifications. For each attribute in definition order, a
// replacement precedes a deletion, which precedes an addition.
func (entry *Entry) Changes() (changes []Change, err error) {
	for _, attr := range entry.attributes {
		name := attr.definition.Name()
		for _, kind := range []struct {
			operation Operation
			staged    staged
		}{
			{OperationReplace, attr.toReplace},
			{OperationDelete, attr.toDelete},
			{OperationAdd, attr.toAdd},
		} {
			if !kind.staged.present {
				continue
			}
			var raw [][]byte
			raw, err = encode(attr.definition, kind.staged.values)
			if err != nil {
				err = errors.Wrapf(err, "%s %s", kind.operation, entry.dn)
				changes = nil
				return
			}
			changes = append(changes, Change{Operation: kind.operation, Attribute: name, Values: raw})
		}
	}
	return
}

// ClearChanges discards the staged modifications of every attribute.
func (entry *Entry) ClearChanges() {
	for _, attr := range entry.attributes {
		attr.ClearStaged()
	}
}

func encode(definition Definition, values []any) (raw [][]byte, err error) {
	if len(values) == 0 {
		return
	}
	if encoder, ok := definition.(Encoder); ok {
		raw, err = encoder.Encode(values)
		return
	}
	syntax := sys.SyntaxOf(definition.Name())
	raw = make([][]byte, 0, len(values))
	for _, value := range values {
		var r []byte
		r, err = sys.Encode(syntax, value)
		if err != nil {
			raw = nil
			return
		}
		raw = append(raw, r)
	}
	return
}
