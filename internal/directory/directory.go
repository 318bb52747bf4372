// Package directory contains an in-memory directory information tree.
package directory

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/index"
	"github.com/dball/ldapabstract/internal/logging"
	"github.com/dball/ldapabstract/internal/sys"
	. "github.com/dball/ldapabstract/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var (
	ErrInvalidDN           = errors.New("directory: invalid dn")
	ErrNoSuchEntry         = errors.New("directory: no such entry")
	ErrEntryExists         = errors.New("directory: entry already exists")
	ErrNotAllowedOnNonLeaf = errors.New("directory: entry has children")
	ErrNoSuchAttribute     = errors.New("directory: no such attribute or value")
	ErrValueExists         = errors.New("directory: attribute or value exists")
	ErrNoValues            = errors.New("directory: add requires values")
	ErrSingleValue         = errors.New("directory: attribute is single valued")
	ErrNoUserModification  = errors.New("directory: attribute is maintained by the directory")
	ErrInvalidSyntax       = errors.New("directory: value does not conform to syntax")
)

// Options configure a directory.
type Options struct {
	// Degree is the degree of the entry btree.
	Degree int
	// Logger receives debug records of writes.
	Logger *zap.Logger
	// Now supplies timestamps for operational attributes.
	Now func() time.Time
}

var defaultOptions = Options{
	Degree: 32,
	Now:    time.Now,
}

// Directory is a mutable tree of entries. Directories are safe for concurrent use.
type Directory struct {
	entries *index.Index[index.Key, Record]
	logger  *zap.Logger
	now     func() time.Time
	lock    sync.RWMutex
}

// Snapshot is an immutable view of a directory. Snapshots are safe for concurrent use.
type Snapshot struct {
	entries *index.Index[index.Key, Record]
}

// New returns an empty directory.
func New(options Options) (dir *Directory) {
	degree := options.Degree
	if degree == 0 {
		degree = defaultOptions.Degree
	}
	now := options.Now
	if now == nil {
		now = defaultOptions.Now
	}
	dir = &Directory{
		entries: index.New[index.Key, Record](degree),
		logger:  logging.Component(options.Logger, "directory"),
		now:     now,
	}
	return
}

// Read returns a snapshot of the current state of the directory.
// Cloning writes to the tree's copy-on-write state, so it takes the write lock.
func (dir *Directory) Read() (snapshot *Snapshot) {
	dir.lock.Lock()
	defer dir.lock.Unlock()
	snapshot = &Snapshot{entries: dir.entries.Clone()}
	return
}

// Len returns the number of entries in the directory.
func (dir *Directory) Len() int {
	dir.lock.RLock()
	defer dir.lock.RUnlock()
	return dir.entries.Len()
}

// Add stores a new entry. The directory assigns its operational attributes.
func (dir *Directory) Add(record Record) (err error) {
	key := index.KeyOf(record.DN)
	if key == "" || !sys.ValidRaw(sys.SyntaxDN, []byte(record.DN)) {
		err = MarkError(ErrInvalidDN, "directory.add.invalidDN", "dn", record.DN)
		return
	}
	stored := Record{DN: record.DN, Attributes: make([]RawAttribute, 0, len(record.Attributes)+3)}
	for _, attr := range record.Attributes {
		if err = checkUserModification(attr.Name); err != nil {
			return
		}
		if err = checkValues(attr.Name, attr.Values); err != nil {
			return
		}
		stored.Attributes = setValues(stored.Attributes, attr.Name, attr.Values)
	}
	dir.lock.Lock()
	defer dir.lock.Unlock()
	if _, found := dir.entries.Get(key); found {
		err = MarkError(ErrEntryExists, "directory.add.entryExists", "dn", record.DN)
		return
	}
	stamp := []byte(dir.now().UTC().Format(sys.GeneralizedTimeFormat))
	stored.Attributes = append(stored.Attributes,
		RawAttribute{Name: "entryUUID", Values: [][]byte{[]byte(uuid.NewString())}},
		RawAttribute{Name: "createTimestamp", Values: [][]byte{stamp}},
		RawAttribute{Name: "modifyTimestamp", Values: [][]byte{stamp}},
	)
	dir.entries.Put(key, stored)
	dir.logger.Debug("added entry", zap.String(logging.FieldDN, record.DN))
	return
}

// Delete removes a leaf entry.
func (dir *Directory) Delete(dn string) (err error) {
	key := index.KeyOf(dn)
	dir.lock.Lock()
	defer dir.lock.Unlock()
	if _, found := dir.entries.Get(key); !found {
		err = MarkError(ErrNoSuchEntry, "directory.delete.noSuchEntry", "dn", dn)
		return
	}
	children := dir.entries.Select(key, func(k index.Key) bool { return k.Within(key) })
	defer children.Stop()
	for children.Next() {
		if index.KeyOf(children.Value().DN) != key {
			err = MarkError(ErrNotAllowedOnNonLeaf, "directory.delete.notAllowedOnNonLeaf", "dn", dn)
			return
		}
	}
	dir.entries.Delete(key)
	dir.logger.Debug("deleted entry", zap.String(logging.FieldDN, dn))
	return
}

// Modify atomically applies the changes to the entry. Either every change applies or none do.
func (dir *Directory) Modify(dn string, changes []Change) (err error) {
	key := index.KeyOf(dn)
	dir.lock.Lock()
	defer dir.lock.Unlock()
	record, found := dir.entries.Get(key)
	if !found {
		err = MarkError(ErrNoSuchEntry, "directory.modify.noSuchEntry", "dn", dn)
		return
	}
	if len(changes) == 0 {
		return
	}
	attrs := cloneAttributes(record.Attributes)
	for _, change := range changes {
		attrs, err = apply(attrs, change)
		if err != nil {
			err = errors.Wrapf(err, "modify %s", dn)
			return
		}
	}
	stamp := []byte(dir.now().UTC().Format(sys.GeneralizedTimeFormat))
	attrs = setValues(attrs, "modifyTimestamp", [][]byte{stamp})
	dir.entries.Put(key, Record{DN: record.DN, Attributes: attrs})
	dir.logger.Debug("modified entry", zap.String(logging.FieldDN, dn), zap.Int(logging.FieldCount, len(changes)))
	return
}

func apply(attrs []RawAttribute, change Change) (result []RawAttribute, err error) {
	result = attrs
	name := change.Attribute
	if err = checkUserModification(name); err != nil {
		return
	}
	current, _ := Record{Attributes: attrs}.Get(name)
	switch change.Operation {
	case OperationAdd:
		if len(change.Values) == 0 {
			err = MarkError(ErrNoValues, "directory.modify.noValues", "attribute", name)
			return
		}
		values := slices.Clone(current)
		for _, value := range change.Values {
			if containsValue(values, value) {
				err = MarkError(ErrValueExists, "directory.modify.valueExists", "attribute", name, "value", string(value))
				return
			}
			values = append(values, value)
		}
		if err = checkValues(name, values); err != nil {
			return
		}
		result = setValues(attrs, name, values)
	case OperationDelete:
		if current == nil {
			err = MarkError(ErrNoSuchAttribute, "directory.modify.noSuchAttribute", "attribute", name)
			return
		}
		if len(change.Values) == 0 {
			result = setValues(attrs, name, nil)
			return
		}
		values := make([][]byte, 0, len(current))
		for _, value := range change.Values {
			if !containsValue(current, value) {
				err = MarkError(ErrNoSuchAttribute, "directory.modify.noSuchValue", "attribute", name, "value", string(value))
				return
			}
		}
		for _, value := range current {
			if !containsValue(change.Values, value) {
				values = append(values, value)
			}
		}
		result = setValues(attrs, name, values)
	case OperationReplace:
		if err = checkValues(name, change.Values); err != nil {
			return
		}
		result = setValues(attrs, name, change.Values)
	default:
		err = NewError("directory.modify.invalidOperation", "operation", change.Operation)
	}
	return
}

func checkUserModification(name string) error {
	attrType, ok := sys.LookupAttrType(name)
	if ok && attrType.Operational {
		return MarkError(ErrNoUserModification, "directory.noUserModification", "attribute", name)
	}
	return nil
}

func checkValues(name string, values [][]byte) error {
	attrType, ok := sys.LookupAttrType(name)
	if !ok {
		return nil
	}
	if attrType.SingleValue && len(values) > 1 {
		return MarkError(ErrSingleValue, "directory.singleValue", "attribute", name, "count", len(values))
	}
	for _, value := range values {
		if !sys.ValidRaw(attrType.Syntax, value) {
			return MarkError(ErrInvalidSyntax, "directory.invalidSyntax", "attribute", name, "value", string(value))
		}
	}
	return nil
}

func containsValue(values [][]byte, value []byte) bool {
	for _, v := range values {
		if bytes.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// setValues returns the attributes with the named attribute's values set, removing the
// attribute when there are none. The first name used for an attribute is retained.
func setValues(attrs []RawAttribute, name string, values [][]byte) []RawAttribute {
	for i, attr := range attrs {
		if strings.EqualFold(attr.Name, name) {
			if len(values) == 0 {
				return slices.Delete(attrs, i, i+1)
			}
			attrs[i] = RawAttribute{Name: attr.Name, Values: cloneValues(values)}
			return attrs
		}
	}
	if len(values) == 0 {
		return attrs
	}
	return append(attrs, RawAttribute{Name: name, Values: cloneValues(values)})
}

func cloneValues(values [][]byte) [][]byte {
	clone := make([][]byte, len(values))
	for i, value := range values {
		clone[i] = slices.Clone(value)
	}
	return clone
}

func cloneAttributes(attrs []RawAttribute) []RawAttribute {
	clone := make([]RawAttribute, len(attrs))
	for i, attr := range attrs {
		clone[i] = RawAttribute{Name: attr.Name, Values: cloneValues(attr.Values)}
	}
	return clone
}
