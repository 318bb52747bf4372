package directory

import (
	"strings"

	"github.com/dball/ldapabstract/internal/index"
	"github.com/dball/ldapabstract/internal/logging"
	"github.com/dball/ldapabstract/internal/sys"
	. "github.com/dball/ldapabstract/internal/types"
	"go.uber.org/zap"
)

// Query selects entries from a directory.
type Query struct {
	// Base is the dn of the entry at which the search starts.
	Base string
	// Scope limits the entries relative to the base.
	Scope Scope
	// Match, if given, must return true for an entry to be selected.
	Match func(Record) bool
	// Attributes lists the attributes to return. Empty or "*" selects every user attribute;
	// "+" selects every operational attribute.
	Attributes []string
}

// Search returns the entries selected by the query, in tree order.
func (snapshot *Snapshot) Search(query Query) (records []Record, err error) {
	base := index.KeyOf(query.Base)
	if base != "" {
		if _, found := snapshot.entries.Get(base); !found {
			err = MarkError(ErrNoSuchEntry, "directory.search.noSuchBase", "base", query.Base)
			return
		}
	}
	depth := base.Depth()
	iter := snapshot.entries.Select(base, func(k index.Key) bool { return k.Within(base) })
	records = []Record{}
	for iter.Next() {
		record := iter.Value()
		key := index.KeyOf(record.DN)
		switch query.Scope {
		case ScopeBase:
			if key != base {
				continue
			}
		case ScopeOneLevel:
			if key.Depth() != depth+1 {
				continue
			}
		}
		if query.Match != nil && !query.Match(record) {
			continue
		}
		records = append(records, project(record, query.Attributes))
	}
	return
}

// Get returns a copy of the entry with all of its attributes.
func (snapshot *Snapshot) Get(dn string) (record Record, found bool) {
	record, found = snapshot.entries.Get(index.KeyOf(dn))
	if found {
		record = Record{DN: record.DN, Attributes: cloneAttributes(record.Attributes)}
	}
	return
}

// Search searches the current state of the directory.
func (dir *Directory) Search(query Query) (records []Record, err error) {
	records, err = dir.Read().Search(query)
	if err != nil {
		return
	}
	dir.logger.Debug("searched",
		zap.String(logging.FieldBase, query.Base),
		zap.Stringer(logging.FieldScope, query.Scope),
		zap.Int(logging.FieldCount, len(records)))
	return
}

func project(record Record, names []string) (projected Record) {
	users, operationals := len(names) == 0, false
	wanted := make(map[string]Void, len(names))
	for _, name := range names {
		switch name {
		case "*":
			users = true
		case "+":
			operationals = true
		default:
			wanted[strings.ToLower(name)] = Void{}
		}
	}
	projected.DN = record.DN
	for _, attr := range record.Attributes {
		_, named := wanted[strings.ToLower(attr.Name)]
		attrType, known := sys.LookupAttrType(attr.Name)
		operational := known && attrType.Operational
		if named || (operational && operationals) || (!operational && users) {
			projected.Attributes = append(projected.Attributes, RawAttribute{Name: attr.Name, Values: cloneValues(attr.Values)})
		}
	}
	return
}
