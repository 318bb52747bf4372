package abstract

import (
	"github.com/dball/ldapabstract/internal/directory"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MemoryDirectory is an in-memory directory that readers can connect to. It applies
// modifications with LDAP semantics and assigns the operational attributes entryUUID,
// createTimestamp and modifyTimestamp. It is safe for concurrent use.
type MemoryDirectory struct {
	dir *directory.Directory
}

var _ Connection = (*MemoryDirectory)(nil)

// NewMemoryDirectory returns an empty directory logging to the logger, which may be nil.
func NewMemoryDirectory(logger *zap.Logger) *MemoryDirectory {
	return &MemoryDirectory{dir: directory.New(directory.Options{Logger: logger})}
}

// Add stores an entry with the given string values. Attributes are stored in name order.
func (m *MemoryDirectory) Add(dn string, attributes map[string][]string) error {
	names := maps.Keys(attributes)
	slices.Sort(names)
	record := SearchResult{DN: dn, Attributes: make([]RawAttribute, 0, len(names))}
	for _, name := range names {
		values := make([][]byte, len(attributes[name]))
		for i, value := range attributes[name] {
			values[i] = []byte(value)
		}
		record.Attributes = append(record.Attributes, RawAttribute{Name: name, Values: values})
	}
	return m.dir.Add(record)
}

// AddRecord stores an entry with values in wire form.
func (m *MemoryDirectory) AddRecord(record SearchResult) error {
	return m.dir.Add(record)
}

// Delete removes a leaf entry.
func (m *MemoryDirectory) Delete(dn string) error {
	return m.dir.Delete(dn)
}

// Len returns the number of entries.
func (m *MemoryDirectory) Len() int {
	return m.dir.Len()
}

// Search returns copies of the selected entries in tree order.
func (m *MemoryDirectory) Search(request SearchRequest) ([]SearchResult, error) {
	query := directory.Query{
		Base:       request.Base,
		Scope:      request.Scope,
		Attributes: request.Attributes,
	}
	if len(request.ObjectClasses) > 0 {
		objectClasses := request.ObjectClasses
		query.Match = func(record SearchResult) bool {
			for _, objectClass := range objectClasses {
				if !record.HasValue("objectClass", []byte(objectClass)) {
					return false
				}
			}
			return true
		}
	}
	return m.dir.Search(query)
}

// Modify atomically applies the changes to the entry.
func (m *MemoryDirectory) Modify(dn string, changes []Change) error {
	return m.dir.Modify(dn, changes)
}
