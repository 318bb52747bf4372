package abstract

import (
	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/logging"
	"github.com/dball/ldapabstract/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope is the extent of a search relative to its base entry.
type Scope = types.Scope

const (
	ScopeBase     = types.ScopeBase
	ScopeOneLevel = types.ScopeOneLevel
	ScopeSubtree  = types.ScopeSubtree
)

// SearchResult is an entry as returned by a directory, with values in wire form.
type SearchResult = types.Record

// RawAttribute is an attribute of a SearchResult.
type RawAttribute = types.RawAttribute

// SearchRequest selects entries from a directory.
type SearchRequest struct {
	Base  string
	Scope Scope
	// ObjectClasses, if given, must all be values of a selected entry's objectClass.
	ObjectClasses []string
	// Attributes lists the attributes to return, as in an LDAP search request.
	Attributes []string
}

// Connection is a session with a directory.
type Connection interface {
	Search(request SearchRequest) ([]SearchResult, error)
	Modify(dn string, changes []Change) error
}

// LogConfig selects the output format and level of a logger built by NewLogger.
type LogConfig = logging.Config

// NewLogger builds a logger writing to stderr, for use as Config.Logger.
func NewLogger(config LogConfig) (*zap.Logger, error) {
	return logging.New(config)
}

// Config configures a reader. The zero value is usable.
type Config struct {
	// Logger receives the reader's logs. Nil discards them.
	Logger *zap.Logger
	// Scope is the scope of Search. The zero value searches only the base entry.
	Scope Scope
	// Attributes overrides the attributes requested by searches, which default to the
	// names of the defined attributes.
	Attributes []string
	// SizeLimit, if positive, is the most entries a search returns.
	SizeLimit int
}

// Reader reads entries of one object definition from a connection, and commits the
// modifications staged on them.
type Reader struct {
	id         uuid.UUID
	conn       Connection
	definition *ObjectDef
	config     Config
	logger     *zap.Logger
}

// NewReader returns a reader of entries of the definition.
func NewReader(conn Connection, definition *ObjectDef, config Config) (reader *Reader) {
	id := uuid.New()
	reader = &Reader{
		id:         id,
		conn:       conn,
		definition: definition,
		config:     config,
		logger:     logging.Component(config.Logger, "reader").With(zap.String(logging.FieldSession, id.String())),
	}
	return
}

// ID identifies the reader in its logs.
func (reader *Reader) ID() uuid.UUID { return reader.id }

// Definition returns the object definition the reader materializes entries with.
func (reader *Reader) Definition() *ObjectDef { return reader.definition }

// Search returns the entries at or below base in the configured scope.
func (reader *Reader) Search(base string) ([]*Entry, error) {
	return reader.SearchScope(base, reader.config.Scope)
}

// SearchScope returns the entries at or below base in the given scope. Every defined
// attribute is present on every entry, without values if the directory returned none.
// When the size limit truncates the results, the entries are returned with
// ErrSizeLimitExceeded.
func (reader *Reader) SearchScope(base string, scope Scope) (entries []*Entry, err error) {
	results, err := reader.conn.Search(reader.request(base, scope))
	if err != nil {
		err = errors.Wrapf(err, "search %s", base)
		return
	}
	limited := false
	if limit := reader.config.SizeLimit; limit > 0 && len(results) > limit {
		results = results[:limit]
		limited = true
	}
	entries = make([]*Entry, 0, len(results))
	for _, result := range results {
		var entry *Entry
		entry, err = reader.materialize(result)
		if err != nil {
			entries = nil
			return
		}
		entries = append(entries, entry)
	}
	reader.logger.Debug("searched",
		zap.String(logging.FieldBase, base),
		zap.Stringer(logging.FieldScope, scope),
		zap.Int(logging.FieldCount, len(entries)))
	if limited {
		err = types.MarkError(ErrSizeLimitExceeded, "reader.search.sizeLimitExceeded", "base", base, "limit", reader.config.SizeLimit)
	}
	return
}

// Get returns the entry with the dn.
func (reader *Reader) Get(dn string) (entry *Entry, err error) {
	entries, err := reader.SearchScope(dn, ScopeBase)
	if err != nil {
		return
	}
	if len(entries) == 0 {
		err = types.MarkError(ErrNoSuchEntry, "reader.get.noSuchEntry", "dn", dn)
		return
	}
	entry = entries[0]
	return
}

// Commit sends the modifications staged on the entry to the directory. On success the
// staged modifications are cleared and the entry's attributes are replaced by ones
// holding the values the directory now has. Attributes obtained before the commit keep
// their values.
func (reader *Reader) Commit(entry *Entry) (err error) {
	if entry.Reader() != reader {
		err = types.MarkError(ErrForeignEntry, "reader.commit.foreignEntry", "dn", entry.dn)
		return
	}
	if !entry.HasChanges() {
		return
	}
	changes, err := entry.Changes()
	if err != nil {
		return
	}
	for _, change := range changes {
		reader.logger.Debug("staged change",
			zap.String(logging.FieldDN, entry.dn),
			zap.Stringer(logging.FieldOperation, change.Operation),
			zap.String(logging.FieldAttribute, change.Attribute),
			zap.Int(logging.FieldCount, len(change.Values)))
	}
	if err = reader.conn.Modify(entry.dn, changes); err != nil {
		reader.logger.Warn("commit failed",
			zap.String(logging.FieldDN, entry.dn),
			zap.NamedError(logging.FieldError, err))
		err = errors.Wrapf(err, "commit %s", entry.dn)
		return
	}
	entry.ClearChanges()
	reader.logger.Info("committed",
		zap.String(logging.FieldDN, entry.dn),
		zap.Int(logging.FieldCount, len(changes)))
	err = reader.refresh(entry)
	return
}

// Refresh replaces the entry's attributes with ones holding the directory's current
// values. Staged modifications are discarded.
func (reader *Reader) Refresh(entry *Entry) (err error) {
	if entry.Reader() != reader {
		err = types.MarkError(ErrForeignEntry, "reader.refresh.foreignEntry", "dn", entry.dn)
		return
	}
	err = reader.refresh(entry)
	return
}

func (reader *Reader) refresh(entry *Entry) (err error) {
	results, err := reader.conn.Search(reader.request(entry.dn, ScopeBase))
	if err != nil {
		err = errors.Wrapf(err, "refresh %s", entry.dn)
		return
	}
	if len(results) == 0 {
		err = types.MarkError(ErrNoSuchEntry, "reader.refresh.noSuchEntry", "dn", entry.dn)
		return
	}
	attributes, err := reader.attributes(entry, results[0])
	if err != nil {
		return
	}
	entry.attributes = attributes
	return
}

func (reader *Reader) request(base string, scope Scope) SearchRequest {
	attributes := reader.config.Attributes
	if len(attributes) == 0 {
		attributes = reader.definition.Names()
	}
	return SearchRequest{
		Base:          base,
		Scope:         scope,
		ObjectClasses: reader.definition.ObjectClasses,
		Attributes:    attributes,
	}
}

func (reader *Reader) materialize(result SearchResult) (entry *Entry, err error) {
	entry = newEntry(result.DN, reader)
	entry.attributes, err = reader.attributes(entry, result)
	if err != nil {
		entry = nil
	}
	return
}

// attributes builds the defined attributes in definition order, followed by any other
// attributes the directory returned, with definitions derived from their names.
func (reader *Reader) attributes(entry *Entry, result SearchResult) (attributes []*Attribute, err error) {
	defs := reader.definition.Defs()
	attributes = make([]*Attribute, 0, len(defs))
	for _, def := range defs {
		raw, _ := result.Get(def.name)
		var attr *Attribute
		if attr, err = reader.attribute(def, entry, raw); err != nil {
			attributes = nil
			return
		}
		attributes = append(attributes, attr)
	}
	for _, rawAttr := range result.Attributes {
		if _, defined := reader.definition.Get(rawAttr.Name); defined {
			continue
		}
		var attr *Attribute
		if attr, err = reader.attribute(NewAttrDef(rawAttr.Name), entry, rawAttr.Values); err != nil {
			attributes = nil
			return
		}
		attributes = append(attributes, attr)
	}
	return
}

func (reader *Reader) attribute(def *AttrDef, entry *Entry, raw [][]byte) (attr *Attribute, err error) {
	values, err := def.Decode(raw)
	if err != nil {
		err = errors.Wrapf(err, "materialize %s", entry.dn)
		return
	}
	attr = newAttribute(def, entry, reader)
	attr.populate(values, raw)
	return
}
