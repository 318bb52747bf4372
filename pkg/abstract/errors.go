package abstract

import (
	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/directory"
	"github.com/dball/ldapabstract/internal/types"
)

var (
	// ErrInvalidValue is returned when a definition rejects a value being staged.
	ErrInvalidValue = errors.New("abstract: invalid attribute value")
	// ErrReadOnly is returned on any attempt to assign attribute fields directly.
	ErrReadOnly = errors.New("abstract: attribute is read only")
	// ErrIndexOutOfRange is returned for positions outside an attribute's values.
	ErrIndexOutOfRange = errors.New("abstract: index out of range")
	// ErrDuplicateDefinition is returned when an object definition already defines a key.
	ErrDuplicateDefinition = errors.New("abstract: attribute already defined")
	// ErrForeignEntry is returned when a reader is asked to commit an entry it did not read.
	ErrForeignEntry = errors.New("abstract: entry belongs to another reader")
	// ErrSizeLimitExceeded is returned with the entries of a search truncated by the size limit.
	ErrSizeLimitExceeded = errors.New("abstract: size limit exceeded")
)

// Errors returned by the in-memory directory.
var (
	ErrInvalidDN           = directory.ErrInvalidDN
	ErrInvalidSyntax       = directory.ErrInvalidSyntax
	ErrNoSuchEntry         = directory.ErrNoSuchEntry
	ErrEntryExists         = directory.ErrEntryExists
	ErrNotAllowedOnNonLeaf = directory.ErrNotAllowedOnNonLeaf
	ErrNoSuchAttribute     = directory.ErrNoSuchAttribute
	ErrNoValues            = directory.ErrNoValues
	ErrValueExists         = directory.ErrValueExists
	ErrSingleValue         = directory.ErrSingleValue
	ErrNoUserModification  = directory.ErrNoUserModification
)

// ErrorCode returns the code of a coded error, e.g. "attribute.readOnly", or the empty string.
func ErrorCode(err error) string {
	return types.Code(err)
}
