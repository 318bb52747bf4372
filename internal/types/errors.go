package types

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error is a coded error with a context of named values.
type Error struct {
	Code    string
	Context map[string]any
}

func (err Error) Error() string {
	return fmt.Sprintf("%+v: %+v", err.Code, err.Context)
}

// NewError builds a coded error from alternating context names and values.
func NewError(code string, args ...any) Error {
	n := len(args)
	if n%2 != 0 {
		panic("Invalid error context args")
	}
	err := Error{Code: code, Context: make(map[string]any, n/2)}
	for i := 0; i < n; i += 2 {
		s, ok := args[i].(string)
		if !ok {
			panic("Invalid error context args")
		}
		err.Context[s] = args[i+1]
	}
	return err
}

// MarkError builds a coded error that also satisfies errors.Is for the given sentinel.
func MarkError(sentinel error, code string, args ...any) error {
	return errors.Mark(NewError(code, args...), sentinel)
}

// Code returns the code of the first coded error in the chain, if any.
func Code(err error) (code string) {
	var coded Error
	if errors.As(err, &coded) {
		code = coded.Code
	}
	return
}
