// Package errors provides error handling for household.
//
// It re-exports github.com/cockroachdb/errors so every package wraps, marks
// and inspects errors the same way, and defines the sentinels shared across
// the module.
//
//	if err := coll.InsertOne(ctx, doc); err != nil {
//	    return errors.Wrapf(err, "insert into %s", coll.Name())
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	Mark         = crdb.Mark
)

// Inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions mark violations of internal invariants.
var (
	AssertionFailedf                 = crdb.AssertionFailedf
	NewAssertionErrorWithWrappedErrf = crdb.NewAssertionErrorWithWrappedErrf
	WithAssertionFailure             = crdb.WithAssertionFailure
	HasAssertionFailure              = crdb.HasAssertionFailure
)

var (
	// ErrNotFound indicates the requested document or key does not exist.
	ErrNotFound = New("not found")

	// ErrInvalidArgument indicates a caller supplied a malformed value.
	ErrInvalidArgument = New("invalid argument")
)

// InvalidArgumentf returns a formatted error marked as ErrInvalidArgument.
func InvalidArgumentf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidArgument)
}

// IsInvalidArgument reports whether err is or wraps ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return err != nil && Is(err, ErrInvalidArgument)
}
