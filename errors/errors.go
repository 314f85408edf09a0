// Package errors provides the errors package for snip. It includes all of the stdlib's
// functions and types plus the error kinds produced by the chunk buffer and the codec.
package errors

import (
	"context"
	"fmt"

	"github.com/gostdlib/base/errors"
)

// Category represents the category of the error.
type Category uint32

func (c Category) Category() string {
	return c.String()
}

func (c Category) String() string {
	switch c {
	case CatUser:
		return "User"
	case CatInternal:
		return "Internal"
	case CatSchema:
		return "Schema"
	}
	return "Unknown"
}

const (
	// CatUnknown represents an unknown category. This should not be used.
	CatUnknown Category = Category(0) // Unknown
	// CatUser represents an error that is caused by bad user input or bad record data.
	CatUser Category = Category(1) // User
	// CatInternal represents an internal error.
	CatInternal Category = Category(2) // Internal
	// CatSchema represents a defect in a schema definition.
	CatSchema Category = Category(3) // Schema
)

// Type represents the type of the error.
type Type uint16

func (t Type) Type() string {
	return t.String()
}

const (
	// TypeUnknown represents an unknown type.
	TypeUnknown Type = Type(0) // Unknown
	// TypeBug represents a bug in the calling code. This is only bugs that are known bugs and
	// not because of bad user input. An example would be a switch statement that doesn't cover
	// all cases. The default case should return an error of this type.
	TypeBug Type = Type(1) // Bug
	// TypeParameter represents an error with a parameter that didn't pass validation.
	TypeParameter Type = Type(2) // Parameter

	// TypeCapacityExceeded is returned when an operation would grow a buffer past its capacity.
	TypeCapacityExceeded Type = Type(100) // CapacityExceeded
	// TypeSourceRangeInvalid is returned when a source holds fewer bytes than requested.
	TypeSourceRangeInvalid Type = Type(101) // SourceRangeInvalid
	// TypePositionOutOfRange is returned when a seek lands past the valid bytes of a region.
	TypePositionOutOfRange Type = Type(102) // PositionOutOfRange
	// TypeBufferOverrun is returned when a read runs past the valid bytes of a region.
	TypeBufferOverrun Type = Type(103) // BufferOverrun
	// TypeEmptyInput is returned when the input region holds no bytes.
	TypeEmptyInput Type = Type(104) // EmptyInput
	// TypeNegativeIndex is returned for negative starts, counts and positions.
	TypeNegativeIndex Type = Type(105) // NegativeIndex
	// TypeEmptyOutput is returned when the output region holds no bytes.
	TypeEmptyOutput Type = Type(106) // EmptyOutput

	// TypeStructureMismatch is returned when record bytes do not fit the schema.
	TypeStructureMismatch Type = Type(200) // StructureMismatch
	// TypeUnknownFieldType is returned when a schema names a type that does not exist.
	TypeUnknownFieldType Type = Type(201) // UnknownFieldType
	// TypeValidation is returned when edited text cannot be encoded.
	TypeValidation Type = Type(202) // ValidationError
	// TypeReadOnly is returned when saving a record whose structure could not be decoded.
	TypeReadOnly Type = Type(203) // ReadOnly
	// TypeUnknownCompression is returned when no compressor is registered for a type.
	TypeUnknownCompression Type = Type(204) // UnknownCompression
)

var typeNames = map[Type]string{
	TypeUnknown:            "Unknown",
	TypeBug:                "Bug",
	TypeParameter:          "Parameter",
	TypeCapacityExceeded:   "CapacityExceeded",
	TypeSourceRangeInvalid: "SourceRangeInvalid",
	TypePositionOutOfRange: "PositionOutOfRange",
	TypeBufferOverrun:      "BufferOverrun",
	TypeEmptyInput:         "EmptyInput",
	TypeNegativeIndex:      "NegativeIndex",
	TypeEmptyOutput:        "EmptyOutput",
	TypeStructureMismatch:  "StructureMismatch",
	TypeUnknownFieldType:   "UnknownFieldType",
	TypeValidation:         "ValidationError",
	TypeReadOnly:           "ReadOnly",
	TypeUnknownCompression: "UnknownCompression",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint16(t))
}

// LogAttrer is an interface that can be implemented by an error to return a list of attributes
// used in logging.
type LogAttrer = errors.LogAttrer

// Error is the error type for this package. Error implements github.com/gostdlib/base/errors.E .
type Error = errors.Error

// EOption is an optional argument for E().
type EOption = errors.EOption

// WithCallNum is used if you need to set the runtime.CallNum() in order to get the correct filename and line.
// This can happen if you create a call wrapper around E(), because you would then need to look up one more stack frame
// for every wrapper. This defaults to 1 which sets to the frame of the caller of E().
func WithCallNum(i int) EOption {
	return errors.WithCallNum(i)
}

// WithStackTrace will add a stack trace to the error. This is useful for debugging schema
// definitions that fail deep inside a decode.
func WithStackTrace() EOption {
	return errors.WithStackTrace()
}

// E creates a new Error with the given parameters.
func E(ctx context.Context, c Category, t Type, msg error, options ...EOption) Error {
	// This makes sure we do the correct call number since we are a wrapper. Now, if they set the
	// call number, this will not override it.
	opts := make([]errors.EOption, 0, len(options)+1)
	opts = append(opts, WithCallNum(2))
	opts = append(opts, options...)

	return errors.E(ctx, c, t, msg, opts...)
}
