// Package pberrors defines the tagged error taxonomy the pixel-buffer
// engine surfaces to callers. No component wraps these further; a caller
// that wants to branch on failure kind uses errors.As against *Error.
package pberrors

import (
	"errors"
	"fmt"
)

// Kind tags the class of failure. Callers should switch on Kind rather
// than match error strings.
type Kind int

const (
	// InvalidUri: scheme unknown, ".zarr" segment absent, or user-info
	// present in an S3 URI.
	InvalidUri Kind = iota
	// InvalidCredentialsConfig: ambient AWS_* environment credentials
	// detected at S3 credential-provider construction.
	InvalidCredentialsConfig
	// InvalidMultiscales: missing "multiscales", missing X/Y axis, or an
	// axis name outside {t,c,z,y,x}.
	InvalidMultiscales
	// StoreError: any I/O failure other than not-found.
	StoreError
	// OutOfRange: requested public resolution level outside [0, L-1].
	OutOfRange
	// DimensionsOutOfBounds: a requested x/y/z/c/t or tile corner falls
	// outside the current level's bounds.
	DimensionsOutOfBounds
	// RequestTooLarge: w*h exceeds maxPlaneWidth*maxPlaneHeight.
	RequestTooLarge
	// UnsupportedDataType: array element type outside the supported set.
	UnsupportedDataType
	// Unsupported: write/truncate/digest/hypercube/strided/byte-offset
	// operations, none of which this engine implements.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case InvalidUri:
		return "InvalidUri"
	case InvalidCredentialsConfig:
		return "InvalidCredentialsConfig"
	case InvalidMultiscales:
		return "InvalidMultiscales"
	case StoreError:
		return "StoreError"
	case OutOfRange:
		return "OutOfRange"
	case DimensionsOutOfBounds:
		return "DimensionsOutOfBounds"
	case RequestTooLarge:
		return "RequestTooLarge"
	case UnsupportedDataType:
		return "UnsupportedDataType"
	case Unsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// Error is the concrete tagged error type the engine's operations return
// on failure; a few paths (store.ErrNotFound, tilecache.NewLoader, a
// non-object "ome" key in ".zattrs") return plain errors instead. It
// satisfies errors.Unwrap so callers can still inspect the
// underlying cause (e.g. a *smithy.OperationError from the S3 client).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a *Error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a *Error tagging an existing error with a Kind.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is a *Error of the given Kind, anywhere in its
// wrap chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
