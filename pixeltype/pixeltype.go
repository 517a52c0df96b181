// Package pixeltype enumerates the pixel element types this engine can
// move bytes for, and the Zarr dtype strings that map onto them.
package pixeltype

import (
	"fmt"
	"strconv"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

// Type is the sum type over supported pixel element types. Zarr's i8
// (64-bit integer) is deliberately absent: spec documents it unsupported.
type Type int

const (
	Int8 Type = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

func (t Type) String() string {
	switch t {
	case Int8:
		return "INT8"
	case Uint8:
		return "UINT8"
	case Int16:
		return "INT16"
	case Uint16:
		return "UINT16"
	case Int32:
		return "INT32"
	case Uint32:
		return "UINT32"
	case Float32:
		return "FLOAT"
	case Float64:
		return "DOUBLE"
	default:
		return "UNKNOWN"
	}
}

// ByteWidth returns the on-wire size in bytes of one element.
func (t Type) ByteWidth() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// IsSigned reports whether the type is a signed integer or float.
func (t Type) IsSigned() bool {
	switch t {
	case Int8, Int16, Int32, Float32, Float64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether the type is a floating-point type.
func (t Type) IsFloat() bool {
	return t == Float32 || t == Float64
}

// Endian is the on-disk byte order declared by a Zarr dtype string.
type Endian byte

const (
	LittleEndian Endian = '<'
	BigEndian    Endian = '>'
	NotApplicable Endian = '|' // single-byte types: no byte order
)

// ParseDType parses a numpy-style Zarr dtype string such as "<u2", ">f4",
// or "|i1" into its Type and declared on-disk Endian.
//
// i8 (64-bit integer, numpy kind 'i' size 8) and any unrecognized kind
// fail with pberrors.UnsupportedDataType, per spec.
func ParseDType(s string) (Type, Endian, error) {
	if len(s) < 3 {
		return 0, 0, pberrors.New(pberrors.UnsupportedDataType, "invalid dtype %q", s)
	}

	endian := Endian(s[0])
	switch endian {
	case '<', '>', '|':
	default:
		return 0, 0, pberrors.New(pberrors.UnsupportedDataType, "invalid dtype endianness in %q", s)
	}

	kind := s[1]
	size, err := strconv.Atoi(s[2:])
	if err != nil {
		return 0, 0, pberrors.New(pberrors.UnsupportedDataType, "invalid dtype size in %q", s)
	}

	switch {
	case kind == 'i' && size == 1:
		return Int8, endian, nil
	case kind == 'u' && size == 1:
		return Uint8, endian, nil
	case kind == 'i' && size == 2:
		return Int16, endian, nil
	case kind == 'u' && size == 2:
		return Uint16, endian, nil
	case kind == 'i' && size == 4:
		return Int32, endian, nil
	case kind == 'u' && size == 4:
		return Uint32, endian, nil
	case kind == 'f' && size == 4:
		return Float32, endian, nil
	case kind == 'f' && size == 8:
		return Float64, endian, nil
	case kind == 'i' && size == 8:
		return 0, 0, pberrors.New(pberrors.UnsupportedDataType, "64-bit integer dtype %q is unsupported", s)
	default:
		return 0, 0, pberrors.New(pberrors.UnsupportedDataType, "unsupported dtype %q", s)
	}
}

// DTypeString renders a Type + Endian back into a numpy-style dtype
// string.
func DTypeString(t Type, e Endian) (string, error) {
	var kind byte
	switch t {
	case Int8, Int16, Int32:
		kind = 'i'
	case Uint8, Uint16, Uint32:
		kind = 'u'
	case Float32, Float64:
		kind = 'f'
	default:
		return "", fmt.Errorf("unsupported type %v", t)
	}
	return fmt.Sprintf("%c%c%d", e, kind, t.ByteWidth()), nil
}
