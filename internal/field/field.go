package field

import (
	"fmt"
	"strings"
)

// Type represents the type of data that is held in a subrecord element.
type Type uint8

const (
	FTUnknown Type = 0
	FTUInt    Type = 1
	FTInt     Type = 2
	FTFloat   Type = 3
	FTUShort  Type = 4
	FTShort   Type = 5
	FTByte    Type = 6
	FTSByte   Type = 7
	FTFormID  Type = 8
	FTString  Type = 9
	FTBString Type = 10
	FTIString Type = 11
	FTLString Type = 12
	FTStr4    Type = 13
)

var typeNames = [...]string{
	FTUnknown: "Unknown",
	FTUInt:    "UInt",
	FTInt:     "Int",
	FTFloat:   "Float",
	FTUShort:  "UShort",
	FTShort:   "Short",
	FTByte:    "Byte",
	FTSByte:   "SByte",
	FTFormID:  "FormID",
	FTString:  "String",
	FTBString: "BString",
	FTIString: "IString",
	FTLString: "LString",
	FTStr4:    "Str4",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports if t is one of the known element types.
func (t Type) Valid() bool {
	return t > FTUnknown && t <= FTStr4
}

// Parse converts a type name into a Type. Matching is case insensitive so that
// "uint", "UInt" and "UINT" are all accepted.
func Parse(s string) (Type, error) {
	for i, n := range typeNames {
		if i == 0 {
			continue
		}
		if strings.EqualFold(n, s) {
			return Type(i), nil
		}
	}
	return FTUnknown, fmt.Errorf("unknown field type %q", s)
}

// Width returns the number of bytes a fixed size Type occupies. Variable length
// types return 0.
func Width(ft Type) int {
	switch ft {
	case FTByte, FTSByte:
		return 1
	case FTUShort, FTShort:
		return 2
	case FTUInt, FTInt, FTFloat, FTFormID, FTStr4:
		return 4
	}
	return 0
}

// IsInteger determines if a Type holds an integer that can carry flag bits.
func IsInteger(ft Type) bool {
	switch ft {
	case FTUInt, FTInt, FTUShort, FTShort, FTByte, FTSByte:
		return true
	}
	return false
}

// IsString determines if a Type is decoded through a code page.
func IsString(ft Type) bool {
	switch ft {
	case FTString, FTBString, FTIString, FTLString, FTStr4:
		return true
	}
	return false
}
