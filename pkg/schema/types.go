package schema

import (
	"github.com/aretw0/schemacheck/pkg/jsonvalue"
)

// TypeName is a value accepted by the "type" keyword.
type TypeName string

const (
	TypeString  TypeName = "string"
	TypeNumber  TypeName = "number"
	TypeInteger TypeName = "integer"
	TypeBoolean TypeName = "boolean"
	TypeObject  TypeName = "object"
	TypeArray   TypeName = "array"
	TypeNull    TypeName = "null"
)

// TypeNames lists the recognised type names.
var TypeNames = []TypeName{TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray, TypeNull}

// Matches reports whether v satisfies the type name.
// Unknown names match nothing. Booleans never satisfy number or integer.
func (t TypeName) Matches(v jsonvalue.Value) bool {
	switch t {
	case TypeString:
		return v.IsString()
	case TypeNumber:
		return v.IsNumber()
	case TypeInteger:
		return v.IsWholeNumber()
	case TypeBoolean:
		return v.IsBool()
	case TypeObject:
		return v.IsObject()
	case TypeArray:
		return v.IsArray()
	case TypeNull:
		return v.IsNull()
	default:
		return false
	}
}

// matchesTypeEntry checks one entry of a "type" keyword. Non-string entries never match.
func matchesTypeEntry(v jsonvalue.Value, entry jsonvalue.Value) bool {
	name, ok := entry.AsString()
	if !ok {
		return false
	}
	return TypeName(name).Matches(v)
}
