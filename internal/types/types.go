// Package types defines the resolved-type model for PeopleCode expressions
// and the builtin function/member catalog consulted during inference.
package types

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of type variants.
type Kind int

const (
	KindUnknown Kind = iota // parse/inference failure placeholder
	KindAny                 // top type, assignable to and from everything
	KindPrimitive
	KindArray
	KindAppClass
	KindBuiltinObject
)

// TypeInfo is an immutable resolved type. The zero value is Unknown.
type TypeInfo struct {
	Kind Kind
	// Name holds the primitive name (lower case), builtin object name, or
	// qualified application class path, depending on Kind.
	Name string
	// Dimensions is the array depth. Zero dimensions on an array type is a
	// wildcard used only as a member-catalog key, never as a concrete
	// expression type.
	Dimensions int
	Elem       *TypeInfo
}

// Canonical primitive names.
const (
	NameNumber   = "number"
	NameInteger  = "integer"
	NameFloat    = "float"
	NameString   = "string"
	NameBoolean  = "boolean"
	NameDate     = "date"
	NameTime     = "time"
	NameDateTime = "datetime"
)

// Unknown returns the inference-failure placeholder type.
func Unknown() TypeInfo { return TypeInfo{Kind: KindUnknown} }

// Any returns the top type.
func Any() TypeInfo { return TypeInfo{Kind: KindAny} }

// Primitive returns a primitive type with the given canonical name.
func Primitive(name string) TypeInfo {
	return TypeInfo{Kind: KindPrimitive, Name: strings.ToLower(name)}
}

// Number returns the number primitive.
func Number() TypeInfo { return Primitive(NameNumber) }

// Str returns the string primitive.
func Str() TypeInfo { return Primitive(NameString) }

// Boolean returns the boolean primitive.
func Boolean() TypeInfo { return Primitive(NameBoolean) }

// Date returns the date primitive.
func Date() TypeInfo { return Primitive(NameDate) }

// Array returns an array type of the given depth and element type.
func Array(dims int, elem TypeInfo) TypeInfo {
	e := elem
	return TypeInfo{Kind: KindArray, Dimensions: dims, Elem: &e}
}

// ArrayWildcard returns the dimensionless array matcher used as a member
// catalog key.
func ArrayWildcard() TypeInfo {
	return TypeInfo{Kind: KindArray, Dimensions: 0}
}

// AppClass returns an application class type for a qualified path.
func AppClass(path string) TypeInfo {
	return TypeInfo{Kind: KindAppClass, Name: path}
}

// BuiltinObject returns a builtin object type (Record, Field, Rowset, ...).
func BuiltinObject(name string) TypeInfo {
	return TypeInfo{Kind: KindBuiltinObject, Name: name}
}

// IsUnknown reports whether t is the Unknown placeholder.
func (t TypeInfo) IsUnknown() bool { return t.Kind == KindUnknown }

// IsAny reports whether t is the Any top type.
func (t TypeInfo) IsAny() bool { return t.Kind == KindAny }

// IsNumeric reports whether t is a numeric primitive.
func (t TypeInfo) IsNumeric() bool {
	if t.Kind != KindPrimitive {
		return false
	}
	switch t.Name {
	case NameNumber, NameInteger, NameFloat:
		return true
	}
	return false
}

// IsString reports whether t is the string primitive.
func (t TypeInfo) IsString() bool {
	return t.Kind == KindPrimitive && t.Name == NameString
}

// IsBoolean reports whether t is the boolean primitive.
func (t TypeInfo) IsBoolean() bool {
	return t.Kind == KindPrimitive && t.Name == NameBoolean
}

// Equal reports structural equality. Name comparison is case-insensitive,
// matching the language.
func (t TypeInfo) Equal(other TypeInfo) bool {
	if t.Kind != other.Kind || t.Dimensions != other.Dimensions {
		return false
	}
	if !strings.EqualFold(t.Name, other.Name) {
		return false
	}
	if (t.Elem == nil) != (other.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*other.Elem) {
		return false
	}
	return true
}

// AssignableFrom reports whether a value of type other can be assigned to
// a slot of type t. Any accepts everything and flows into everything;
// Unknown is compatible with everything so uncertainty never cascades into
// spurious diagnostics.
func (t TypeInfo) AssignableFrom(other TypeInfo) bool {
	if t.IsAny() || other.IsAny() || t.IsUnknown() || other.IsUnknown() {
		return true
	}
	if t.IsNumeric() && other.IsNumeric() {
		return true
	}
	if t.Kind == KindAppClass && other.Kind == KindAppClass {
		// Subclass relationships are metadata the core does not own;
		// accept and let the collaborator-informed passes refine.
		return true
	}
	return t.Equal(other)
}

// ElemType returns the type produced by indexing one level into t.
// Indexing the innermost level yields the element type; a one-dimensional
// array of X yields X.
func (t TypeInfo) ElemType() TypeInfo {
	if t.Kind != KindArray {
		return Unknown()
	}
	if t.Dimensions > 1 {
		return TypeInfo{Kind: KindArray, Dimensions: t.Dimensions - 1, Elem: t.Elem}
	}
	if t.Elem != nil {
		return *t.Elem
	}
	return Any()
}

// String renders the type the way a declaration would spell it.
func (t TypeInfo) String() string {
	switch t.Kind {
	case KindAny:
		return "any"
	case KindPrimitive:
		return t.Name
	case KindArray:
		if t.Dimensions == 0 {
			return "array"
		}
		s := strings.Repeat("array of ", t.Dimensions)
		if t.Elem != nil {
			return s + t.Elem.String()
		}
		return strings.TrimSuffix(s, " of ")
	case KindAppClass:
		return t.Name
	case KindBuiltinObject:
		return t.Name
	default:
		return "unknown"
	}
}

// FromDeclaration maps a declared type name to a TypeInfo. Builtin object
// names (Record, Field, ...) resolve to builtin objects; anything else
// unrecognized resolves to Any, since event programs routinely reference
// object types this core does not model.
func FromDeclaration(name string) TypeInfo {
	lower := strings.ToLower(name)
	switch lower {
	case "any":
		return Any()
	case NameNumber, NameInteger, NameFloat, NameString, NameBoolean, NameDate, NameTime, NameDateTime:
		return Primitive(lower)
	}
	if canonical, ok := builtinObjectNames[lower]; ok {
		return BuiltinObject(canonical)
	}
	return Any()
}

// builtinObjectNames maps folded builtin object type names to their
// canonical spelling.
var builtinObjectNames = map[string]string{
	"record":        "Record",
	"field":         "Field",
	"rowset":        "Rowset",
	"row":           "Row",
	"sql":           "SQL",
	"file":          "File",
	"array":         "Array",
	"exception":     "Exception",
	"message":       "Message",
	"xmldoc":        "XmlDoc",
	"xmlnode":       "XmlNode",
	"javaobject":    "JavaObject",
	"apiobject":     "ApiObject",
	"grid":          "Grid",
	"gridcolumn":    "GridColumn",
	"page":          "Page",
	"component":     "Component",
	"jsonobject":    "JsonObject",
	"jsonarray":     "JsonArray",
	"documentation": "Documentation",
}

// MemberKey returns the catalog key for member lookup on t: primitives use
// their name, arrays of any depth collapse to the wildcard "array" key,
// builtin objects use their canonical name. App classes and Any/Unknown
// have no catalog entries.
func (t TypeInfo) MemberKey() (string, bool) {
	switch t.Kind {
	case KindPrimitive:
		return t.Name, true
	case KindArray:
		return "array", true
	case KindBuiltinObject:
		return strings.ToLower(t.Name), true
	}
	return "", false
}

// FormatMismatch builds a stable diagnostic message for operand mismatches.
func FormatMismatch(op string, left, right TypeInfo) string {
	return fmt.Sprintf("operator %s cannot combine %s and %s", op, left, right)
}
