package types

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultToolsRelease is the PeopleTools release assumed when the caller
// does not configure one.
const DefaultToolsRelease = "8.54"

// MemberKind distinguishes property extensions from method extensions.
type MemberKind int

const (
	MemberProperty MemberKind = iota
	MemberMethod
)

// MemberInfo describes one builtin member extension on a target type.
type MemberInfo struct {
	Name       string
	Kind       MemberKind
	Result     TypeInfo
	MinRelease string // empty means available in every supported release
}

// FunctionInfo describes one builtin function.
type FunctionInfo struct {
	Name       string
	Result     TypeInfo
	MinArgs    int
	MaxArgs    int // -1 means variadic
	MinRelease string
}

// Catalog is the explicit static registry of builtin functions, system
// variables, and type member extensions. Entries carry a minimum
// PeopleTools release; the catalog is built for one configured release and
// skips entries that release does not have yet.
type Catalog struct {
	release    *semver.Version
	functions  map[string]FunctionInfo
	systemVars map[string]TypeInfo
	members    map[string]map[string]MemberInfo // target key -> folded member name
}

// NewCatalog builds a catalog gated to the given PeopleTools release
// (for example "8.54").
func NewCatalog(release string) (*Catalog, error) {
	if release == "" {
		release = DefaultToolsRelease
	}
	v, err := semver.NewVersion(release)
	if err != nil {
		return nil, fmt.Errorf("invalid tools release %q: %w", release, err)
	}

	c := &Catalog{
		release:    v,
		functions:  make(map[string]FunctionInfo),
		systemVars: make(map[string]TypeInfo),
		members:    make(map[string]map[string]MemberInfo),
	}
	c.populate()
	return c, nil
}

// MustNewCatalog builds a catalog for the default release. It panics only
// on a programming error in the default release constant.
func MustNewCatalog() *Catalog {
	c, err := NewCatalog(DefaultToolsRelease)
	if err != nil {
		panic(err)
	}
	return c
}

// Release returns the release the catalog was built for.
func (c *Catalog) Release() string { return c.release.Original() }

// available reports whether an entry with the given minimum release exists
// in the configured release.
func (c *Catalog) available(minRelease string) bool {
	if minRelease == "" {
		return true
	}
	min, err := semver.NewVersion(minRelease)
	if err != nil {
		return false
	}
	return !c.release.LessThan(min)
}

func (c *Catalog) addFunction(name string, result TypeInfo, minArgs, maxArgs int, minRelease string) {
	if !c.available(minRelease) {
		return
	}
	c.functions[strings.ToLower(name)] = FunctionInfo{
		Name: name, Result: result, MinArgs: minArgs, MaxArgs: maxArgs, MinRelease: minRelease,
	}
}

func (c *Catalog) addSystemVar(name string, result TypeInfo) {
	c.systemVars[strings.ToLower(name)] = result
}

func (c *Catalog) addMember(targetKey, name string, kind MemberKind, result TypeInfo, minRelease string) {
	if !c.available(minRelease) {
		return
	}
	key := strings.ToLower(targetKey)
	if c.members[key] == nil {
		c.members[key] = make(map[string]MemberInfo)
	}
	c.members[key][strings.ToLower(name)] = MemberInfo{
		Name: name, Kind: kind, Result: result, MinRelease: minRelease,
	}
}

// LookupFunction resolves a builtin function by name, case-insensitively.
func (c *Catalog) LookupFunction(name string) (FunctionInfo, bool) {
	fi, ok := c.functions[strings.ToLower(name)]
	return fi, ok
}

// LookupSystemVar resolves a %-system variable by name (with or without
// the sigil).
func (c *Catalog) LookupSystemVar(name string) (TypeInfo, bool) {
	ti, ok := c.systemVars[strings.ToLower(strings.TrimPrefix(name, "%"))]
	return ti, ok
}

// LookupMember resolves a member extension on a target type. Arrays of any
// dimensionality share the wildcard "array" key.
func (c *Catalog) LookupMember(target TypeInfo, member string) (MemberInfo, bool) {
	key, ok := target.MemberKey()
	if !ok {
		return MemberInfo{}, false
	}
	table, ok := c.members[key]
	if !ok {
		return MemberInfo{}, false
	}
	mi, ok := table[strings.ToLower(member)]
	return mi, ok
}

// populate loads the builtin tables. The set is intentionally the
// high-traffic surface of the language, not the whole of PeopleBooks;
// unresolved names degrade to Unknown during inference.
func (c *Catalog) populate() {
	num := Number()
	str := Str()
	boolean := Boolean()
	anyT := Any()

	// --- Builtin functions ---
	c.addFunction("Len", num, 1, 1, "")
	c.addFunction("Upper", str, 1, 1, "")
	c.addFunction("Lower", str, 1, 1, "")
	c.addFunction("LTrim", str, 1, 2, "")
	c.addFunction("RTrim", str, 1, 2, "")
	c.addFunction("Substring", str, 3, 3, "")
	c.addFunction("Find", num, 2, 3, "")
	c.addFunction("Rept", str, 2, 2, "")
	c.addFunction("String", str, 1, 1, "")
	c.addFunction("Value", num, 1, 1, "")
	c.addFunction("Abs", num, 1, 1, "")
	c.addFunction("Round", num, 2, 2, "")
	c.addFunction("Truncate", num, 2, 2, "")
	c.addFunction("Mod", num, 2, 2, "")
	c.addFunction("Int", num, 1, 1, "")
	c.addFunction("Float", num, 1, 1, "")
	c.addFunction("IsDate", boolean, 1, 1, "")
	c.addFunction("IsNumber", boolean, 1, 1, "")
	c.addFunction("All", boolean, 1, -1, "")
	c.addFunction("None", boolean, 1, -1, "")
	c.addFunction("DateValue", Date(), 1, 1, "")
	c.addFunction("Date", Date(), 1, 1, "")
	c.addFunction("Days", num, 1, 1, "")
	c.addFunction("AddToDate", Date(), 4, 4, "")
	c.addFunction("MsgGet", str, 3, -1, "")
	c.addFunction("MsgGetText", str, 3, -1, "")
	c.addFunction("MessageBox", num, 5, -1, "")
	c.addFunction("WinMessage", num, 1, 3, "")
	c.addFunction("SQLExec", boolean, 1, -1, "")
	c.addFunction("CreateSQL", BuiltinObject("SQL"), 0, -1, "")
	c.addFunction("CreateRecord", BuiltinObject("Record"), 1, 1, "")
	c.addFunction("GetRecord", BuiltinObject("Record"), 0, 1, "")
	c.addFunction("CreateRowset", BuiltinObject("Rowset"), 1, -1, "")
	c.addFunction("GetRowset", BuiltinObject("Rowset"), 0, 1, "")
	c.addFunction("GetField", BuiltinObject("Field"), 0, 1, "")
	c.addFunction("CreateArray", Array(1, anyT), 0, -1, "")
	c.addFunction("CreateArrayRept", Array(1, anyT), 2, 2, "")
	c.addFunction("CreateArrayAny", Array(1, anyT), 0, -1, "")
	c.addFunction("Split", Array(1, str), 1, 2, "")
	c.addFunction("CreateException", BuiltinObject("Exception"), 2, -1, "")
	c.addFunction("GetFile", BuiltinObject("File"), 2, -1, "")
	c.addFunction("CreateJavaObject", BuiltinObject("JavaObject"), 1, -1, "")
	c.addFunction("CreateXmlDoc", BuiltinObject("XmlDoc"), 0, 1, "")
	c.addFunction("GenToken", str, 0, 0, "8.55")
	c.addFunction("CreateJsonObject", BuiltinObject("JsonObject"), 0, 0, "8.55")
	c.addFunction("CreateJsonArray", BuiltinObject("JsonArray"), 0, 0, "8.55")
	c.addFunction("CreateJsonParser", BuiltinObject("JsonObject"), 0, 0, "8.55")

	// --- System variables ---
	c.addSystemVar("UserId", str)
	c.addSystemVar("OperatorId", str)
	c.addSystemVar("EmplId", str)
	c.addSystemVar("EmployeeId", str)
	c.addSystemVar("Language", str)
	c.addSystemVar("Language_User", str)
	c.addSystemVar("DbName", str)
	c.addSystemVar("DbType", str)
	c.addSystemVar("Component", str)
	c.addSystemVar("Page", str)
	c.addSystemVar("Menu", str)
	c.addSystemVar("Market", str)
	c.addSystemVar("Node", str)
	c.addSystemVar("Portal", str)
	c.addSystemVar("Date", Date())
	c.addSystemVar("Time", Primitive(NameTime))
	c.addSystemVar("Datetime", Primitive(NameDateTime))
	c.addSystemVar("SQLRows", num)
	c.addSystemVar("This", anyT)
	c.addSystemVar("Super", anyT)

	// --- Member extensions: string ---
	c.addMember("string", "Len", MemberProperty, num, "")
	c.addMember("string", "Upper", MemberMethod, str, "")
	c.addMember("string", "Lower", MemberMethod, str, "")
	c.addMember("string", "Trim", MemberMethod, str, "")
	c.addMember("string", "Substring", MemberMethod, str, "")
	c.addMember("string", "Split", MemberMethod, Array(1, str), "")
	c.addMember("string", "Contains", MemberMethod, boolean, "8.55")

	// --- Member extensions: array (wildcard over all dimensionalities) ---
	c.addMember("array", "Len", MemberProperty, num, "")
	c.addMember("array", "Push", MemberMethod, anyT, "")
	c.addMember("array", "Pop", MemberMethod, anyT, "")
	c.addMember("array", "Find", MemberMethod, num, "")
	c.addMember("array", "Join", MemberMethod, str, "")
	c.addMember("array", "Reverse", MemberMethod, anyT, "")

	// --- Member extensions: builtin objects ---
	c.addMember("record", "Name", MemberProperty, str, "")
	c.addMember("record", "FieldCount", MemberProperty, num, "")
	c.addMember("record", "IsChanged", MemberProperty, boolean, "")
	c.addMember("record", "GetField", MemberMethod, BuiltinObject("Field"), "")
	c.addMember("record", "SelectByKey", MemberMethod, boolean, "")
	c.addMember("record", "Save", MemberMethod, boolean, "")
	c.addMember("record", "Insert", MemberMethod, boolean, "")
	c.addMember("record", "Update", MemberMethod, boolean, "")
	c.addMember("record", "Delete", MemberMethod, boolean, "")

	c.addMember("field", "Name", MemberProperty, str, "")
	c.addMember("field", "Value", MemberProperty, anyT, "")
	c.addMember("field", "IsChanged", MemberProperty, boolean, "")
	c.addMember("field", "Label", MemberProperty, str, "")
	c.addMember("field", "SetDefault", MemberMethod, anyT, "")

	c.addMember("rowset", "ActiveRowCount", MemberProperty, num, "")
	c.addMember("rowset", "RowCount", MemberProperty, num, "")
	c.addMember("rowset", "DBRecordName", MemberProperty, str, "")
	c.addMember("rowset", "GetRow", MemberMethod, BuiltinObject("Row"), "")
	c.addMember("rowset", "Fill", MemberMethod, num, "")
	c.addMember("rowset", "Flush", MemberMethod, anyT, "")

	c.addMember("row", "RowNumber", MemberProperty, num, "")
	c.addMember("row", "RecordCount", MemberProperty, num, "")
	c.addMember("row", "GetRecord", MemberMethod, BuiltinObject("Record"), "")

	c.addMember("sql", "Execute", MemberMethod, boolean, "")
	c.addMember("sql", "Fetch", MemberMethod, boolean, "")
	c.addMember("sql", "IsOpen", MemberProperty, boolean, "")
	c.addMember("sql", "Close", MemberMethod, anyT, "")

	c.addMember("file", "ReadLine", MemberMethod, boolean, "")
	c.addMember("file", "WriteLine", MemberMethod, boolean, "")
	c.addMember("file", "IsOpen", MemberProperty, boolean, "")
	c.addMember("file", "Close", MemberMethod, anyT, "")

	c.addMember("exception", "ToString", MemberMethod, str, "")
	c.addMember("exception", "MessageNumber", MemberProperty, num, "")
	c.addMember("exception", "MessageSetNumber", MemberProperty, num, "")

	c.addMember("jsonobject", "AddProperty", MemberMethod, boolean, "8.55")
	c.addMember("jsonobject", "GetProperty", MemberMethod, anyT, "8.55")
	c.addMember("jsonobject", "ToString", MemberMethod, str, "8.55")
	c.addMember("jsonarray", "AddElement", MemberMethod, boolean, "8.55")
	c.addMember("jsonarray", "Length", MemberProperty, num, "8.55")
}
