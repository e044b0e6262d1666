// Package metadata supplies the external lookups type inference consults:
// record field definitions, application class existence, and resolution of
// otherwise-undefined variables. Inference degrades to Unknown when a
// provider has no answer, so every implementation is free to be partial.
package metadata

import (
	"github.com/pcodetools/pcode/internal/scope"
	"github.com/pcodetools/pcode/internal/types"
)

// FieldInfo describes one field of a record definition.
type FieldInfo struct {
	Name string
	Type types.TypeInfo
}

// Provider is the collaborator interface consumed by type inference. All
// methods are synchronous; implementations that fetch remotely must load
// and cache before the parse pipeline runs.
type Provider interface {
	// RecordFields returns the fields of a record definition, or ok=false
	// when the record is unknown to the provider.
	RecordFields(record string) ([]FieldInfo, bool)

	// AppClassExists reports whether a fully qualified application class
	// path (PKG:SUB:Class) resolves to a real class.
	AppClassExists(path string) bool

	// ResolveUndefinedVariable gives the provider a chance to type a
	// variable no scope declares, such as an implicit transform
	// parameter. ok=false leaves the reference undefined.
	ResolveUndefinedVariable(name string, sc *scope.ScopeInfo) (types.TypeInfo, bool)
}

// NullProvider answers every lookup with "no information". It is the
// degraded mode used when no metadata source is configured.
type NullProvider struct{}

func (NullProvider) RecordFields(string) ([]FieldInfo, bool) { return nil, false }

func (NullProvider) AppClassExists(string) bool { return false }

func (NullProvider) ResolveUndefinedVariable(string, *scope.ScopeInfo) (types.TypeInfo, bool) {
	return types.Unknown(), false
}
