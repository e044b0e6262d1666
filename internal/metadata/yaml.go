package metadata

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/pcodetools/pcode/internal/scope"
	"github.com/pcodetools/pcode/internal/types"
)

// document is the on-disk metadata schema:
//
//	records:
//	  JOB:
//	    fields:
//	      EMPLID: string
//	      EFFDT: date
//	classes:
//	  - PKG:Utils:Logger
//	variables:
//	  "&crt": Record
type document struct {
	Records   map[string]recordDoc `yaml:"records"`
	Classes   []string             `yaml:"classes"`
	Variables map[string]string    `yaml:"variables"`
}

type recordDoc struct {
	Fields map[string]string `yaml:"fields"`
}

// YAMLProvider serves metadata loaded from a YAML document. Lookups are
// case-insensitive, matching the language's name resolution.
type YAMLProvider struct {
	records   map[string][]FieldInfo
	classes   map[string]struct{}
	variables map[string]types.TypeInfo
}

// LoadYAMLFile reads and parses a metadata file.
func LoadYAMLFile(path string) (*YAMLProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML parses a metadata document from raw YAML.
func ParseYAML(data []byte) (*YAMLProvider, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	p := &YAMLProvider{
		records:   make(map[string][]FieldInfo, len(doc.Records)),
		classes:   make(map[string]struct{}, len(doc.Classes)),
		variables: make(map[string]types.TypeInfo, len(doc.Variables)),
	}
	for name, rec := range doc.Records {
		fields := make([]FieldInfo, 0, len(rec.Fields))
		for fieldName, typeName := range rec.Fields {
			fields = append(fields, FieldInfo{
				Name: fieldName,
				Type: types.FromDeclaration(typeName),
			})
		}
		p.records[strings.ToLower(name)] = fields
	}
	for _, class := range doc.Classes {
		p.classes[strings.ToLower(class)] = struct{}{}
	}
	for name, typeName := range doc.Variables {
		p.variables[strings.ToLower(name)] = types.FromDeclaration(typeName)
	}
	return p, nil
}

func (p *YAMLProvider) RecordFields(record string) ([]FieldInfo, bool) {
	fields, ok := p.records[strings.ToLower(record)]
	return fields, ok
}

func (p *YAMLProvider) AppClassExists(path string) bool {
	_, ok := p.classes[strings.ToLower(path)]
	return ok
}

func (p *YAMLProvider) ResolveUndefinedVariable(name string, _ *scope.ScopeInfo) (types.TypeInfo, bool) {
	t, ok := p.variables[strings.ToLower(name)]
	if !ok {
		return types.Unknown(), false
	}
	return t, true
}
