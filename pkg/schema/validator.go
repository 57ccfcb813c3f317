// Package schema checks request arguments against JSON schemas before they are
// decoded, so clients get every violation at once instead of the first one.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// ValidationError lists the schema violations found in one arguments object.
type ValidationError struct {
	Command    string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s arguments failed validation: %s", e.Command, strings.Join(e.Violations, "; "))
}

// Validator holds one compiled schema per command. It is read-only after
// NewValidator and safe for concurrent use.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the embedded schemas. Files are named after the
// command they describe.
func NewValidator() (*Validator, error) {
	entries, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		data, err := schemaFiles.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		if err := v.Add(strings.TrimSuffix(entry.Name(), ".json"), data); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Add compiles schemaData and uses it for command, replacing any earlier schema.
func (v *Validator) Add(command string, schemaData []byte) error {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	if err != nil {
		return fmt.Errorf("failed to compile schema for %s: %w", command, err)
	}
	v.schemas[command] = s
	return nil
}

// Has reports whether a schema exists for command.
func (v *Validator) Has(command string) bool {
	_, ok := v.schemas[command]
	return ok
}

// Commands lists the commands that have a schema.
func (v *Validator) Commands() []string {
	out := make([]string, 0, len(v.schemas))
	for c := range v.schemas {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Validate checks args against the schema for command. Commands without a
// schema always pass. Violations come back as a *ValidationError.
func (v *Validator) Validate(command string, args any) error {
	s, ok := v.schemas[command]
	if !ok {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal %s arguments: %w", command, err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, re.String())
	}
	return &ValidationError{Command: command, Violations: violations}
}
