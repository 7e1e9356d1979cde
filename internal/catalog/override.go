package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// overrideSchema constrains the optional catalog override file. Patterns and
// validators are code, not configuration; only synonyms, weights and the
// required flag may be tuned per deployment.
const overrideSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"fields": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["name"],
				"properties": {
					"name":     {"type": "string", "minLength": 1},
					"synonyms": {"type": "array", "items": {"type": "string", "minLength": 1}},
					"required": {"type": "boolean"},
					"weight":   {"type": "number", "minimum": 0, "maximum": 1}
				}
			}
		}
	},
	"required": ["fields"]
}`

type fieldOverride struct {
	Name     string   `json:"name"`
	Synonyms []string `json:"synonyms,omitempty"`
	Required *bool    `json:"required,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
}

type overrideFile struct {
	Fields []fieldOverride `json:"fields"`
}

// Load returns the default catalog, optionally adjusted by the JSON override
// at path. An empty path returns Default() untouched. The file is validated
// against the override schema before any of it is applied.
func Load(path string) ([]FieldConfig, error) {
	fields := Default()
	if path == "" {
		return fields, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog override: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", strings.NewReader(overrideSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog override: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("catalog override does not match schema: %w", err)
	}

	var of overrideFile
	if err := json.Unmarshal(raw, &of); err != nil {
		return nil, fmt.Errorf("decode catalog override: %w", err)
	}

	for _, o := range of.Fields {
		fc, ok := ByName(fields, o.Name)
		if !ok {
			return nil, fmt.Errorf("catalog override: unknown field %q", o.Name)
		}
		if len(o.Synonyms) > 0 {
			fc.Synonyms = o.Synonyms
		}
		if o.Required != nil {
			fc.Required = *o.Required
		}
		if o.Weight != nil {
			fc.Weight = *o.Weight
		}
	}
	return fields, nil
}
