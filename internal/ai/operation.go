package ai

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ParamType is the JSON-schema type of an operation parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
)

// Param declares one named argument of an Operation.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// Operation is the single callable function declared to the model.
type Operation struct {
	Name        string
	Description string
	Params      []Param
}

// Required lists the names of required parameters in declaration order.
func (o Operation) Required() []string {
	var out []string
	for _, p := range o.Params {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// JSONSchema returns the object schema describing the operation's arguments.
// Property order follows Params.
func (o Operation) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, p := range o.Params {
		props.Set(p.Name, &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		})
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   o.Required(),
	}
}

// schemaMap renders the operation schema as a generic JSON object, the shape
// the vendor SDKs accept for tool parameters.
func (o Operation) schemaMap() (map[string]any, error) {
	raw, err := json.Marshal(o.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("ai: marshal %s schema: %w", o.Name, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("ai: unmarshal %s schema: %w", o.Name, err)
	}
	return out, nil
}
