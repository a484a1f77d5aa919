package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"move-improve-workers/internal/common/errors"
	"move-improve-workers/pkg/registry"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GetErrorMessages returns "field: message" for every error.
func (r *ValidationResult) GetErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return msgs
}

// ValidateInput checks input against a JSON schema given as a Go map.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return validate(compiled, input)
}

func validate(schema *gojsonschema.Schema, input map[string]interface{}) (*ValidationResult, error) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// SchemaValidator holds the compiled input schemas of a registry, keyed by
// task type.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaValidator(reg *registry.ActivityRegistry) (*SchemaValidator, error) {
	v := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema, len(reg.Activities))}
	for _, act := range reg.Activities {
		if len(act.InputSchema) == 0 {
			continue
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(act.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", act.TaskType, err)
		}
		v.schemas[act.TaskType] = compiled
	}
	return v, nil
}

// Validate checks job variables for taskType. Task types without a schema
// pass unchecked.
func (v *SchemaValidator) Validate(taskType string, vars map[string]interface{}) error {
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}
	res, err := validate(schema, vars)
	if err != nil {
		return errors.NewInputValidationFailedError(err.Error())
	}
	if !res.Valid {
		return errors.NewInputValidationFailedError(strings.Join(res.GetErrorMessages(), "; ")).
			WithMetadata("taskType", taskType)
	}
	return nil
}
