package validation

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	apperrors "alternator-reqgen/internal/common/errors"
)

// serviceDocumentSchema describes the subset of a service description the
// generator reads. Unknown keys are allowed everywhere.
const serviceDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "required": ["operations", "shapes"],
  "definitions": {
    "shapeRef": {
      "type": "object",
      "required": ["shape"],
      "properties": {"shape": {"type": "string", "minLength": 1}}
    },
    "shape": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"type": "string", "minLength": 1},
        "members": {
          "type": "object",
          "additionalProperties": {"$ref": "#/definitions/shapeRef"}
        },
        "required": {"type": "array", "items": {"type": "string"}},
        "key": {"$ref": "#/definitions/shapeRef"},
        "value": {"$ref": "#/definitions/shapeRef"},
        "member": {"$ref": "#/definitions/shapeRef"},
        "enum": {"type": "array", "items": {"type": "string"}},
        "pattern": {"type": "string"},
        "min": {"type": "number", "minimum": 0}
      }
    }
  },
  "properties": {
    "operations": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {"input": {"$ref": "#/definitions/shapeRef"}}
      }
    },
    "shapes": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/shape"}
    }
  }
}`

var documentSchema = gojsonschema.NewStringLoader(serviceDocumentSchema)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateServiceDocument checks raw document bytes against the embedded schema.
func ValidateServiceDocument(data []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(documentSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.Slice(out.Errors, func(i, j int) bool {
		if out.Errors[i].Field != out.Errors[j].Field {
			return out.Errors[i].Field < out.Errors[j].Field
		}
		return out.Errors[i].Message < out.Errors[j].Message
	})
	return out, nil
}

// RequireValidServiceDocument returns a SCHEMA_INVALID error when data does not validate.
func RequireValidServiceDocument(data []byte) error {
	res, err := ValidateServiceDocument(data)
	if err != nil {
		return apperrors.NewSchemaInvalidError([]string{err.Error()})
	}
	if !res.Valid {
		return apperrors.NewSchemaInvalidError(res.GetErrorMessages())
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
