package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// UUIDPattern matches canonical hyphenated UUIDs in any case.
const UUIDPattern = `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`

type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
	// nil allows extra keys; job variables carry the whole process scope
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	MaxItems    *int                `json:"maxItems,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateInput checks input against schema with gojsonschema. A schema that
// cannot be compiled is reported as a single SCHEMA_ERROR entry.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	if input == nil {
		input = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "SCHEMA_ERROR",
			}},
		}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, toValidationError(desc))
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}
}

// ValidateJSON is ValidateInput for raw job variables.
func ValidateJSON(variables string, schema JSONSchema) (*ValidationResult, error) {
	var input map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, fmt.Errorf("parse variables: %w", err)
	}
	return ValidateInput(input, schema), nil
}

func toValidationError(desc gojsonschema.ResultError) ValidationError {
	field := desc.Field()
	// gojsonschema reports a missing key against its parent
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			switch {
			case field == "(root)" || field == "":
				field = prop
			case field != prop && !strings.HasSuffix(field, "."+prop):
				field = field + "." + prop
			}
		}
	}

	return ValidationError{
		Field:   field,
		Message: desc.Description(),
		Code:    errorCode(desc.Type()),
	}
}

var errorCodes = map[string]string{
	"required":                        "REQUIRED_FIELD_MISSING",
	"invalid_type":                    "INVALID_TYPE",
	"string_gte":                      "MIN_LENGTH_VIOLATION",
	"string_lte":                      "MAX_LENGTH_VIOLATION",
	"pattern":                         "PATTERN_MISMATCH",
	"enum":                            "INVALID_ENUM_VALUE",
	"number_gte":                      "MINIMUM_VIOLATION",
	"number_lte":                      "MAXIMUM_VIOLATION",
	"array_max_items":                 "MAX_ITEMS_VIOLATION",
	"additional_property_not_allowed": "EXTRA_FIELD",
}

func errorCode(resultType string) string {
	if code, ok := errorCodes[resultType]; ok {
		return code
	}
	return strings.ToUpper(resultType)
}

func ValidateActivityNaming(activityId string) error {
	namingPattern := regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)
	if !namingPattern.MatchString(activityId) {
		return fmt.Errorf("activity ID must follow format: domain.subdomain.action (e.g., analytics.attendance.predict)")
	}
	return nil
}

// ToMap renders the schema the way the activity registry stores it.
func (s JSONSchema) ToMap() map[string]interface{} {
	raw, _ := json.Marshal(s)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return out
}

func GetSchemaFromJSON(schemaJSON string) (JSONSchema, error) {
	var schema JSONSchema
	err := json.Unmarshal([]byte(schemaJSON), &schema)
	return schema, err
}

// GetSchemaFromMap reverses ToMap.
func GetSchemaFromMap(m map[string]interface{}) (JSONSchema, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return JSONSchema{}, err
	}
	return GetSchemaFromJSON(string(raw))
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }

func BoolPtr(v bool) *bool { return &v }
