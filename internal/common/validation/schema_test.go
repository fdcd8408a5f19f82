package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"eventId"},
		Properties: map[string]Property{
			"eventId": {
				Type:    "string",
				Pattern: StringPtr(UUIDPattern),
			},
			"refresh": {
				Type: "boolean",
			},
			"interests": {
				Type:     "array",
				MaxItems: IntPtr(3),
				Items:    &Property{Type: "string", MinLength: IntPtr(1)},
			},
		},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantField string
		wantCode  string
	}{
		{
			name:      "valid with extra process variables",
			input:     map[string]interface{}{"eventId": "6f1c2a9e-0b7d-4c1e-9a35-2d8e7f4b1c60", "processStarter": "web"},
			wantValid: true,
		},
		{
			name:      "missing eventId",
			input:     map[string]interface{}{"refresh": true},
			wantField: "eventId",
			wantCode:  "REQUIRED_FIELD_MISSING",
		},
		{
			name:      "malformed eventId",
			input:     map[string]interface{}{"eventId": "42"},
			wantField: "eventId",
			wantCode:  "PATTERN_MISMATCH",
		},
		{
			name:      "wrong type",
			input:     map[string]interface{}{"eventId": "6f1c2a9e-0b7d-4c1e-9a35-2d8e7f4b1c60", "refresh": "yes"},
			wantField: "refresh",
			wantCode:  "INVALID_TYPE",
		},
		{
			name: "too many interests",
			input: map[string]interface{}{
				"eventId":   "6f1c2a9e-0b7d-4c1e-9a35-2d8e7f4b1c60",
				"interests": []interface{}{"a", "b", "c", "d"},
			},
			wantField: "interests",
			wantCode:  "MAX_ITEMS_VIOLATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())

			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.wantValid {
				assert.Empty(t, result.Errors)
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.True(t, result.HasErrors(tt.wantField), "errors: %v", result.GetErrorMessages())
			assert.Equal(t, tt.wantCode, result.GetErrorsForField(tt.wantField)[0].Code)
		})
	}
}

func TestValidateInput_ClosedSchema(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = BoolPtr(false)

	result := ValidateInput(map[string]interface{}{
		"eventId": "6f1c2a9e-0b7d-4c1e-9a35-2d8e7f4b1c60",
		"extra":   1,
	}, schema)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "EXTRA_FIELD", result.Errors[0].Code)
}

func TestValidateJSON(t *testing.T) {
	result, err := ValidateJSON(`{"eventId":"6f1c2a9e-0b7d-4c1e-9a35-2d8e7f4b1c60","refresh":false}`, testSchema())
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = ValidateJSON(`{not json`, testSchema())
	assert.Error(t, err)
}

func TestSchemaToMap(t *testing.T) {
	m := testSchema().ToMap()

	assert.Equal(t, "object", m["type"])
	assert.Equal(t, []interface{}{"eventId"}, m["required"])
	_, hasAdditional := m["additionalProperties"]
	assert.False(t, hasAdditional)
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("analytics.attendance.predict"))
	assert.Error(t, ValidateActivityNaming("predict-attendance"))
}
