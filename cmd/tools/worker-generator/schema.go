package main

import (
	"fmt"
	"sort"
	"strings"
)

// field is one struct field derived from a JSON schema property.
type field struct {
	Name        string
	JSONName    string
	GoType      string
	SchemaType  string
	Description string
	Required    bool
}

// schemaFields returns the properties of an object schema ordered by name.
func schemaFields(schema map[string]interface{}) []field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if list, ok := schema["required"].([]interface{}); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	fields := make([]field, 0, len(props))
	for name, raw := range props {
		details, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := details["type"].(string)
		desc, _ := details["description"].(string)
		fields = append(fields, field{
			Name:        goFieldName(name),
			JSONName:    name,
			GoType:      goType(typ, details["items"]),
			SchemaType:  typ,
			Description: desc,
			Required:    required[name],
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].JSONName < fields[j].JSONName })
	return fields
}

func goType(jsonType string, items interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		if m, ok := items.(map[string]interface{}); ok {
			if t, ok := m["type"].(string); ok {
				return "[]" + goType(t, m["items"])
			}
		}
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// goFieldName turns eventId into EventID and user_name into UserName.
func goFieldName(jsonName string) string {
	parts := strings.FieldsFunc(jsonName, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	name := b.String()
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}

// packageName derives the Go package name from a task type.
func packageName(taskType string) string {
	return strings.NewReplacer("-", "", "_", "", ".", "").Replace(strings.ToLower(taskType))
}

func structTag(f field) string {
	if f.Required {
		return fmt.Sprintf("`json:%q`", f.JSONName)
	}
	return fmt.Sprintf("`json:%q`", f.JSONName+",omitempty")
}
