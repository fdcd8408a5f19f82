// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"event-insights-workers/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrCreate returns an empty registry when path does not exist yet.
func LoadOrCreate(path string) (*ActivityRegistry, error) {
	reg, err := LoadRegistry(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ActivityRegistry{
			Version:     "1.0.0",
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
			Activities:  []Activity{},
		}, nil
	}
	return reg, err
}

func SaveRegistry(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks required fields, id naming, uniqueness of ids and task
// types, and that every input schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]string)
	var errs []error
	for _, a := range r.Activities {
		if a.ID == "" {
			errs = append(errs, errors.New("activity missing required field: ID"))
			continue
		}
		if ids[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			errs = append(errs, fmt.Errorf("activity %s: %w", a.ID, err))
		}
		if a.DisplayName == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: DisplayName", a.ID))
		}
		if a.Category == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: Category", a.ID))
		}
		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: TaskType", a.ID))
		} else if other, dup := taskTypes[a.TaskType]; dup {
			errs = append(errs, fmt.Errorf("activities %s and %s share task type %s", other, a.ID, a.TaskType))
		} else {
			taskTypes[a.TaskType] = a.ID
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout))
			}
		}
		if len(a.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema)); err != nil {
				errs = append(errs, fmt.Errorf("activity %s: input schema: %w", a.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Sync makes the registry describe defs: unknown task types are appended and
// known ones get their schemas, error codes, timeout and retries refreshed.
// Version, status and workflows of existing entries are left alone. It
// returns the ids added and updated.
func (r *ActivityRegistry) Sync(defs []Activity, now time.Time) (added, updated []string) {
	for _, def := range defs {
		existing, ok := r.FindByTaskType(def.TaskType)
		if !ok {
			if def.ImplementationStatus == "" {
				def.ImplementationStatus = StatusCompleted
			}
			r.Activities = append(r.Activities, def)
			added = append(added, def.ID)
			continue
		}

		before := *existing
		existing.DisplayName = def.DisplayName
		existing.Description = def.Description
		existing.Category = def.Category
		existing.InputSchema = def.InputSchema
		existing.OutputSchema = def.OutputSchema
		existing.ErrorCodes = def.ErrorCodes
		existing.Timeout = def.Timeout
		existing.Retries = def.Retries
		if !reflect.DeepEqual(before, *existing) {
			updated = append(updated, existing.ID)
		}
	}

	if len(added) > 0 || len(updated) > 0 {
		r.LastUpdated = now.UTC().Format(time.RFC3339)
	}
	return added, updated
}

// SchemaMap converts a worker input schema into its registry form.
func SchemaMap(schema validation.JSONSchema) map[string]interface{} {
	return schema.ToMap()
}
