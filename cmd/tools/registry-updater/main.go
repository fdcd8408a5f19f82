// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"event-insights-workers/internal/workers/analytics"
	"event-insights-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "sync":
		err = runSync(os.Args[2:])
	default:
		help()
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., analytics.attendance.predict)")
	displayName := cmd.String("displayName", "", "Display Name (e.g., Predict Attendance)")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "analytics", "Category")
	taskType := cmd.String("taskType", "", "Camunda Task Type (e.g., predict-attendance)")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")
	_ = cmd.Parse(args)

	if *id == "" || *displayName == "" || *taskType == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName and taskType are required for add")
	}

	reg, err := registry.LoadOrCreate(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if _, exists := reg.Find(*id); exists {
		return fmt.Errorf("activity with ID %s already exists", *id)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "30s",
		Workflows:            []string{},
		Tags:                 []string{},
	})
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	if err := reg.Validate(); err != nil {
		return err
	}
	if err := registry.SaveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, etc.)")
	value := cmd.String("value", "", "New value for the field")
	_ = cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activity, ok := reg.Find(*id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", *id)
	}
	if err := setField(activity, *field, *value); err != nil {
		return err
	}

	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if err := registry.SaveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func setField(a *registry.Activity, field, value string) error {
	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	_ = cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

// runSync rewrites the registry entries of the analytics workers from the
// schemas compiled into this binary.
func runSync(args []string) error {
	cmd := flag.NewFlagSet("sync", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	dryRun := cmd.Bool("dry-run", false, "Report changes without writing the file")
	_ = cmd.Parse(args)

	reg, err := registry.LoadOrCreate(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	added, updated := reg.Sync(analytics.Definitions(), time.Now())
	for _, id := range added {
		fmt.Printf("added   %s\n", id)
	}
	for _, id := range updated {
		fmt.Printf("updated %s\n", id)
	}
	if len(added) == 0 && len(updated) == 0 {
		fmt.Println("Registry already in sync.")
		return nil
	}

	if err := reg.Validate(); err != nil {
		return fmt.Errorf("synced registry is invalid: %w", err)
	}
	if *dryRun {
		return nil
	}
	return registry.SaveRegistry(reg, *path)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  sync     Refresh the analytics activities from the worker schemas
  help     Show this help message

Examples:
  registry-updater add -id analytics.attendance.predict -displayName "Predict Attendance" -taskType predict-attendance
  registry-updater update -id analytics.attendance.predict -field status -value verified
  registry-updater validate -path configs/activity-registry.json
  registry-updater sync -dry-run

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
