// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"event-insights-workers/pkg/registry"
)

// workerData is what the scaffold templates render.
type workerData struct {
	ID             string
	DisplayName    string
	Description    string
	Category       string
	TaskType       string
	PackageName    string
	Status         string
	Timeout        string
	TimeoutLiteral string
	TimeoutMillis  int64
	Retries        int
	ErrorCodes     []string
	Input          []field
	Output         []field
	Required       []string
}

var scaffold = []struct {
	name string
	tmpl string
}{
	{"models.go", modelsTemplate},
	{"config.go", configTemplate},
	{"handler.go", handlerTemplate},
	{"handler_test.go", testTemplate},
	{"README.md", readmeTemplate},
}

var funcs = template.FuncMap{
	"structTag": structTag,
}

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., analytics.attendance.predict)")
	outputDir := flag.String("output", "./internal/workers/", "Root directory for generated workers")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite files that already exist")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator -activity <id> [-output <dir>] [-registry <path>] [-force]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/worker-generator -activity analytics.attendance.predict")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	act, ok := reg.Find(*activity)
	if !ok {
		fmt.Fprintf(os.Stderr, "Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	data, err := newWorkerData(*act)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dir := filepath.Join(*outputDir, data.Category, data.TaskType)
	written, err := generate(dir, data, *force)
	for _, path := range written {
		fmt.Printf("Generated %s\n", path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", dir)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Implement execute in handler.go")
	fmt.Println("  2. Register the handler in cmd/worker-manager/main.go")
	fmt.Println("  3. Add the worker to configs/config.yaml")
	fmt.Printf("  4. go run ./cmd/tools/registry-updater update -id %s -field status -value in-progress\n", data.ID)
}

func newWorkerData(a registry.Activity) (workerData, error) {
	if a.TaskType == "" {
		return workerData{}, fmt.Errorf("activity %s has no task type", a.ID)
	}

	timeout := 30 * time.Second
	if a.Timeout != "" {
		d, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return workerData{}, fmt.Errorf("activity %s: invalid timeout %q: %w", a.ID, a.Timeout, err)
		}
		timeout = d
	}

	input := schemaFields(a.InputSchema)
	var required []string
	for _, f := range input {
		if f.Required {
			required = append(required, f.JSONName)
		}
	}

	category := a.Category
	if category == "" {
		category = "misc"
	}

	return workerData{
		ID:             a.ID,
		DisplayName:    a.DisplayName,
		Description:    a.Description,
		Category:       category,
		TaskType:       a.TaskType,
		PackageName:    packageName(a.TaskType),
		Status:         a.ImplementationStatus,
		Timeout:        timeout.String(),
		TimeoutLiteral: durationLiteral(timeout),
		TimeoutMillis:  timeout.Milliseconds(),
		Retries:        a.Retries,
		ErrorCodes:     a.ErrorCodes,
		Input:          input,
		Output:         schemaFields(a.OutputSchema),
		Required:       required,
	}, nil
}

func durationLiteral(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

// generate renders every scaffold file into dir and returns the paths written.
// Existing files are left alone unless force is set.
func generate(dir string, data workerData, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var written []string
	var errs []error
	for _, f := range scaffold {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil && !force {
			errs = append(errs, fmt.Errorf("%s already exists", path))
			continue
		}

		tmpl, err := template.New(f.name).Funcs(funcs).Parse(f.tmpl)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", f.name, err))
			continue
		}
		if err := renderFile(path, tmpl, data); err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

// renderFile executes tmpl and writes the result, gofmt'd when it is Go source.
func renderFile(path string, tmpl *template.Template, data workerData) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	out := buf.Bytes()
	if strings.HasSuffix(path, ".go") {
		formatted, err := format.Source(out)
		if err != nil {
			return fmt.Errorf("format %s: %w", path, err)
		}
		out = formatted
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
