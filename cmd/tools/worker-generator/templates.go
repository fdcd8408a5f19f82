package main

const modelsTemplate = `package {{ .PackageName }}

import (
	"event-insights-workers/internal/common/validation"
)

type Input struct {
{{- range .Input }}
	{{ .Name }} {{ .GoType }} {{ structTag . }}
{{- end }}
}

type Output struct {
{{- range .Output }}
	{{ .Name }} {{ .GoType }} {{ structTag . }}
{{- end }}
}

var InputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{ {{- range $i, $f := .Required }}{{ if $i }}, {{ end }}{{ printf "%q" $f }}{{ end -}} },
	Properties: map[string]validation.Property{
{{- range .Input }}
		{{ printf "%q" .JSONName }}: {Type: {{ printf "%q" .SchemaType }}{{ if .Description }}, Description: {{ printf "%q" .Description }}{{ end }}},
{{- end }}
	},
}
`

const configTemplate = `package {{ .PackageName }}

import (
	"time"

	"event-insights-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{Timeout: {{ .TimeoutLiteral }}}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"event-insights-workers/internal/common/camunda"
	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/logger"
)

const (
	TaskType = {{ printf "%q" .TaskType }}
)

// Handler runs the {{ .DisplayName }} job.
type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, InputSchema, &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Output{}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-insights-workers/internal/common/config"
	"event-insights-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second}, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.NotNil(t, output)
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(config.WorkerConfig{})
	assert.Equal(t, {{ .TimeoutLiteral }}, cfg.Timeout)
}
`

const readmeTemplate = `# {{ .DisplayName }}

{{ .Description }}

| | |
|---|---|
| Activity | ` + "`{{ .ID }}`" + ` |
| Task type | ` + "`{{ .TaskType }}`" + ` |
| Category | {{ .Category }} |
| Status | {{ .Status }} |
| Timeout | {{ .Timeout }} |
| Retries | {{ .Retries }} |

## Input
{{ range .Input }}
- **{{ .JSONName }}** ({{ .SchemaType }}{{ if .Required }}, required{{ end }}){{ if .Description }}: {{ .Description }}{{ end }}
{{- else }}
No input variables.
{{- end }}

## Output
{{ range .Output }}
- **{{ .JSONName }}** ({{ .SchemaType }})
{{- else }}
No output variables.
{{- end }}

## Error Codes
{{ range .ErrorCodes }}
- {{ . }}
{{- else }}
None.
{{- end }}

## Configuration

` + "```yaml" + `
workers:
  {{ .TaskType }}:
    enabled: true
    max_jobs_active: 5
    timeout: {{ .TimeoutMillis }}
` + "```" + `
`
