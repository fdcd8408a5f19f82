package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/metrics"
	"event-insights-workers/internal/common/validation"
)

// DecodeVariables validates the job variables against schema and decodes
// them into dest. Any problem is an INVALID_INPUT error.
func DecodeVariables(job entities.Job, schema validation.JSONSchema, dest interface{}) error {
	variables := job.Variables
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	result, err := validation.ValidateJSON(variables, schema)
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		stdErr := apperrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
		fields := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			fields = append(fields, e.Field)
		}
		return stdErr.WithMetadata("invalidFields", fields)
	}

	if err := json.Unmarshal([]byte(variables), dest); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}

	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}

	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
	return nil
}
