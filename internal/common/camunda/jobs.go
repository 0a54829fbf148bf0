package camunda

import (
	"context"
	"encoding/json"
	"time"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// JobSettings is what RunJob needs from a worker's Handler.
type JobSettings struct {
	TaskType string
	Timeout  time.Duration
	Logger   logger.Logger
}

// RunJob decodes the job variables into I, runs execute under the job timeout
// and completes the job with its output. Errors go through the BPMN error
// handler, which fails retryable errors and throws the rest.
func RunJob[I any, O any](client worker.JobClient, job entities.Job, s JobSettings, execute func(context.Context, *I) (*O, error)) {
	log := s.Logger.WithFields(map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})
	log.Info("processing job", nil)

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	errHandler := apperrors.NewErrorHandler(log)

	input, err := DecodeVariables[I](job.Variables)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(s.TaskType, string(apperrors.ErrCodeInvalidInput)).Inc()
		errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(s.TaskType, string(apperrors.AsStandardError(err).Code)).Inc()
		errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(s.TaskType).Inc()
	log.Info("job completed", nil)
}

// DecodeVariables parses the job variables JSON into a new I.
func DecodeVariables[I any](variables string) (*I, error) {
	var input I
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError("parse job variables: " + err.Error())
	}
	return &input, nil
}
