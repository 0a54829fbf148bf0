// internal/workers/maintenance/extract-task-plans/handler.go
package extracttaskplans

import (
	"context"
	"errors"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"eam-assistant/internal/common/camunda"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/documents"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/models"
	"eam-assistant/internal/prompt"
	"eam-assistant/internal/workers/maintenance"
)

const (
	TaskType = "extract-task-plans"
)

var (
	ErrMissingDocumentCode = errors.New("No document_code provided")
)

// Handler turns an EAM-hosted service manual into task plans.
type Handler struct {
	config    *Config
	extractor *documents.Extractor
	fetcher   documents.Fetcher
	llm       llm.Completer
	eam       maintenance.TaskPlanWriter
	logger    logger.Logger
}

func NewHandler(config *Config, extractor *documents.Extractor, fetcher documents.Fetcher, completer llm.Completer, writer maintenance.TaskPlanWriter, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		extractor: extractor,
		fetcher:   fetcher,
		llm:       completer,
		eam:       writer,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.RunJob(client, job, camunda.JobSettings{
		TaskType: TaskType,
		Timeout:  h.config.Timeout,
		Logger:   h.logger,
	}, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	code := strings.TrimSpace(input.DocumentCode)
	if code == "" {
		return nil, apperrors.NewInvalidInputError(ErrMissingDocumentCode.Error())
	}
	if input.CreateInEAM && h.eam == nil {
		return nil, apperrors.NewConfigurationMissingError("EAM client is not configured")
	}

	text, err := h.extractor.Load(ctx, h.fetcher, code, nil)
	if err != nil {
		return nil, err
	}

	var list models.TaskPlanList
	if err := documents.Generate(ctx, h.llm, prompt.TaskPlan, prompt.DocumentValues(text), models.TaskPlanListSchema, &list); err != nil {
		h.logger.Error("task plan extraction failed", map[string]interface{}{
			"documentCode": code,
			"error":        err.Error(),
		})
		return nil, err
	}
	if list.TaskPlans == nil {
		list.TaskPlans = []models.TaskPlan{}
	}

	out := &Output{ExtractedData: list.TaskPlans}
	if input.CreateInEAM {
		out.CreatedInEAM = maintenance.CreateTaskPlans(ctx, h.eam, list.TaskPlans, h.logger)
	}
	return out, nil
}
