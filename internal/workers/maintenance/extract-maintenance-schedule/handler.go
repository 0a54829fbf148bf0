// internal/workers/maintenance/extract-maintenance-schedule/handler.go
package extractmaintenanceschedule

import (
	"context"
	"errors"

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
	TaskType = "extract-maintenance-schedule"
)

var (
	ErrOnlyPDF = errors.New("Only PDF files are supported")
)

type Handler struct {
	config    *Config
	extractor *documents.Extractor
	fetcher   documents.Fetcher
	llm       llm.Completer
	eam       maintenance.ScheduleWriter
	logger    logger.Logger
}

// NewHandler wires the handler. fetcher and writer may be nil when EAM is not
// configured; completer may be nil when no model is.
func NewHandler(config *Config, extractor *documents.Extractor, fetcher documents.Fetcher, completer llm.Completer, writer maintenance.ScheduleWriter, log logger.Logger) *Handler {
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
	if input.DocumentCode == "" && input.Upload != nil && !documents.IsPDF(input.Upload.Name) {
		return nil, apperrors.NewInvalidInputError(ErrOnlyPDF.Error())
	}
	if input.CreateInEAM && h.eam == nil {
		return nil, apperrors.NewConfigurationMissingError("EAM client is not configured")
	}

	text, err := h.extractor.Load(ctx, h.fetcher, input.DocumentCode, input.Upload)
	if err != nil {
		return nil, err
	}

	var schedule models.MaintenanceSchedule
	if err := documents.Generate(ctx, h.llm, prompt.MaintenanceSchedule, prompt.DocumentValues(text), models.MaintenanceScheduleSchema, &schedule); err != nil {
		h.logger.Error("maintenance schedule extraction failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	h.logger.Info("maintenance schedule extracted", map[string]interface{}{
		"code":      schedule.Code,
		"taskPlans": len(schedule.TaskPlans),
	})

	out := &Output{ExtractedData: &schedule}
	if !input.CreateInEAM {
		return out, nil
	}

	sched, tasks := maintenance.CreateSchedule(ctx, h.eam, schedule, h.logger)
	out.Schedule = &sched
	out.CreatedInEAM = tasks
	return out, nil
}
