// internal/workers/safety/analyze-incident-report/handler.go
package analyzeincidentreport

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"eam-assistant/internal/audit"
	"eam-assistant/internal/common/camunda"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/documents"
	"eam-assistant/internal/eam"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/models"
	"eam-assistant/internal/notify"
	"eam-assistant/internal/prompt"
)

const (
	TaskType = "analyze-incident-report"
)

var (
	ErrNoDocument = errors.New("No document_code or incident_report_file provided")
)

// SafetyWriter is the part of eam.Client the incident flow writes through.
type SafetyWriter interface {
	CreateHazard(ctx context.Context, h models.Hazard) *eam.CreateResult
	CreatePrecaution(ctx context.Context, p models.Precaution) *eam.CreateResult
	CreateSafetyLink(ctx context.Context, link eam.SafetyLink) (interface{}, error)
}

// OptionSource supplies the equipment categories and classes offered to the model.
type OptionSource interface {
	Options(ctx context.Context) (categories, classes []string)
}

type Handler struct {
	config    *Config
	extractor *documents.Extractor
	fetcher   documents.Fetcher
	llm       llm.Completer
	eam       SafetyWriter
	options   OptionSource
	notifier  *notify.Notifier
	audit     audit.Recorder
	logger    logger.Logger
}

type Deps struct {
	Extractor *documents.Extractor
	Fetcher   documents.Fetcher
	LLM       llm.Completer
	EAM       SafetyWriter
	Options   OptionSource
	Notifier  *notify.Notifier
	Audit     audit.Recorder
}

func NewHandler(config *Config, deps Deps, log logger.Logger) *Handler {
	if deps.Audit == nil {
		deps.Audit = audit.Nop{}
	}
	return &Handler{
		config:    config,
		extractor: deps.Extractor,
		fetcher:   deps.Fetcher,
		llm:       deps.LLM,
		eam:       deps.EAM,
		options:   deps.Options,
		notifier:  deps.Notifier,
		audit:     deps.Audit,
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
	if input.DocumentCode == "" && input.Upload == nil {
		return nil, apperrors.NewInvalidInputError(ErrNoDocument.Error())
	}
	if input.CreateInEAM && h.eam == nil {
		return nil, apperrors.NewConfigurationMissingError("EAM client is not configured")
	}

	text, err := h.extractor.Load(ctx, h.fetcher, input.DocumentCode, input.Upload)
	if err != nil {
		return nil, err
	}

	var categories, classes []string
	if h.options != nil {
		categories, classes = h.options.Options(ctx)
	}

	var analysis models.IncidentAnalysis
	values := prompt.IncidentValues(text, categories, classes)
	if err := documents.Generate(ctx, h.llm, prompt.IncidentAnalysis, values, models.IncidentAnalysisSchema, &analysis); err != nil {
		h.logger.Error("incident analysis failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if analysis.IdentifiedHazards == nil {
		analysis.IdentifiedHazards = []models.Hazard{}
	}
	if analysis.EquipmentSafetyLinks == nil {
		analysis.EquipmentSafetyLinks = []models.EquipmentSafetyLink{}
	}
	h.logger.Info("incident report analyzed", map[string]interface{}{
		"hazards": len(analysis.IdentifiedHazards),
		"links":   len(analysis.EquipmentSafetyLinks),
	})

	out := &Output{IncidentAnalysis: &analysis}
	if input.CreateInEAM {
		out.EAMProcessingSummary = h.process(ctx, &analysis)
	}
	return out, nil
}
