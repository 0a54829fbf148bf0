// internal/workers/training/extract-qualifications/handler.go
package extractqualifications

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"eam-assistant/internal/common/camunda"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/documents"
	"eam-assistant/internal/eam"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/models"
	"eam-assistant/internal/prompt"
)

const (
	TaskType = "extract-qualifications"
)

var (
	ErrNoDocument = errors.New("No document_code or training_manual_file provided")
)

// QualificationWriter is the part of eam.Client this worker writes through.
type QualificationWriter interface {
	CreateQualification(ctx context.Context, q models.Qualification) (interface{}, error)
}

type Handler struct {
	config    *Config
	extractor *documents.Extractor
	fetcher   documents.Fetcher
	llm       llm.Completer
	eam       QualificationWriter
	logger    logger.Logger
}

func NewHandler(config *Config, extractor *documents.Extractor, fetcher documents.Fetcher, completer llm.Completer, writer QualificationWriter, log logger.Logger) *Handler {
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
	if input.DocumentCode == "" && input.Upload == nil {
		return nil, apperrors.NewInvalidInputError(ErrNoDocument.Error())
	}
	if input.CreateQualificationsInEAM && h.eam == nil {
		return nil, apperrors.NewConfigurationMissingError("EAM client is not configured")
	}

	text, err := h.extractor.Load(ctx, h.fetcher, input.DocumentCode, input.Upload)
	if err != nil {
		return nil, err
	}

	var extraction models.QualificationExtraction
	if err := documents.Generate(ctx, h.llm, prompt.Qualification, prompt.DocumentValues(text), models.QualificationExtractionSchema, &extraction); err != nil {
		h.logger.Error("qualification extraction failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if extraction.Qualifications == nil {
		extraction.Qualifications = []models.Qualification{}
	}

	out := &Output{
		ExtractedData: &extraction,
		Summary:       Summary{TotalQualifications: len(extraction.Qualifications)},
	}
	if input.CreateQualificationsInEAM {
		out.CreatedInEAM = h.createQualifications(ctx, extraction.Qualifications)
	}
	return out, nil
}

func (h *Handler) createQualifications(ctx context.Context, quals []models.Qualification) []QualificationResult {
	results := make([]QualificationResult, 0, len(quals))
	for _, q := range quals {
		res := QualificationResult{QualificationCode: q.QualificationCode, Description: q.QualificationDescription}
		resp, err := h.eam.CreateQualification(ctx, q)
		if err != nil {
			res.Error = eam.Describe(err)
			h.logger.Warn("qualification not created", map[string]interface{}{
				"code":  q.QualificationCode,
				"error": res.Error,
			})
		} else {
			res.APIResponse = resp
		}
		results = append(results, res)
	}
	return results
}
