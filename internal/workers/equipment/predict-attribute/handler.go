// internal/workers/equipment/predict-attribute/handler.go
package predictattribute

import (
	"context"
	"errors"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"eam-assistant/internal/audit"
	"eam-assistant/internal/common/camunda"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/common/metrics"
	"eam-assistant/internal/common/observability"
	"eam-assistant/internal/workers/equipment"
)

const (
	TaskType = "predict-attribute"
)

var (
	ErrMissingAttribute = errors.New("Please provide the attribute to generate")
)

type Handler struct {
	config    *Config
	predictor *equipment.Predictor
	audit     audit.Recorder
	logger    logger.Logger
}

func NewHandler(config *Config, predictor *equipment.Predictor, recorder audit.Recorder, log logger.Logger) *Handler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{
		config:    config,
		predictor: predictor,
		audit:     recorder,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.RunJob(client, job, camunda.JobSettings{
		TaskType: TaskType,
		Timeout:  h.config.Timeout,
		Logger:   h.logger,
	}, h.Execute)
}

// Execute predicts one attribute. Unknown and missing attributes are input
// errors; an empty history answers without calling the model.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	attribute := strings.TrimSpace(input.Attribute)
	if attribute == "" {
		return nil, apperrors.NewInvalidInputError(ErrMissingAttribute.Error())
	}

	pred, err := h.predictor.Predict(ctx, equipment.Request{
		AssetDescription: input.AssetDescription,
		Attribute:        attribute,
		AcceptedValues:   input.AcceptedValues,
		ExpectedValues:   input.ExpectedValues,
		SkipEmptyHistory: true,
	})
	h.record(ctx, input, attribute, pred, err)

	if err != nil {
		stdErr := apperrors.AsStandardError(err)
		if stdErr.Code == apperrors.ErrCodeAttributeNotFound {
			metrics.PredictionsTotal.WithLabelValues("unresolved").Inc()
		} else {
			metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		}
		h.logger.Error("attribute prediction failed", map[string]interface{}{
			"attribute": attribute,
			"error":     err.Error(),
		})
		return nil, err
	}

	if pred.Value == nil {
		metrics.PredictionsTotal.WithLabelValues("empty_history").Inc()
	} else {
		metrics.PredictionsTotal.WithLabelValues("success").Inc()
	}

	return &Output{
		HistoricalValues: pred.HistoricalValues,
		LLMResponse:      pred.Value,
	}, nil
}

func (h *Handler) record(ctx context.Context, input *Input, attribute string, pred *equipment.Prediction, err error) {
	rec := audit.PredictionRecord{
		RequestID:        observability.RequestID(ctx),
		AssetDescription: input.AssetDescription,
		Attribute:        attribute,
	}
	if pred != nil {
		rec.StoragePath = pred.StoragePath
		rec.HistoricalCount = len(pred.HistoricalValues)
		rec.Prediction = pred.Value
		rec.Duration = pred.Duration
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if aErr := h.audit.RecordPrediction(ctx, rec); aErr != nil {
		h.logger.Warn("prediction audit insert failed", map[string]interface{}{"error": aErr.Error()})
	}
}
