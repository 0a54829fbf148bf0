// internal/workers/equipment/predict-attributes-bulk/handler.go
package predictattributesbulk

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"eam-assistant/internal/audit"
	"eam-assistant/internal/common/camunda"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/common/metrics"
	"eam-assistant/internal/common/observability"
	"eam-assistant/internal/workers/equipment"
)

const (
	TaskType = "predict-attributes-bulk"
)

var (
	ErrMissingDescription = errors.New("asset_description is required")
	ErrMissingAttributes  = errors.New("attributes must be a non-empty list")
)

type Handler struct {
	config    *Config
	predictor *equipment.Predictor
	audit     audit.Recorder
	obs       *observability.Observability
	logger    logger.Logger
}

func NewHandler(config *Config, predictor *equipment.Predictor, recorder audit.Recorder, obs *observability.Observability, log logger.Logger) *Handler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{
		config:    config,
		predictor: predictor,
		audit:     recorder,
		obs:       obs,
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

// Execute predicts every requested attribute in order. Only malformed input
// fails the call; per-attribute failures become null entries.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	requestID := observability.RequestID(ctx)
	log := h.logger.WithFields(map[string]interface{}{
		"requestId":  requestID,
		"attributes": len(input.Attributes),
	})
	log.Info("bulk prediction started", nil)

	out := &Output{Predictions: make(map[string]*string, len(input.Attributes))}
	for _, attr := range input.Attributes {
		out.Predictions[attr] = h.predictOne(ctx, log, requestID, input, attr)
	}

	log.Info("bulk prediction finished", map[string]interface{}{
		"predicted": countPredicted(out.Predictions),
	})
	return out, nil
}

func (h *Handler) predictOne(ctx context.Context, log logger.Logger, requestID string, input *Input, attr string) *string {
	ctx, span := h.obs.StartSpan(ctx, "predict-attribute", attribute.String("attribute", attr))
	defer span.End()
	start := time.Now()

	pred, err := h.predictor.Predict(ctx, equipment.Request{
		AssetDescription: input.AssetDescription,
		Attribute:        attr,
		AcceptedValues:   input.AcceptedValues,
		ExpectedValues:   input.AttributesExpectedValues[attr],
	})

	rec := audit.PredictionRecord{
		RequestID:        requestID,
		AssetDescription: input.AssetDescription,
		Attribute:        attr,
		Duration:         time.Since(start),
	}
	if pred != nil {
		rec.StoragePath = pred.StoragePath
		rec.HistoricalCount = len(pred.HistoricalValues)
		rec.Prediction = pred.Value
	}

	outcome := "success"
	if err != nil {
		outcome = "failed"
		if apperrors.AsStandardError(err).Code == apperrors.ErrCodeAttributeNotFound {
			outcome = "unresolved"
		}
		rec.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("attribute prediction failed", map[string]interface{}{
			"attribute": attr,
			"outcome":   outcome,
			"error":     err.Error(),
		})
	}

	metrics.PredictionsTotal.WithLabelValues(outcome).Inc()
	h.obs.RecordOperation(ctx, "predict_attribute", outcome, rec.Duration)
	if aErr := h.audit.RecordPrediction(ctx, rec); aErr != nil {
		log.Warn("prediction audit insert failed", map[string]interface{}{"error": aErr.Error()})
	}

	if err != nil || pred == nil {
		return nil
	}
	return pred.Value
}

func validateInput(input *Input) error {
	if strings.TrimSpace(input.AssetDescription) == "" {
		return ErrMissingDescription
	}
	if len(input.Attributes) == 0 {
		return ErrMissingAttributes
	}
	return nil
}

func countPredicted(predictions map[string]*string) int {
	n := 0
	for _, v := range predictions {
		if v != nil {
			n++
		}
	}
	return n
}
