// internal/workers/equipment/predictor.go
package equipment

import (
	"context"
	"time"

	"eam-assistant/internal/assets"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/prompt"
)

// HistorySearcher is satisfied by assets.Searcher.
type HistorySearcher interface {
	FuzzySearch(ctx context.Context, description, key string) ([]interface{}, error)
}

// Request is one attribute to predict for an asset.
type Request struct {
	AssetDescription string
	Attribute        string
	AcceptedValues   map[string]interface{}
	ExpectedValues   []interface{}
	// SkipEmptyHistory returns without calling the model when the search
	// finds nothing.
	SkipEmptyHistory bool
}

// Prediction is the outcome for one attribute. Value is nil when the model
// was not asked.
type Prediction struct {
	Attribute        string
	StoragePath      string
	HistoricalValues []interface{}
	Value            *string
	Duration         time.Duration
}

// Predictor runs the lookup, prompt and completion steps for one attribute.
type Predictor struct {
	searcher HistorySearcher
	llm      llm.Completer
	logger   logger.Logger
}

// NewPredictor builds a Predictor. A nil completer answers every call with
// the missing-model configuration error.
func NewPredictor(searcher HistorySearcher, completer llm.Completer, log logger.Logger) *Predictor {
	if completer == nil {
		completer = llm.Unavailable{}
	}
	return &Predictor{searcher: searcher, llm: completer, logger: log}
}

// Predict resolves the attribute, fetches its historical values and asks the
// model for the next value at temperature 0.
func (p *Predictor) Predict(ctx context.Context, req Request) (*Prediction, error) {
	start := time.Now()

	path, ok := assets.Resolve(req.Attribute)
	if !ok {
		return nil, apperrors.NewAttributeNotFoundError(req.Attribute)
	}
	out := &Prediction{Attribute: req.Attribute, StoragePath: path}

	history, err := p.searcher.FuzzySearch(ctx, req.AssetDescription, req.Attribute)
	if err != nil {
		return out, err
	}
	if history == nil {
		history = []interface{}{}
	}
	out.HistoricalValues = history

	if len(history) == 0 && req.SkipEmptyHistory {
		out.Duration = time.Since(start)
		return out, nil
	}

	rendered, err := prompt.RenderAssetEntry(prompt.AssetEntryInput{
		AssetDescription: req.AssetDescription,
		Attribute:        req.Attribute,
		HistoricalValues: history,
		AcceptedValues:   req.AcceptedValues,
		ExpectedValues:   req.ExpectedValues,
	})
	if err != nil {
		return out, apperrors.NewInternalError(err)
	}

	value, err := p.llm.Complete(ctx, rendered, llm.WithTemperature(0))
	if err != nil {
		return out, err
	}
	out.Value = &value
	out.Duration = time.Since(start)

	p.logger.Debug("attribute predicted", map[string]interface{}{
		"attribute":       req.Attribute,
		"historicalCount": len(history),
		"duration_ms":     out.Duration.Milliseconds(),
	})
	return out, nil
}
