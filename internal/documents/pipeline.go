package documents

import (
	"context"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/validation"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/models"
	"eam-assistant/internal/prompt"
)

// Generate renders the named prompt over values, asks the model for JSON and
// decodes the schema-checked answer into dest. A nil completer means no model
// is configured.
func Generate(ctx context.Context, completer llm.Completer, promptName string, values map[string]any, schema *validation.Schema, dest interface{}) error {
	if completer == nil {
		return llm.Validate("")
	}
	tmpl, err := prompt.Get(promptName)
	if err != nil {
		return apperrors.NewConfigurationMissingError(err.Error())
	}
	rendered, err := tmpl.Render(values)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	raw, err := completer.Complete(ctx, rendered)
	if err != nil {
		return err
	}

	cleaned := llm.StripJSONFences(raw)
	if cleaned == "" {
		return apperrors.NewLLMOutputInvalidError("empty response")
	}
	return models.DecodeValidated([]byte(cleaned), schema, dest)
}
