// internal/workers/equipment/predict-attribute/models.go
package predictattribute

import "encoding/json"

type Input struct {
	AssetDescription string                 `json:"asset_description"`
	Attribute        string                 `json:"attribute"`
	AcceptedValues   map[string]interface{} `json:"accepted_values"`
	ExpectedValues   []interface{}          `json:"expected_values"`
}

// Output has two shapes: {"historical_values": [], "response": null} when
// nothing was found, and {"historical_values": [...], "llm_response": "..."}
// otherwise.
type Output struct {
	HistoricalValues []interface{}
	LLMResponse      *string
}

func (o Output) MarshalJSON() ([]byte, error) {
	history := o.HistoricalValues
	if history == nil {
		history = []interface{}{}
	}
	if o.LLMResponse == nil {
		return json.Marshal(map[string]interface{}{
			"historical_values": history,
			"response":          nil,
		})
	}
	return json.Marshal(map[string]interface{}{
		"historical_values": history,
		"llm_response":      *o.LLMResponse,
	})
}
