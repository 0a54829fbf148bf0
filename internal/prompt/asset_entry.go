// internal/prompt/asset_entry.go
package prompt

import (
	"fmt"

	"eam-assistant/internal/assets"
)

// AssetEntryInput carries everything the asset_entry_prompt needs for one attribute.
type AssetEntryInput struct {
	AssetDescription string
	Attribute        string
	HistoricalValues []interface{}
	AcceptedValues   map[string]interface{}
	ExpectedValues   []interface{}
}

// Values builds the template variables. Date fields get the date format
// appended to their description.
func (in AssetEntryInput) Values() map[string]any {
	description := assets.Description(in.Attribute)
	if description == "" {
		description = "No description available."
	}
	if assets.IsDateField(in.Attribute) {
		description += fmt.Sprintf("\nThis is a date field. The value MUST use the format '%s', for example '%s'.",
			assets.DateFormat, assets.DateFormatExample)
	}

	historical := in.HistoricalValues
	if historical == nil {
		historical = []interface{}{}
	}
	accepted := in.AcceptedValues
	if accepted == nil {
		accepted = map[string]interface{}{}
	}

	var expected any
	if len(in.ExpectedValues) > 0 {
		expected = in.ExpectedValues
	}

	return map[string]any{
		"asset_description": in.AssetDescription,
		"target_field":      in.Attribute,
		"field_description": description,
		"accepted_values":   accepted,
		"historical_values": historical,
		"expected_values":   expected,
	}
}

// RenderAssetEntry renders the asset_entry_prompt for one attribute.
func RenderAssetEntry(in AssetEntryInput) (*Rendered, error) {
	t, err := Get(AssetEntry)
	if err != nil {
		return nil, err
	}
	return t.Render(in.Values())
}
