package predictattributesbulk

type Input struct {
	AssetDescription         string                   `json:"asset_description"`
	Attributes               []string                 `json:"attributes"`
	AcceptedValues           map[string]interface{}   `json:"accepted_values"`
	AttributesExpectedValues map[string][]interface{} `json:"attributes_expected_values"`
}

// Output maps every requested attribute to its predicted value, or null when
// the attribute could not be predicted.
type Output struct {
	Predictions map[string]*string `json:"predictions"`
}
