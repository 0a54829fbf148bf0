// internal/assets/query.go
package assets

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingIndex = errors.New("index name is required")

// FuzzyQuery describes a history lookup against the asset index.
type FuzzyQuery struct {
	Index      string
	MatchField string
	Terms      []string
	SourcePath string
	Size       int
}

// BuildFuzzyQuery turns q into a bool/should search where any single fuzzy
// term match qualifies a document.
func BuildFuzzyQuery(q FuzzyQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	should := make([]interface{}, 0, len(q.Terms))
	for _, term := range q.Terms {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				q.MatchField: map[string]interface{}{
					"query":     term,
					"fuzziness": "AUTO",
					"operator":  "or",
				},
			},
		})
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"_source": []string{q.SourcePath},
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, err
	}

	size := q.Size
	req := esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}
	return &req, nil
}

// lookupPath walks a dotted path through a decoded _source document.
func lookupPath(source map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = source
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}
