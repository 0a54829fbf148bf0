// internal/assets/search.go
package assets

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
)

// HistoryCache is the subset of the Redis client the searcher needs.
type HistoryCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type SearchConfig struct {
	Index            string
	DescriptionField string
	Size             int
	CacheTTL         time.Duration
}

// Searcher retrieves the historical values of one attribute for assets whose
// description resembles a given one.
type Searcher struct {
	client *elasticsearch.Client
	config SearchConfig
	cache  HistoryCache
	logger logger.Logger
}

// NewSearcher builds a Searcher. cache may be nil.
func NewSearcher(client *elasticsearch.Client, cfg SearchConfig, cache HistoryCache, log logger.Logger) *Searcher {
	if cfg.DescriptionField == "" {
		cfg.DescriptionField = "ASSETID.DESCRIPTION"
	}
	if cfg.Size <= 0 {
		cfg.Size = 100
	}
	return &Searcher{
		client: client,
		config: cfg,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "asset-search"}),
	}
}

// FuzzySearch returns the distinct values stored under key's path in every
// asset matching any term of description. Unknown keys and blank
// descriptions yield an empty result.
func (s *Searcher) FuzzySearch(ctx context.Context, description, key string) ([]interface{}, error) {
	path, ok := Resolve(key)
	if !ok {
		s.logger.Warn("invalid label key", map[string]interface{}{"key": key})
		return []interface{}{}, nil
	}

	terms := strings.Fields(description)
	if len(terms) == 0 {
		return []interface{}{}, nil
	}

	cacheKey := historyCacheKey(description, key)
	if s.cache != nil && s.config.CacheTTL > 0 {
		var raw json.RawMessage
		if err := s.cache.GetJSON(ctx, cacheKey, &raw); err == nil {
			if cached, err := decodeHistory(raw); err == nil {
				return cached, nil
			}
		}
	}

	values, err := s.search(ctx, terms, path)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(key, err)
	}

	if s.cache != nil && s.config.CacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, cacheKey, values, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache history", map[string]interface{}{"key": key, "error": err})
		}
	}
	return values, nil
}

func (s *Searcher) search(ctx context.Context, terms []string, path string) ([]interface{}, error) {
	req, err := BuildFuzzyQuery(FuzzyQuery{
		Index:      s.config.Index,
		MatchField: s.config.DescriptionField,
		Terms:      terms,
		SourcePath: path,
		Size:       s.config.Size,
	})
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	values := []interface{}{}
	for _, hit := range r.Hits.Hits {
		value, ok := lookupPath(hit.Source, path)
		if !ok {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			s.logger.Warn("skipping unencodable value", map[string]interface{}{"path": path, "error": err})
			continue
		}
		id := string(bytes.TrimSpace(raw))
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		values = append(values, value)
	}

	s.logger.Debug("history lookup finished", map[string]interface{}{
		"path":   path,
		"hits":   len(r.Hits.Hits),
		"unique": len(values),
	})
	return values, nil
}

func historyCacheKey(description, key string) string {
	sum := sha1.Sum([]byte(description + "|" + key))
	return "assets:history:" + hex.EncodeToString(sum[:])
}

// decodeHistory keeps numbers as json.Number so cached values match what the
// search itself returns.
func decodeHistory(raw []byte) ([]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var values []interface{}
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	return values, nil
}
