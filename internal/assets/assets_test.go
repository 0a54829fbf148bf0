package assets

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eam-assistant/internal/common/database"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeTransport answers Elasticsearch requests from a handler func.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []recordedRequest
	handler func(req recordedRequest) (int, string)
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	rec := recordedRequest{Method: req.Method, Path: req.URL.Path, Query: req.URL.RawQuery, Body: string(body)}

	f.mu.Lock()
	f.calls = append(f.calls, rec)
	f.mu.Unlock()

	status, payload := f.handler(rec)
	return &http.Response{
		StatusCode: status,
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
		Body:    io.NopCloser(strings.NewReader(payload)),
		Request: req,
	}, nil
}

func (f *fakeTransport) Calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.calls...)
}

func newFakeClient(t *testing.T, handler func(req recordedRequest) (int, string)) (*elasticsearch.Client, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{handler: handler}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Transport: ft})
	require.NoError(t, err)
	return client, ft
}

func hitsResponse(sources ...string) string {
	hits := make([]string, 0, len(sources))
	for _, s := range sources {
		hits = append(hits, fmt.Sprintf(`{"_index":"assets_index","_source":%s}`, s))
	}
	return fmt.Sprintf(`{"hits":{"total":{"value":%d},"hits":[%s]}}`, len(sources), strings.Join(hits, ","))
}

func TestResolveAndDescriptions(t *testing.T) {
	path, ok := Resolve("department")
	assert.True(t, ok)
	assert.Equal(t, "DEPARTMENTID.DEPARTMENTCODE", path)

	path, ok = Resolve("state")
	assert.True(t, ok)
	assert.Equal(t, "EQUIPMENTSTATEID", path)

	_, ok = Resolve("colour")
	assert.False(t, ok)

	assert.Len(t, Keys(), 100)
	for _, key := range Keys() {
		assert.NotEmpty(t, Description(key), key)
	}

	assert.True(t, IsDateField("commissiondate"))
	assert.False(t, IsDateField("lotodatereviewrequired"))
}

func TestFuzzySearch_PumpScenario(t *testing.T) {
	client, ft := newFakeClient(t, func(req recordedRequest) (int, string) {
		return http.StatusOK, hitsResponse(
			`{"EQUIPMENTSTATEID":"Good"}`,
			`{"EQUIPMENTSTATEID":"Good"}`,
			`{"EQUIPMENTSTATEID":"Defective"}`,
			`{}`,
		)
	})

	s := NewSearcher(client, SearchConfig{Index: "assets_index"}, nil, logger.NewTestLogger(t))

	values, err := s.FuzzySearch(context.Background(), "Pump 12", "state")
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"Good", "Defective"}, values)

	calls := ft.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/assets_index/_search", calls[0].Path)
	assert.Contains(t, calls[0].Query, "size=100")

	var body struct {
		Query struct {
			Bool struct {
				Should []map[string]map[string]struct {
					Query     string `json:"query"`
					Fuzziness string `json:"fuzziness"`
					Operator  string `json:"operator"`
				} `json:"should"`
				MinimumShouldMatch int `json:"minimum_should_match"`
			} `json:"bool"`
		} `json:"query"`
		Source []string `json:"_source"`
	}
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))

	should := body.Query.Bool.Should
	require.Len(t, should, 2)
	assert.Equal(t, "Pump", should[0]["match"]["ASSETID.DESCRIPTION"].Query)
	assert.Equal(t, "12", should[1]["match"]["ASSETID.DESCRIPTION"].Query)
	assert.Equal(t, "AUTO", should[0]["match"]["ASSETID.DESCRIPTION"].Fuzziness)
	assert.Equal(t, "or", should[1]["match"]["ASSETID.DESCRIPTION"].Operator)
	assert.Equal(t, 1, body.Query.Bool.MinimumShouldMatch)
	assert.Equal(t, []string{"EQUIPMENTSTATEID"}, body.Source)
}

func TestFuzzySearch_NestedPathAndDedup(t *testing.T) {
	client, _ := newFakeClient(t, func(req recordedRequest) (int, string) {
		return http.StatusOK, hitsResponse(
			`{"DEPARTMENTID":{"DEPARTMENTCODE":"HVAC"}}`,
			`{"DEPARTMENTID":{"DEPARTMENTCODE":"HVAC"}}`,
			`{"DEPARTMENTID":{"DEPARTMENTCODE":"ELEC"}}`,
			`{"DEPARTMENTID":"flat"}`,
			`{"DEPARTMENTID":{"OTHER":"x"}}`,
			`{"DEPARTMENTID":{"DEPARTMENTCODE":null}}`,
		)
	})

	s := NewSearcher(client, SearchConfig{Index: "assets_index"}, nil, logger.NewTestLogger(t))

	values, err := s.FuzzySearch(context.Background(), "air handler", "department")
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"HVAC", "ELEC"}, values)
}

func TestFuzzySearch_NumericValues(t *testing.T) {
	client, _ := newFakeClient(t, func(req recordedRequest) (int, string) {
		return http.StatusOK, hitsResponse(
			`{"ASSETVALUE":108}`,
			`{"ASSETVALUE":108}`,
			`{"ASSETVALUE":112.5}`,
			`{"ASSETVALUE":{"AMOUNT":1}}`,
			`{"ASSETVALUE":{"AMOUNT":1}}`,
		)
	})

	s := NewSearcher(client, SearchConfig{Index: "assets_index"}, nil, logger.NewTestLogger(t))

	values, err := s.FuzzySearch(context.Background(), "chiller", "equipmentvalue")
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Contains(t, values, json.Number("108"))
	assert.Contains(t, values, json.Number("112.5"))
}

func TestFuzzySearch_NoQueryIssued(t *testing.T) {
	client, ft := newFakeClient(t, func(req recordedRequest) (int, string) {
		return http.StatusOK, hitsResponse()
	})
	s := NewSearcher(client, SearchConfig{Index: "assets_index"}, nil, logger.NewTestLogger(t))

	values, err := s.FuzzySearch(context.Background(), "Pump 12", "colour")
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = s.FuzzySearch(context.Background(), "   \t ", "state")
	require.NoError(t, err)
	assert.Empty(t, values)

	assert.Empty(t, ft.Calls())
}

func TestFuzzySearch_SearchFailure(t *testing.T) {
	client, _ := newFakeClient(t, func(req recordedRequest) (int, string) {
		return http.StatusInternalServerError, `{"error":{"type":"search_phase_execution_exception"}}`
	})
	s := NewSearcher(client, SearchConfig{Index: "assets_index"}, nil, logger.NewTestLogger(t))

	_, err := s.FuzzySearch(context.Background(), "Pump 12", "state")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSearchQueryFailed, apperrors.AsStandardError(err).Code)
}

func TestFuzzySearch_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	client, ft := newFakeClient(t, func(req recordedRequest) (int, string) {
		return http.StatusOK, hitsResponse(`{"EQUIPMENTSTATEID":"Good"}`)
	})
	s := NewSearcher(client, SearchConfig{Index: "assets_index", CacheTTL: time.Minute}, cache, logger.NewTestLogger(t))

	first, err := s.FuzzySearch(context.Background(), "Pump 12", "state")
	require.NoError(t, err)
	second, err := s.FuzzySearch(context.Background(), "Pump 12", "state")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, ft.Calls(), 1)
	assert.True(t, mr.Exists(historyCacheKey("Pump 12", "state")))

	mr.FastForward(2 * time.Minute)
	_, err = s.FuzzySearch(context.Background(), "Pump 12", "state")
	require.NoError(t, err)
	assert.Len(t, ft.Calls(), 2)
}

func TestFuzzySearch_CachedNumbersKeepPrecision(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	client, ft := newFakeClient(t, func(req recordedRequest) (int, string) {
		return http.StatusOK, hitsResponse(`{"ASSETVALUE":12345678901234567}`)
	})
	s := NewSearcher(client, SearchConfig{Index: "assets_index", CacheTTL: time.Minute}, cache, logger.NewTestLogger(t))

	cold, err := s.FuzzySearch(context.Background(), "chiller", "equipmentvalue")
	require.NoError(t, err)
	warm, err := s.FuzzySearch(context.Background(), "chiller", "equipmentvalue")
	require.NoError(t, err)

	assert.Equal(t, []interface{}{json.Number("12345678901234567")}, cold)
	assert.Equal(t, cold, warm)
	assert.Len(t, ft.Calls(), 1)
}

func TestIndexer_CreateIndex(t *testing.T) {
	t.Run("existing index is kept", func(t *testing.T) {
		client, ft := newFakeClient(t, func(req recordedRequest) (int, string) {
			return http.StatusOK, `{}`
		})
		created, err := NewIndexer(client, "assets_index", logger.NewTestLogger(t)).CreateIndex(context.Background(), false)
		require.NoError(t, err)
		assert.False(t, created)
		require.Len(t, ft.Calls(), 1)
		assert.Equal(t, http.MethodHead, ft.Calls()[0].Method)
	})

	t.Run("missing index is created with mapping", func(t *testing.T) {
		client, ft := newFakeClient(t, func(req recordedRequest) (int, string) {
			if req.Method == http.MethodHead {
				return http.StatusNotFound, ``
			}
			return http.StatusOK, `{"acknowledged":true}`
		})
		created, err := NewIndexer(client, "assets_index", logger.NewTestLogger(t)).CreateIndex(context.Background(), false)
		require.NoError(t, err)
		assert.True(t, created)

		calls := ft.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, http.MethodPut, calls[1].Method)
		assert.Contains(t, calls[1].Body, `"EQUIPMENTCODE"`)
		assert.Contains(t, calls[1].Body, `epoch_millis||strict_date_optional_time`)
	})

	t.Run("recreate drops first", func(t *testing.T) {
		client, ft := newFakeClient(t, func(req recordedRequest) (int, string) {
			return http.StatusOK, `{"acknowledged":true}`
		})
		created, err := NewIndexer(client, "assets_index", logger.NewTestLogger(t)).CreateIndex(context.Background(), true)
		require.NoError(t, err)
		assert.True(t, created)

		var methods []string
		for _, c := range ft.Calls() {
			methods = append(methods, c.Method)
		}
		assert.Equal(t, []string{http.MethodHead, http.MethodDelete, http.MethodPut}, methods)
	})
}

func TestIndexer_Load(t *testing.T) {
	var bulkBodies []string
	var mu sync.Mutex

	client, _ := newFakeClient(t, func(req recordedRequest) (int, string) {
		mu.Lock()
		bulkBodies = append(bulkBodies, req.Body)
		mu.Unlock()

		var items []string
		scanner := bufio.NewScanner(strings.NewReader(req.Body))
		for scanner.Scan() {
			var meta map[string]map[string]interface{}
			if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
				continue
			}
			action, ok := meta["index"]
			if !ok {
				continue
			}
			items = append(items, fmt.Sprintf(`{"index":{"_index":"assets_index","_id":"%v","status":201}}`, action["_id"]))
			scanner.Scan()
		}
		return http.StatusOK, fmt.Sprintf(`{"took":1,"errors":false,"items":[%s]}`, strings.Join(items, ","))
	})

	records, err := ReadRecords(strings.NewReader(`[
		{"ASSETID":{"EQUIPMENTCODE":"P-100","DESCRIPTION":"Pump 12"},"COMMISSIONDATE":{"YEAR":1704067200000}},
		{"ASSETID":{"EQUIPMENTCODE":"P-101","DESCRIPTION":"Pump 13"}},
		{"ASSETID":{"DESCRIPTION":"no code"},"recordid":"r-3"}
	]`))
	require.NoError(t, err)

	stats, err := NewIndexer(client, "assets_index", logger.NewTestLogger(t)).Load(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Read)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, uint64(2), stats.Indexed)
	assert.Equal(t, uint64(0), stats.Failed)

	all := strings.Join(bulkBodies, "\n")
	assert.Contains(t, all, `"_id":"P-100"`)
	assert.Contains(t, all, `"COMMISSIONDATE":1704067200000`)
}

func TestReadRecords_RejectsNonList(t *testing.T) {
	_, err := ReadRecords(strings.NewReader(`{"ASSETID":{}}`))
	assert.Error(t, err)
}

func TestNormalizeCommissionDate(t *testing.T) {
	doc := map[string]interface{}{"COMMISSIONDATE": map[string]interface{}{"YEAR": "soon"}}
	normalizeCommissionDate(doc)
	_, ok := doc["COMMISSIONDATE"]
	assert.False(t, ok)

	doc = map[string]interface{}{"COMMISSIONDATE": map[string]interface{}{"YEAR": float64(1700000000000)}}
	normalizeCommissionDate(doc)
	assert.Equal(t, int64(1700000000000), doc["COMMISSIONDATE"])
}
