//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eam-assistant/internal/api"
	"eam-assistant/internal/assets"
	"eam-assistant/internal/audit"
	"eam-assistant/internal/common/config"
	"eam-assistant/internal/common/database"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/prompt"
	"eam-assistant/internal/workers/equipment"
	predictattribute "eam-assistant/internal/workers/equipment/predict-attribute"
	predictattributesbulk "eam-assistant/internal/workers/equipment/predict-attributes-bulk"
)

// The suite expects Elasticsearch, Postgres, Redis and Zeebe on localhost,
// e.g. from the docker compose stack. Run with: go test -tags e2e ./test/e2e/...

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("EAM_BASE_URL") == "" {
		t.Setenv("EAM_BASE_URL", "http://localhost:8080/axis/restservices")
	}
	if os.Getenv("ES_URL") == "" {
		t.Setenv("ES_URL", "http://localhost:9200")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	return cfg
}

func TestServiceConnectivity(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	defer pg.Close()
	assert.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	defer rdb.Close()
	assert.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "Elasticsearch client creation failed")
	assert.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")

	zc, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         envOr("ZEEBE_ADDRESS", "localhost:26500"),
		UsePlaintextConnection: true,
	})
	require.NoError(t, err, "Zeebe client creation failed")
	defer zc.Close()
	_, err = zc.NewTopologyCommand().Send(ctx)
	assert.NoError(t, err, "Zeebe topology request failed")
}

func TestPredictionAgainstLiveIndex(t *testing.T) {
	cfg := loadConfig(t)
	log := logger.NewTestLogger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)

	index := fmt.Sprintf("assets_e2e_%d", time.Now().UnixNano())
	indexer := assets.NewIndexer(es.Client, index, log)
	created, err := indexer.CreateIndex(ctx, true)
	require.NoError(t, err)
	require.True(t, created)
	t.Cleanup(func() {
		res, err := esapi.IndicesDeleteRequest{Index: []string{index}}.Do(context.Background(), es.Client)
		if err == nil {
			res.Body.Close()
		}
	})

	records, err := assets.ReadRecords(strings.NewReader(`[
		{"ASSETID":{"EQUIPMENTCODE":"E2E-P12","DESCRIPTION":"Pump 12"},"EQUIPMENTSTATEID":"Good","DEPARTMENTID":{"DEPARTMENTCODE":"MECH"}},
		{"ASSETID":{"EQUIPMENTCODE":"E2E-P13","DESCRIPTION":"Pump 13"},"EQUIPMENTSTATEID":"Defective","DEPARTMENTID":{"DEPARTMENTCODE":"MECH"}},
		{"ASSETID":{"EQUIPMENTCODE":"E2E-F1","DESCRIPTION":"Fan 1"},"EQUIPMENTSTATEID":"Good","DEPARTMENTID":{"DEPARTMENTCODE":"ELEC"}}
	]`))
	require.NoError(t, err)
	stats, err := indexer.Load(ctx, records)
	require.NoError(t, err)
	require.Equal(t, uint64(3), stats.Indexed)

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	store := audit.NewStore(pg.DB)
	require.NoError(t, store.EnsureSchema(ctx))

	searcher := assets.NewSearcher(es.Client, assets.SearchConfig{Index: index, CacheTTL: time.Minute}, rdb, log)
	fake := &llm.Fake{Fn: func(*prompt.Rendered) (string, error) { return "Good", nil }}
	predictor := equipment.NewPredictor(searcher, fake, log)

	server := api.NewServer(api.Options{
		Server:   config.ServerConfig{MaxUploadMB: 1, AllowedOrigins: "*"},
		Gatherer: prometheus.NewRegistry(),
	}, api.Handlers{
		PredictAttribute: predictattribute.NewHandler(predictattribute.LoadConfig(), predictor, store, log),
		PredictBulk:      predictattributesbulk.NewHandler(predictattributesbulk.LoadConfig(), predictor, store, nil, log),
	}, log)

	t.Run("single attribute", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/equipment/generate/"+url.PathEscape("Pump 12")+"/?attribute=state", nil)
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			HistoricalValues []interface{} `json:"historical_values"`
			LLMResponse      *string       `json:"llm_response"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.ElementsMatch(t, []interface{}{"Good", "Defective"}, body.HistoricalValues)
		require.NotNil(t, body.LLMResponse)
		assert.Equal(t, "Good", *body.LLMResponse)
	})

	t.Run("bulk", func(t *testing.T) {
		payload := `{"asset_description":"Pump 12","attributes":["state","department"]}`
		req := httptest.NewRequest(http.MethodPost, "/api/equipment/generate-bulk/", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Predictions map[string]*string `json:"predictions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Predictions, 2)
		assert.Equal(t, 3, fake.CallCount())
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
