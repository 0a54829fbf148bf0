package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eam-assistant/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeElasticsearch(t *testing.T, handler http.HandlerFunc) *ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL, Index: "assets_index"})
	require.NoError(t, err)
	return client
}

func TestElasticsearch_InfoAndPing(t *testing.T) {
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":{"number":"8.11.0"}}`))
	})

	require.NoError(t, client.Ping(context.Background()))

	version, err := client.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.11.0", version)
	assert.Equal(t, "assets_index", client.Index)
}

func TestElasticsearch_IndexExists(t *testing.T) {
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assets_index" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	ok, err := client.IndexExists(context.Background(), "assets_index")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.IndexExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_JSONRoundTripAndMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer client.Close()
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, client.GetJSON(ctx, "assets:history:x", &out), ErrCacheMiss)

	require.NoError(t, client.SetJSON(ctx, "assets:history:x", []string{"Good", "Fair"}, time.Minute))
	require.NoError(t, client.GetJSON(ctx, "assets:history:x", &out))
	assert.Equal(t, []string{"Good", "Fair"}, out)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, client.GetJSON(ctx, "assets:history:x", &out), ErrCacheMiss)
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}
