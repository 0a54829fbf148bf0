package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_SetsHeadersAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "planner", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "TENANT_A", r.Header.Get("tenant"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/rest/tasks", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"code":"T1"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second,
		WithBaseURL(srv.URL+"/rest/"),
		WithBasicAuth("planner", "secret"),
		WithHeader("tenant", "TENANT_A"),
		WithHeader("organization", ""),
	)

	resp, err := c.DoJSON(context.Background(), http.MethodPost, "tasks", map[string]string{"code": "T1"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	var out map[string]bool
	require.NoError(t, resp.JSON(&out))
	assert.True(t, out["ok"])
}

func TestDoJSON_NonSuccessIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`record already exists`))
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second, WithBaseURL(srv.URL)).DoJSON(context.Background(), http.MethodPost, "/hazard", nil)
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, "record already exists", string(resp.Body))
}

func TestPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "LVCAT", r.PostForm.Get("GRID_NAME"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second).PostForm(context.Background(), srv.URL+"/GRIDDATA", url.Values{"GRID_NAME": {"LVCAT"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
