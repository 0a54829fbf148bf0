package eam

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eam-assistant/internal/common/config"
	apphttp "eam-assistant/internal/common/http"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/models"
)

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]interface{}
	Raw    string
}

// eamServer records requests and answers them with respond.
type eamServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newEAMServer(t *testing.T, respond func(n int, req capturedRequest) (int, string)) *eamServer {
	t.Helper()
	s := &eamServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := capturedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Raw: string(raw)}
		_ = json.Unmarshal(raw, &req.Body)

		s.mu.Lock()
		n := len(s.requests)
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		status, body := respond(n, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *eamServer) Requests() []capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedRequest(nil), s.requests...)
}

func testEAMConfig(baseURL string) config.EAMConfig {
	return config.EAMConfig{
		BaseURL:            baseURL,
		Username:           "PLANNER@EXAMPLE.COM",
		Password:           "secret",
		Tenant:             "TENANT_TST",
		Organization:       "21T",
		OrganizationCode:   "LAMETRO",
		SafetyOrganization: "*",
		MaterialListCode:   "MHVAC-01",
		TaskWorkOrderType:  "PMC",
		PMWorkOrderType:    "PM",
		TimeZone:           "-0500",
		MaxRevisionRetries: 5,
		ConflictMarkers:    []string{"already exists", "record already exists"},
		Timeout:            5000,
	}
}

func newTestClient(t *testing.T, srv *eamServer) *Client {
	c := NewClient(testEAMConfig(srv.URL), logger.NewTestLogger(t))
	c.now = func() time.Time { return time.Date(2024, time.August, 5, 10, 30, 0, 0, time.UTC) }
	return c
}

var testHazard = models.Hazard{
	HazardCode:  "HAZ-BTORCH-001",
	Description: "Risk of burn injury from direct flame.",
	HazardType:  models.HazardTypePhysical,
}

func revisionOf(t *testing.T, req capturedRequest, idKey, revKey string) int {
	t.Helper()
	id, ok := req.Body[idKey].(map[string]interface{})
	require.True(t, ok, "missing %s in %s", idKey, req.Raw)
	return int(id[revKey].(float64))
}

func TestCreateHazard_ExhaustsRevisions(t *testing.T) {
	srv := newEAMServer(t, func(int, capturedRequest) (int, string) {
		return http.StatusBadRequest, `{"ErrorAlert":[{"Message":"Record already exists."}]}`
	})
	c := newTestClient(t, srv)

	res := c.CreateHazard(context.Background(), testHazard)

	reqs := srv.Requests()
	require.Len(t, reqs, 5)
	for i, req := range reqs {
		assert.Equal(t, "/hazard", req.Path)
		assert.Equal(t, i, revisionOf(t, req, "HAZARDID", "HAZARDREVISION"))
	}

	assert.Equal(t, StatusConflict, res.Status)
	assert.True(t, res.MaxRetriesReached)
	assert.Equal(t, 5, res.Attempts)
	assert.False(t, res.OK())
	assert.Contains(t, res.ResponseBody, "Record already exists.")
	last, ok := res.Payload.(payload)
	require.True(t, ok)
	assert.Equal(t, 4, last["HAZARDID"].(payload)["HAZARDREVISION"])
}

func TestCreateHazard_SucceedsAfterConflicts(t *testing.T) {
	for k := 0; k < 5; k++ {
		k := k
		t.Run("revision "+string(rune('0'+k)), func(t *testing.T) {
			srv := newEAMServer(t, func(n int, _ capturedRequest) (int, string) {
				if n < k {
					return http.StatusConflict, `{"ErrorAlert":[{"Message":"Hazard already exists"}]}`
				}
				return http.StatusOK, `{"Result":{"ResultData":{"HAZARDID":{"HAZARDCODE":"HAZ-EAM-77"}}}}`
			})
			c := newTestClient(t, srv)

			res := c.CreateHazard(context.Background(), testHazard)

			assert.Len(t, srv.Requests(), k+1)
			assert.Equal(t, StatusCreated, res.Status)
			assert.Equal(t, k, res.RevisionUsed)
			assert.Equal(t, k+1, res.Attempts)
			assert.False(t, res.MaxRetriesReached)
			assert.Equal(t, "HAZ-EAM-77", res.EAMCode)
		})
	}
}

func TestCreatePrecaution_FailureStopsImmediately(t *testing.T) {
	srv := newEAMServer(t, func(int, capturedRequest) (int, string) {
		return http.StatusInternalServerError, `{"ErrorAlert":[{"Message":"Invalid organization"}]}`
	})
	c := newTestClient(t, srv)

	timing := models.TimingPreWork
	res := c.CreatePrecaution(context.Background(), models.Precaution{
		PrecautionCode: "PREC-BT001-PPE01",
		Description:    "Wear heat-resistant gloves.",
		Timing:         &timing,
	})

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/precaution", reqs[0].Path)
	assert.Equal(t, "PRE", reqs[0].Body["TIMING"].(map[string]interface{})["USERDEFINEDCODE"])

	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, res.MaxRetriesReached)
	assert.Contains(t, res.Error, "status 500")
	assert.Contains(t, res.ResponseBody, "Invalid organization")
	assert.NotNil(t, res.Payload)
	assert.Equal(t, "PREC-BT001-PPE01", res.Code)
	assert.Empty(t, res.EAMCode)
}

func TestCreatePrecaution_DefaultsToLLMCode(t *testing.T) {
	srv := newEAMServer(t, func(int, capturedRequest) (int, string) {
		return http.StatusOK, `{"Result":{"ResultData":{}}}`
	})
	c := newTestClient(t, srv)

	res := c.CreatePrecaution(context.Background(), models.Precaution{PrecautionCode: "PREC-1", Description: "d"})
	assert.True(t, res.OK())
	assert.Equal(t, "PREC-1", res.EAMCode)
	assert.Nil(t, srv.Requests()[0].Body["TIMING"])
}

func TestCreateHazard_CancelledContext(t *testing.T) {
	srv := newEAMServer(t, func(int, capturedRequest) (int, string) {
		return http.StatusOK, `{}`
	})
	c := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.CreateHazard(ctx, testHazard)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 0, res.Attempts)
	assert.Empty(t, srv.Requests())
}

func TestCreateHazard_TransportError(t *testing.T) {
	srv := newEAMServer(t, func(int, capturedRequest) (int, string) { return http.StatusOK, `{}` })
	c := newTestClient(t, srv)
	srv.Close()

	res := c.CreateHazard(context.Background(), testHazard)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Error, "Failed to create hazard")
}

func TestClassifyAttempt(t *testing.T) {
	markers := []string{"already exists"}

	assert.Equal(t, StatusFailed, ClassifyAttempt(nil, assert.AnError, markers))
	assert.Equal(t, StatusCreated, ClassifyAttempt(&apphttp.Response{StatusCode: 201}, nil, markers))
	assert.Equal(t, StatusConflict, ClassifyAttempt(&apphttp.Response{StatusCode: 400, Body: []byte("Code ALREADY EXISTS")}, nil, markers))
	assert.Equal(t, StatusFailed, ClassifyAttempt(&apphttp.Response{StatusCode: 400, Body: []byte("bad request")}, nil, markers))
	assert.Equal(t, StatusFailed, ClassifyAttempt(&apphttp.Response{StatusCode: 400, Body: []byte("already exists")}, nil, nil))
}
