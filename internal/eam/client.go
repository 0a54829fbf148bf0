// internal/eam/client.go
package eam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	apphttp "eam-assistant/internal/common/http"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/common/metrics"
	"eam-assistant/internal/models"
)

const (
	resourceTasks      = "tasks"
	resourceChecklists = "tasks/checklists/"
	resourceSchedules  = "pmschedulesforwork"
	resourceHazard     = "hazard"
	resourcePrecaution = "precaution"
	resourceSafety     = "safetymatrix"
	resourceQualify    = "qualifications"
	resourceCategories = "categories"
	resourceDocuments  = "documentattachments"
)

// APIError is a non-2xx answer from EAM.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
	Payload    interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Failed to %s: %d %s | Response: %s", e.Operation, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *APIError) Unwrap() error {
	return apperrors.NewEAMRequestFailedError(e.Operation, fmt.Errorf("status %d: %s", e.StatusCode, e.Body))
}

// Client talks to the EAM REST services with basic auth and the tenant and
// organization headers.
type Client struct {
	http   *apphttp.Client
	cfg    config.EAMConfig
	logger logger.Logger
	now    func() time.Time
}

func NewClient(cfg config.EAMConfig, log logger.Logger, opts ...apphttp.Option) *Client {
	base := []apphttp.Option{
		apphttp.WithBaseURL(cfg.BaseURL),
		apphttp.WithBasicAuth(cfg.Username, cfg.Password),
		apphttp.WithHeader("tenant", cfg.Tenant),
		apphttp.WithHeader("organization", cfg.Organization),
	}
	return &Client{
		http:   apphttp.NewClient(config.GetDuration(cfg.Timeout), append(base, opts...)...),
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "eam"}),
		now:    time.Now,
	}
}

// post sends payload and returns the decoded body. Transport failures and
// non-2xx answers are logged with the payload.
func (c *Client) post(ctx context.Context, operation, resource string, payload interface{}) (interface{}, error) {
	return c.send(ctx, http.MethodPost, operation, resource, payload)
}

func (c *Client) send(ctx context.Context, method, operation, resource string, payload interface{}) (interface{}, error) {
	resp, err := c.http.DoJSON(ctx, method, resource, payload)
	if err != nil {
		c.logFailure(operation, payload, "", err)
		return nil, apperrors.NewEAMRequestFailedError(operation, err)
	}
	if !resp.IsSuccess() {
		apiErr := &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: string(resp.Body), Payload: payload}
		c.logFailure(operation, payload, apiErr.Body, apiErr)
		return nil, apiErr
	}
	return decodeBody(resp.Body), nil
}

func (c *Client) logFailure(operation string, payload interface{}, body string, err error) {
	fields := map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	}
	if payload != nil {
		if data, mErr := json.MarshalIndent(payload, "", "  "); mErr == nil {
			fields["payload"] = string(data)
		}
	}
	if body != "" {
		fields["response"] = body
	}
	c.logger.Error("EAM request failed", fields)
}

// CreateTaskPlan posts one task plan to the tasks resource.
func (c *Client) CreateTaskPlan(ctx context.Context, plan models.TaskPlan) (interface{}, error) {
	resp, err := c.post(ctx, "create task plan", resourceTasks, c.taskPlanPayload(plan))
	c.countWrite("task_plan", err)
	return resp, err
}

// CreateChecklist adds one checklist item to taskCode at the given sequence.
func (c *Client) CreateChecklist(ctx context.Context, taskCode string, item models.ChecklistItem, sequence int) (interface{}, error) {
	resp, err := c.post(ctx, "create checklist", resourceChecklists, c.checklistPayload(taskCode, item, sequence))
	c.countWrite("checklist", err)
	return resp, err
}

func (c *Client) CreateMaintenanceSchedule(ctx context.Context, schedule models.MaintenanceSchedule) (interface{}, error) {
	resp, err := c.post(ctx, "create maintenance schedule", resourceSchedules, c.schedulePayload(schedule))
	c.countWrite("maintenance_schedule", err)
	return resp, err
}

func (c *Client) CreateQualification(ctx context.Context, q models.Qualification) (interface{}, error) {
	resp, err := c.post(ctx, "create qualification", resourceQualify, c.qualificationPayload(q))
	c.countWrite("qualification", err)
	return resp, err
}

// CreateSafetyLink records the equipment, hazard and precaution triple in the safety matrix.
func (c *Client) CreateSafetyLink(ctx context.Context, link SafetyLink) (interface{}, error) {
	resp, err := c.post(ctx, "create safety link", resourceSafety, c.safetyLinkPayload(link))
	c.countWrite("safety_link", err)
	return resp, err
}

// ListCategories returns the category codes known to EAM.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	body, err := c.send(ctx, http.MethodGet, "list categories", resourceCategories, nil)
	if err != nil {
		return nil, err
	}
	return collectStrings(body, "CATEGORYCODE"), nil
}

func (c *Client) countWrite(entity string, err error) {
	status := "created"
	if err != nil {
		status = "failed"
	}
	metrics.EAMWritesTotal.WithLabelValues(entity, status).Inc()
}

// decodeBody returns the JSON value of body, or the raw text when it is not JSON.
func decodeBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

// collectStrings gathers every string stored under key anywhere in v.
func collectStrings(v interface{}, key string) []string {
	var out []string
	var walk func(interface{})
	walk = func(node interface{}) {
		switch n := node.(type) {
		case map[string]interface{}:
			if s, ok := n[key].(string); ok && s != "" {
				out = append(out, s)
			}
			for k, child := range n {
				if k != key {
					walk(child)
				}
			}
		case []interface{}:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(v)
	return out
}

// findString returns the first string stored under key, searching breadth first.
func findString(v interface{}, key string) (string, bool) {
	queue := []interface{}{v}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		switch n := node.(type) {
		case map[string]interface{}:
			if s, ok := n[key].(string); ok && s != "" {
				return s, true
			}
			for _, child := range n {
				queue = append(queue, child)
			}
		case []interface{}:
			queue = append(queue, n...)
		}
	}
	return "", false
}

// Describe renders err for a per-item result entry.
func Describe(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	stdErr := apperrors.AsStandardError(err)
	if stdErr.Details != "" {
		return stdErr.Message + ": " + stdErr.Details
	}
	return stdErr.Message
}
