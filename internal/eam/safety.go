// internal/eam/safety.go
package eam

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apphttp "eam-assistant/internal/common/http"
	"eam-assistant/internal/common/metrics"
	"eam-assistant/internal/models"
)

// AttemptStatus classifies one create request.
type AttemptStatus string

const (
	StatusCreated  AttemptStatus = "created"
	StatusConflict AttemptStatus = "conflict"
	StatusFailed   AttemptStatus = "failed"
)

// CreateResult is the outcome of a revisioned create. Failure results carry the
// last payload and response body.
type CreateResult struct {
	Entity            string        `json:"entity"`
	Code              string        `json:"code"`
	EAMCode           string        `json:"eam_code,omitempty"`
	Status            AttemptStatus `json:"status"`
	RevisionUsed      int           `json:"revision_used"`
	Attempts          int           `json:"attempts"`
	MaxRetriesReached bool          `json:"max_retries_reached"`
	Payload           interface{}   `json:"payload,omitempty"`
	Response          interface{}   `json:"response,omitempty"`
	ResponseBody      string        `json:"response_body,omitempty"`
	Error             string        `json:"error,omitempty"`
}

func (r *CreateResult) OK() bool { return r.Status == StatusCreated }

// ClassifyAttempt maps a response to created, conflict or failed. A conflict is
// a non-2xx answer whose body contains one of markers, ignoring case.
func ClassifyAttempt(resp *apphttp.Response, err error, markers []string) AttemptStatus {
	if err != nil || resp == nil {
		return StatusFailed
	}
	if resp.IsSuccess() {
		return StatusCreated
	}
	body := strings.ToLower(string(resp.Body))
	for _, m := range markers {
		if m != "" && strings.Contains(body, strings.ToLower(m)) {
			return StatusConflict
		}
	}
	return StatusFailed
}

type revisionState int

const (
	statePending revisionState = iota
	stateCreating
	stateExists
	stateCreated
	stateFailed
)

type revisionedCreate struct {
	entity   string
	code     string
	resource string
	codeKey  string
	build    func(revision int) payload
}

// CreateHazard creates h, moving to the next hazard revision while EAM reports
// that the current one already exists.
func (c *Client) CreateHazard(ctx context.Context, h models.Hazard) *CreateResult {
	return c.createRevisioned(ctx, revisionedCreate{
		entity:   "hazard",
		code:     h.HazardCode,
		resource: resourceHazard,
		codeKey:  "HAZARDCODE",
		build:    func(rev int) payload { return c.hazardPayload(h, rev) },
	})
}

// CreatePrecaution is CreateHazard for precautions.
func (c *Client) CreatePrecaution(ctx context.Context, p models.Precaution) *CreateResult {
	return c.createRevisioned(ctx, revisionedCreate{
		entity:   "precaution",
		code:     p.PrecautionCode,
		resource: resourcePrecaution,
		codeKey:  "PRECAUTIONCODE",
		build:    func(rev int) payload { return c.precautionPayload(p, rev) },
	})
}

func (c *Client) maxRevisions() int {
	if c.cfg.MaxRevisionRetries < 1 {
		return 5
	}
	return c.cfg.MaxRevisionRetries
}

func (c *Client) createRevisioned(ctx context.Context, rc revisionedCreate) *CreateResult {
	log := c.logger.WithFields(map[string]interface{}{
		"entity": rc.entity,
		"code":   rc.code,
	})
	result := &CreateResult{Entity: rc.entity, Code: rc.code, Status: StatusFailed}
	maxAttempts := c.maxRevisions()

	revision := 0
	state := statePending
	for state != stateCreated && state != stateFailed {
		switch state {
		case statePending:
			state = stateCreating

		case stateCreating:
			if err := ctx.Err(); err != nil {
				result.Error = err.Error()
				state = stateFailed
				continue
			}

			body := rc.build(revision)
			result.Payload = body
			result.Attempts++

			resp, err := c.http.DoJSON(ctx, http.MethodPost, rc.resource, body)
			if resp != nil {
				result.ResponseBody = string(resp.Body)
			}

			switch ClassifyAttempt(resp, err, c.cfg.ConflictMarkers) {
			case StatusCreated:
				result.Status = StatusCreated
				result.RevisionUsed = revision
				result.Response = decodeBody(resp.Body)
				result.EAMCode = rc.code
				if code, ok := findString(result.Response, rc.codeKey); ok {
					result.EAMCode = code
				}
				state = stateCreated
			case StatusConflict:
				log.Info("EAM record exists, trying next revision", map[string]interface{}{
					"revision": revision,
				})
				state = stateExists
			default:
				if err != nil {
					result.Error = fmt.Sprintf("Failed to create %s: %s", rc.entity, err.Error())
				} else {
					result.Error = fmt.Sprintf("Failed to create %s: status %d", rc.entity, resp.StatusCode)
				}
				log.Error("EAM create failed", map[string]interface{}{
					"revision": revision,
					"error":    result.Error,
					"payload":  body,
					"response": result.ResponseBody,
				})
				state = stateFailed
			}

		case stateExists:
			if result.Attempts >= maxAttempts {
				result.Status = StatusConflict
				result.MaxRetriesReached = true
				result.Error = fmt.Sprintf("%s %s already exists for revisions 0 to %d", rc.entity, rc.code, revision)
				log.Warn("EAM revision retries exhausted", map[string]interface{}{
					"attempts": result.Attempts,
					"payload":  result.Payload,
					"response": result.ResponseBody,
				})
				state = stateFailed
				continue
			}
			revision++
			state = stateCreating
		}
	}

	metrics.EAMWritesTotal.WithLabelValues(rc.entity, string(result.Status)).Inc()
	metrics.EAMRevisionAttempts.Observe(float64(result.Attempts))
	return result
}

// SafetyLink is one equipment, hazard and precaution record for the safety matrix.
type SafetyLink struct {
	HazardCode            string
	HazardRevision        int
	HazardTypeCode        string
	HazardDescription     string
	PrecautionCode        string
	PrecautionRevision    int
	PrecautionDescription string
	Equipment             models.EquipmentDetails
}
