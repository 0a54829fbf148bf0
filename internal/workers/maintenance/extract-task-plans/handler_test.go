package extracttaskplans

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/documents"
	"eam-assistant/internal/eam"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/models"
	"eam-assistant/internal/prompt"
	"eam-assistant/internal/workers/maintenance"
)

const taskPlansJSON = `{"task_plans": [
  {"task_code": "BRK-INSP", "description": "Inspect brake pads", "checklist": [
    {"checklist_id": "BRK-01", "description": "Measure pad thickness"}
  ]},
  {"task_code": "BRK-ROTOR", "description": "Inspect rotors", "checklist": []}
]}`

type stubFetcher struct {
	codes []string
	err   error
}

func (s *stubFetcher) FetchDocument(_ context.Context, code string) (*eam.Document, error) {
	s.codes = append(s.codes, code)
	if s.err != nil {
		return nil, s.err
	}
	return &eam.Document{Code: code, Name: code + ".md", Content: []byte("# Brake service bulletin")}, nil
}

type writer struct{ tasks []string }

func (w *writer) CreateTaskPlan(_ context.Context, plan models.TaskPlan) (interface{}, error) {
	w.tasks = append(w.tasks, plan.TaskCode)
	if plan.TaskCode == "BRK-INSP" {
		return nil, &eam.APIError{Operation: "create task plan", StatusCode: 409, Body: "duplicate"}
	}
	return map[string]interface{}{"TASKCODE": plan.TaskCode}, nil
}

func (w *writer) CreateChecklist(context.Context, string, models.ChecklistItem, int) (interface{}, error) {
	return nil, nil
}

func newHandler(t *testing.T, fetcher documents.Fetcher, fake *llm.Fake, w maintenance.TaskPlanWriter) *Handler {
	log := logger.NewTestLogger(t)
	extractor := documents.NewExtractor(config.DocumentsConfig{TempDir: t.TempDir()}, log)
	return NewHandler(LoadConfig(), extractor, fetcher, fake, w, log)
}

func TestHandler_Execute(t *testing.T) {
	fetcher := &stubFetcher{}
	fake := &llm.Fake{Fn: func(p *prompt.Rendered) (string, error) {
		assert.Contains(t, p.Human, "Brake service bulletin")
		return taskPlansJSON, nil
	}}
	w := &writer{}
	h := newHandler(t, fetcher, fake, w)

	out, err := h.Execute(context.Background(), &Input{DocumentCode: " SM-100 ", CreateInEAM: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"SM-100"}, fetcher.codes)
	require.Len(t, out.ExtractedData, 2)

	assert.Equal(t, []string{"BRK-INSP", "BRK-ROTOR"}, w.tasks)
	require.Len(t, out.CreatedInEAM, 2)
	assert.Contains(t, out.CreatedInEAM[0].Error, "409")
	assert.Empty(t, out.CreatedInEAM[1].Error)
}

func TestHandler_Execute_MissingCode(t *testing.T) {
	fake := &llm.Fake{}
	h := newHandler(t, &stubFetcher{}, fake, nil)

	_, err := h.Execute(context.Background(), &Input{})
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
	assert.Equal(t, "No document_code provided", stdErr.Message)
	assert.Zero(t, fake.CallCount())
}

func TestHandler_Execute_FetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: apperrors.NewEAMDocumentNotFoundError("EAM API Error: Document not found")}
	fake := &llm.Fake{}
	h := newHandler(t, fetcher, fake, nil)

	_, err := h.Execute(context.Background(), &Input{DocumentCode: "SM-404"})
	assert.Equal(t, apperrors.ErrCodeEAMDocumentNotFound, apperrors.AsStandardError(err).Code)
	assert.Zero(t, fake.CallCount())
}

func TestHandler_Execute_ModelFailure(t *testing.T) {
	fake := &llm.Fake{Fn: func(*prompt.Rendered) (string, error) {
		return "", apperrors.NewLLMCallFailedError(errors.New("rate limited"))
	}}
	h := newHandler(t, &stubFetcher{}, fake, nil)

	out, err := h.Execute(context.Background(), &Input{DocumentCode: "SM-100"})
	assert.Nil(t, out)
	assert.Equal(t, apperrors.ErrCodeLLMCallFailed, apperrors.AsStandardError(err).Code)
}
