package extractmaintenanceschedule

import (
	"context"
	"encoding/json"
	"strings"
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
)

const scheduleJSON = `{
  "code": "PM-PUMP-Q",
  "description": "Quarterly pump service",
  "duration": 4,
  "task_plans": [
    {"task_code": "TP-1", "description": "Inspect seals", "checklist": [
      {"checklist_id": "CL-1", "description": "Check for leaks"},
      {"checklist_id": "CL-2", "description": "Replace gasket"}
    ]}
  ]
}`

type stubFetcher struct{ doc *eam.Document }

func (s *stubFetcher) FetchDocument(context.Context, string) (*eam.Document, error) {
	return s.doc, nil
}

type recordingWriter struct{ calls []string }

func (w *recordingWriter) CreateTaskPlan(_ context.Context, plan models.TaskPlan) (interface{}, error) {
	w.calls = append(w.calls, "task:"+plan.TaskCode)
	return "ok", nil
}

func (w *recordingWriter) CreateChecklist(_ context.Context, _ string, item models.ChecklistItem, _ int) (interface{}, error) {
	w.calls = append(w.calls, "checklist:"+item.ChecklistID)
	return "ok", nil
}

func (w *recordingWriter) CreateMaintenanceSchedule(_ context.Context, s models.MaintenanceSchedule) (interface{}, error) {
	w.calls = append(w.calls, "schedule:"+s.Code)
	return "ok", nil
}

func newHandler(t *testing.T, fake *llm.Fake, writer *recordingWriter) *Handler {
	log := logger.NewTestLogger(t)
	extractor := documents.NewExtractor(config.DocumentsConfig{TempDir: t.TempDir()}, log)
	fetcher := &stubFetcher{doc: &eam.Document{Code: "DOC-1", Name: "DOC-1.txt", Content: []byte("Quarterly pump service procedure")}}
	// a nil *recordingWriter must not become a non-nil interface
	if writer == nil {
		return NewHandler(LoadConfig(), extractor, fetcher, fake, nil, log)
	}
	return NewHandler(LoadConfig(), extractor, fetcher, fake, writer, log)
}

func scheduleModel() *llm.Fake {
	return &llm.Fake{Fn: func(p *prompt.Rendered) (string, error) {
		return "```json\n" + scheduleJSON + "\n```", nil
	}}
}

func TestHandler_Execute_ExtractOnly(t *testing.T) {
	fake := scheduleModel()
	h := newHandler(t, fake, nil)

	out, err := h.Execute(context.Background(), &Input{DocumentCode: "DOC-1"})
	require.NoError(t, err)
	assert.Equal(t, "PM-PUMP-Q", out.ExtractedData.Code)
	assert.Len(t, out.ExtractedData.TaskPlans[0].Checklist, 2)
	assert.Contains(t, fake.Calls[0].Prompt.Human, "Quarterly pump service procedure")

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "created_in_eam")
}

func TestHandler_Execute_CreateInEAM(t *testing.T) {
	writer := &recordingWriter{}
	h := newHandler(t, scheduleModel(), writer)

	out, err := h.Execute(context.Background(), &Input{DocumentCode: "DOC-1", CreateInEAM: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"schedule:PM-PUMP-Q", "task:TP-1", "checklist:CL-1", "checklist:CL-2"}, writer.calls)
	require.Len(t, out.CreatedInEAM, 1)
	assert.Equal(t, "TP-1", out.CreatedInEAM[0].TaskCode)
	require.NotNil(t, out.Schedule)
	assert.Equal(t, "ok", out.Schedule.APIResponse)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   *Input
		writer  *recordingWriter
		code    apperrors.ErrorCode
		message string
	}{
		{
			name:    "upload must be a pdf",
			input:   &Input{Upload: &documents.Upload{Name: "notes.txt", Body: strings.NewReader("x")}},
			code:    apperrors.ErrCodeInvalidInput,
			message: "Only PDF files are supported",
		},
		{
			name:    "no document",
			input:   &Input{},
			code:    apperrors.ErrCodeInvalidInput,
			message: "No document provided",
		},
		{
			name:    "create without eam client",
			input:   &Input{DocumentCode: "DOC-1", CreateInEAM: true},
			code:    apperrors.ErrCodeConfigurationMissing,
			message: "EAM client is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := scheduleModel()
			h := newHandler(t, fake, tt.writer)

			_, err := h.Execute(context.Background(), tt.input)
			stdErr := apperrors.AsStandardError(err)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.message, stdErr.Message)
			assert.Zero(t, fake.CallCount())
		})
	}
}

func TestHandler_Execute_InvalidModelOutput(t *testing.T) {
	fake := &llm.Fake{Fn: func(*prompt.Rendered) (string, error) {
		return `{"code": "PM-PUMP-Q", "description": "x", "duration": "four", "task_plans": []}`, nil
	}}
	h := newHandler(t, fake, nil)

	_, err := h.Execute(context.Background(), &Input{DocumentCode: "DOC-1"})
	assert.Equal(t, apperrors.ErrCodeSchemaValidation, apperrors.AsStandardError(err).Code)
}
