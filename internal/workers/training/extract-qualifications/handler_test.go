package extractqualifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/documents"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/models"
	"eam-assistant/internal/prompt"
)

const qualificationsJSON = "```json\n" + `{"qualifications": [
  {"qualification_code": "QUAL-FORK-01", "qualification_description": "Certified forklift operator"},
  {"qualification_code": "QUAL-ELEC-LV01", "qualification_description": "Low voltage electrical work"}
]}` + "\n```"

type qualWriter struct {
	codes []string
}

func (w *qualWriter) CreateQualification(_ context.Context, q models.Qualification) (interface{}, error) {
	w.codes = append(w.codes, q.QualificationCode)
	if q.QualificationCode == "QUAL-ELEC-LV01" {
		return nil, apperrors.NewEAMRequestFailedError("create qualification", errors.New("timeout"))
	}
	return map[string]interface{}{"QUALIFICATIONCODE": q.QualificationCode}, nil
}

func newHandler(t *testing.T, fake *llm.Fake, w QualificationWriter) *Handler {
	log := logger.NewTestLogger(t)
	extractor := documents.NewExtractor(config.DocumentsConfig{TempDir: t.TempDir()}, log)
	return NewHandler(LoadConfig(), extractor, nil, fake, w, log)
}

func TestHandler_Execute_Upload(t *testing.T) {
	fake := &llm.Fake{Fn: func(p *prompt.Rendered) (string, error) {
		assert.Contains(t, p.Human, "Forklift training manual")
		return qualificationsJSON, nil
	}}
	w := &qualWriter{}
	h := newHandler(t, fake, w)

	out, err := h.Execute(context.Background(), &Input{
		Upload:                    &documents.Upload{Name: "manual.txt", Body: strings.NewReader("Forklift training manual")},
		CreateQualificationsInEAM: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Summary.TotalQualifications)
	assert.Equal(t, []string{"QUAL-FORK-01", "QUAL-ELEC-LV01"}, w.codes)

	require.Len(t, out.CreatedInEAM, 2)
	assert.Empty(t, out.CreatedInEAM[0].Error)
	assert.Equal(t, "Failed to create qualification: timeout", out.CreatedInEAM[1].Error)
}

func TestHandler_Execute_NoDocument(t *testing.T) {
	h := newHandler(t, &llm.Fake{}, nil)

	_, err := h.Execute(context.Background(), &Input{})
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
	assert.Equal(t, "No document_code or training_manual_file provided", stdErr.Message)
}

func TestHandler_Execute_CodeWithoutEAM(t *testing.T) {
	h := newHandler(t, &llm.Fake{}, nil)

	_, err := h.Execute(context.Background(), &Input{DocumentCode: "TM-1"})
	assert.Equal(t, apperrors.ErrCodeConfigurationMissing, apperrors.AsStandardError(err).Code)
}

func TestHandler_Execute_NoModel(t *testing.T) {
	log := logger.NewTestLogger(t)
	extractor := documents.NewExtractor(config.DocumentsConfig{TempDir: t.TempDir()}, log)
	h := NewHandler(LoadConfig(), extractor, nil, nil, nil, log)

	_, err := h.Execute(context.Background(), &Input{Upload: &documents.Upload{Name: "m.md", Body: strings.NewReader("text")}})
	assert.Equal(t, "LLM_NAME not found in environment variables.", apperrors.AsStandardError(err).Message)
}

func TestHandler_Execute_NoQualifications(t *testing.T) {
	fake := &llm.Fake{Fn: func(*prompt.Rendered) (string, error) { return `{}`, nil }}
	h := newHandler(t, fake, nil)

	out, err := h.Execute(context.Background(), &Input{Upload: &documents.Upload{Name: "m.md", Body: strings.NewReader("text")}})
	require.NoError(t, err)
	assert.Zero(t, out.Summary.TotalQualifications)
	assert.NotNil(t, out.ExtractedData.Qualifications)
}
