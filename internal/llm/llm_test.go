package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/prompt"
)

type scriptedModel struct {
	responses []error
	answer    string
	calls     int
	messages  [][]llms.MessageContent
	temps     []float64
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}
	m.temps = append(m.temps, opts.Temperature)
	m.messages = append(m.messages, messages)

	idx := m.calls
	m.calls++
	if idx < len(m.responses) && m.responses[idx] != nil {
		return nil, m.responses[idx]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, text string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, text, options...)
}

func TestValidate(t *testing.T) {
	for _, name := range ValidNames {
		assert.NoError(t, Validate(name), name)
	}

	err := Validate("claude-local")
	require.Error(t, err)
	assert.Equal(t, "Invalid LLM name: claude-local", apperrors.AsStandardError(err).Message)

	err = Validate("")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigurationMissing, apperrors.AsStandardError(err).Code)
	assert.Equal(t, "LLM_NAME not found in environment variables.", apperrors.AsStandardError(err).Message)
}

func TestNew_OpenAIRequiresKeyOrBaseURL(t *testing.T) {
	_, err := New(config.LLMConfig{Name: "gpt-4o"}, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigurationMissing, apperrors.AsStandardError(err).Code)
}

func TestComplete_MessagesAndTemperatureOverride(t *testing.T) {
	model := &scriptedModel{answer: "  Good\n"}
	c := NewClient(model, Options{Name: "gpt-4o-mini", Temperature: 0.7}, logger.NewTestLogger(t))

	out, err := c.Complete(context.Background(), &prompt.Rendered{System: "sys", Human: "hi"}, WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, "Good", out)

	require.Len(t, model.messages, 1)
	require.Len(t, model.messages[0], 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0][0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[0][1].Role)
	assert.Equal(t, 0.0, model.temps[0])

	_, err = c.Complete(context.Background(), &prompt.Rendered{Human: "hi"})
	require.NoError(t, err)
	assert.Len(t, model.messages[1], 1)
	assert.Equal(t, 0.7, model.temps[1])
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	boom := errors.New("connection reset")
	model := &scriptedModel{responses: []error{boom, boom}, answer: "B-102"}
	c := NewClient(model, Options{Name: "tgi", MaxRetries: 5, BaseBackoff: time.Millisecond}, logger.NewTestLogger(t))

	out, err := c.Complete(context.Background(), &prompt.Rendered{Human: "next?"})
	require.NoError(t, err)
	assert.Equal(t, "B-102", out)
	assert.Equal(t, 3, model.calls)
}

func TestComplete_GivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("503 service unavailable")
	model := &scriptedModel{responses: []error{boom, boom, boom, boom}}
	c := NewClient(model, Options{Name: "tgi", MaxRetries: 2, BaseBackoff: time.Millisecond}, logger.NewTestLogger(t))

	_, err := c.Complete(context.Background(), &prompt.Rendered{Human: "next?"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeLLMCallFailed, apperrors.AsStandardError(err).Code)
	assert.Equal(t, 3, model.calls)
}

func TestComplete_DeadlineMapsToTimeout(t *testing.T) {
	model := &scriptedModel{responses: []error{context.DeadlineExceeded}}
	c := NewClient(model, Options{Name: "gemma", MaxRetries: 3}, logger.NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := c.Complete(ctx, &prompt.Rendered{Human: "next?"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeLLMTimeout, apperrors.AsStandardError(err).Code)
	assert.Equal(t, 1, model.calls)
}

func TestNew_OpenAICompatibleServer(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"created": 1720000000,
			"model": "tgi",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Good"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 1, "total_tokens": 11}
		}`))
	}))
	defer srv.Close()

	c, err := New(config.LLMConfig{Name: "tgi", BaseURL: srv.URL + "/v1", Timeout: 5, Temperature: 0.1}, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "tgi", c.Name())

	out, err := c.Complete(context.Background(), &prompt.Rendered{Human: "Field to Predict: state"}, WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, "Good", out)
	assert.Equal(t, "tgi", body["model"])
}

func TestStripJSONFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```  ", `{"a":1}`},
		{"```JSON\n[1,2]\n```", `[1,2]`},
		{"  ```json{\"a\":1}```", `{"a":1}`},
		{"Here it is: {\"a\":1}", `Here it is: {"a":1}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripJSONFences(tc.in), tc.in)
	}
}

func TestFake(t *testing.T) {
	f := &Fake{Fn: func(p *prompt.Rendered) (string, error) { return "ok:" + p.Human, nil }}
	out, err := f.Complete(context.Background(), &prompt.Rendered{Human: "x"}, WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, "ok:x", out)
	require.Equal(t, 1, f.CallCount())
	require.NotNil(t, f.Calls[0].Temperature)
	assert.Equal(t, 0.0, *f.Calls[0].Temperature)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Complete(context.Background(), &prompt.Rendered{Human: "x"})
	require.Error(t, err)
	assert.Equal(t, "LLM_NAME not found in environment variables.", apperrors.AsStandardError(err).Message)

	_, err = Unavailable{Err: Validate("gpt-5")}.Complete(context.Background(), &prompt.Rendered{Human: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeLLMInvalidModel, apperrors.AsStandardError(err).Code)
	assert.Equal(t, "Invalid LLM name: gpt-5", apperrors.AsStandardError(err).Message)
}
