package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checklistSchema = `{
  "type": "object",
  "required": ["checklist_id", "description"],
  "properties": {
    "checklist_id": {"type": "string", "maxLength": 20},
    "description": {"type": "string", "maxLength": 80}
  }
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompile("checklist", checklistSchema)
	assert.Equal(t, "checklist", s.Name())

	res, err := s.Validate(map[string]interface{}{
		"checklist_id": "CHK-10",
		"description":  "Inspect belts",
	})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	res, err = s.Validate(map[string]interface{}{
		"checklist_id": "THIS-CODE-IS-FAR-TOO-LONG-FOR-EAM",
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
	assert.Contains(t, res.Summary(), "checklist_id")
}

func TestSchema_ValidateJSON(t *testing.T) {
	s := MustCompile("checklist", checklistSchema)

	res, err := s.ValidateJSON([]byte(`{"checklist_id":"A","description":"B"}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	_, err = s.ValidateJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)
}
