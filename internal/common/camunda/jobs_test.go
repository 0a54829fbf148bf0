package camunda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eam-assistant/internal/common/errors"
)

type jobInput struct {
	DocumentCode string `json:"documentCode"`
	CreateInEAM  bool   `json:"create_in_eam"`
}

func TestDecodeVariables(t *testing.T) {
	in, err := DecodeVariables[jobInput](`{"documentCode":"DOC-7","create_in_eam":true,"other":1}`)
	require.NoError(t, err)
	assert.Equal(t, "DOC-7", in.DocumentCode)
	assert.True(t, in.CreateInEAM)

	_, err = DecodeVariables[jobInput](`{"documentCode":`)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.AsStandardError(err).Code)
}
