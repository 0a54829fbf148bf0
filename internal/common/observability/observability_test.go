package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"eam-assistant/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RecordsOperationsWithoutJaeger(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := New(Options{ServiceName: "eam-assistant-test", Registerer: reg}, logger.NewTestLogger(t))
	defer obs.Shutdown(context.Background())

	ctx, span := obs.StartSpan(context.Background(), "predict-attribute")
	obs.RecordOperation(ctx, "predict-attribute", "success", 120*time.Millisecond)
	span.End()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "operations_processed") {
			found = true
		}
	}
	assert.True(t, found, "expected operations_processed metric to be exported")
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	_, span := obs.StartSpan(context.Background(), "noop")
	span.End()
	obs.RecordOperation(context.Background(), "noop", "success", time.Second)
	obs.Shutdown(context.Background())
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	generated := RequestID(context.Background())
	assert.Len(t, generated, 36)
	assert.NotEqual(t, generated, RequestID(context.Background()))
}
