package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartServiceSpan(context.Background(), "messaging", "SendMessage")
	EndSpan(span, errors.New("boom"))
	assert.Empty(t, TraceIDFromContext(ctx), "noop tracer should not produce a valid trace id")
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(NotificationsFailed.WithLabelValues("support"))
	NotificationsFailed.WithLabelValues("support").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(NotificationsFailed.WithLabelValues("support")))
}
