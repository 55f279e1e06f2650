package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(TracerConfig{
		ServiceName: "routerd-test",
		Enabled:     false,
	})
	require.NoError(t, err)
	require.NotNil(t, tracer)
	assert.Nil(t, tracer.provider)

	ctx, span := tracer.StartSpan(context.Background(), "lookup")
	require.NotNil(t, span)
	span.End()

	assert.NoError(t, tracer.Shutdown(ctx))
}

func TestNewTracer_EnabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	cfg := TracerConfig{
		Enabled:      true,
		ServiceName:  "routerd-test",
		SamplingRate: 0.5,
	}
	tracer, err := NewTracer(cfg)
	require.NoError(t, err)
	require.NotNil(t, tracer)
	require.NotNil(t, tracer.provider)

	ctx, span := tracer.StartSpan(context.Background(), "lookup")
	require.NotNil(t, span)
	span.End()

	// No exporter is wired without an endpoint, so shutdown has nothing
	// to flush.
	assert.NoError(t, tracer.Shutdown(ctx))
}

func TestCreateSampler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rate float64
	}{
		{"always", 1.0},
		{"above one clamps to always", 2.5},
		{"never", 0},
		{"negative clamps to never", -1},
		{"ratio", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotNil(t, createSampler(tt.rate))
		})
	}
}

func TestSpanFromContext(t *testing.T) {
	t.Parallel()

	// An empty context yields the noop span.
	span := SpanFromContext(context.Background())
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid())
}
