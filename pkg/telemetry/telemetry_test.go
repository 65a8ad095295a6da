package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/macropower/folio/pkg/telemetry"
)

//nolint:paralleltest // Setup installs a global tracer provider.
func TestSetup(t *testing.T) {
	t.Run("disabled without endpoint", func(t *testing.T) {
		t.Setenv(telemetry.EnvEndpoint, "")
		t.Setenv(telemetry.EnvTracesEndpoint, "")

		p, err := telemetry.Setup(t.Context())
		require.NoError(t, err)
		assert.False(t, p.Enabled())
		require.NoError(t, p.Shutdown(t.Context()))
	})

	t.Run("exports spans", func(t *testing.T) {
		exp := tracetest.NewInMemoryExporter()

		p, err := telemetry.Setup(t.Context(), telemetry.WithExporter(exp))
		require.NoError(t, err)
		assert.True(t, p.Enabled())

		_, span := otel.Tracer("test").Start(t.Context(), "work")
		span.End()

		require.NoError(t, p.Flush(t.Context()))

		spans := exp.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "work", spans[0].Name)
		require.NoError(t, p.Shutdown(t.Context()))
	})

	t.Run("endpoint from environment", func(t *testing.T) {
		t.Setenv(telemetry.EnvEndpoint, "localhost:4317")

		p, err := telemetry.Setup(t.Context(), telemetry.WithInsecure(true))
		require.NoError(t, err)
		assert.True(t, p.Enabled())
		require.NoError(t, p.Shutdown(t.Context()))
	})
}
