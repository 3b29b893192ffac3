package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warning "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("NODE_ENV", "")
	assert.Equal(t, "local", Environment())

	t.Setenv("NODE_ENV", "production")
	assert.Equal(t, "production", Environment())

	t.Setenv("ENVIRONMENT", "staging")
	assert.Equal(t, "staging", Environment())
}

func TestInstruments_NilSafe(t *testing.T) {
	var inst *Instruments
	assert.NotNil(t, inst.Tracer("plantnet"))
	assert.NotNil(t, inst.Meter("plantnet"))
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "bogus")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	s := SettingsFromEnv()
	assert.Equal(t, ExporterOTLP, s.Exporter)
	assert.Equal(t, "text", s.LogFormat)
	assert.False(t, s.OTLPInsecure)

	t.Setenv("OTEL_TRACES_EXPORTER", "None")
	assert.Equal(t, ExporterNone, SettingsFromEnv().Exporter)
}

func TestInitWithSettings_CollectsCounters(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	inst, shutdown, err := InitWithSettings(ctx, "plantnet-test", Settings{
		Environment: "test",
		LogLevel:    slog.LevelInfo,
		LogFormat:   "json",
		Exporter:    ExporterNone,
		LogOutput:   &buf,
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, shutdown(ctx)) }()

	counter, err := inst.Meter("plantnet.test").Int64Counter("plants.service.created")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, inst.MetricReader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "plants.service.created", rm.ScopeMetrics[0].Metrics[0].Name)

	inst.Logger.Info("ready")
	assert.Contains(t, buf.String(), `"service":"plantnet-test"`)
}
