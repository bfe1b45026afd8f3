package observability

import (
	"testing"

	"github.com/smallbiznis/robobooks/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaultsServiceName(t *testing.T) {
	cfg := LoadConfig(config.Config{Environment: "development", AppVersion: " 1.2.3 ", LogLevel: "info"})
	assert.Equal(t, "robobooks", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.True(t, cfg.Debug())
	assert.True(t, cfg.Logger().IncludeStackOnError)
}

func TestLoadConfigProduction(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:           "quotes",
		Environment:       "production",
		LogLevel:          "info",
		OTelEnabled:       true,
		OTLPEndpoint:      "collector:4317",
		OTLPProtocol:      "grpc",
		OTelSamplingRatio: 0.5,
	})
	assert.False(t, cfg.Debug())

	tracingCfg := cfg.Tracing()
	assert.True(t, tracingCfg.Enabled)
	assert.Equal(t, "quotes", tracingCfg.ServiceName)
	assert.Equal(t, "collector:4317", tracingCfg.ExporterEndpoint)
	assert.InDelta(t, 0.5, tracingCfg.SamplingRatio, 1e-9)

	metricsCfg := cfg.Metrics()
	assert.True(t, metricsCfg.Enabled)
	assert.Equal(t, "grpc", metricsCfg.ExporterProtocol)
}

func TestDebugFromLogLevel(t *testing.T) {
	cfg := LoadConfig(config.Config{Environment: "production", LogLevel: "DEBUG"})
	assert.True(t, cfg.Debug())
}
