package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/diewo77/go-retail/internal/config"
)

func TestNewLogger(t *testing.T) {
	for _, dev := range []bool{true, false} {
		log, err := NewLogger(dev)
		require.NoError(t, err)
		log.Info("hello")
	}
}

func TestSetupTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupLoggingWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupLogging(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestBridgeLoggerKeepsBaseCore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := BridgeLogger(zap.New(core))
	log.Info("order placed", zap.String("order_number", "CMD-1"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "CMD-1", logs.All()[0].ContextMap()["order_number"])
}
