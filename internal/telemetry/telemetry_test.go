// internal/telemetry/telemetry_test.go

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupNoopWithoutEndpoint(t *testing.T) {
	t.Setenv("DONORLINK_OTEL_ENDPOINT", "")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	t.Setenv("DONORLINK_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("DONORLINK_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
