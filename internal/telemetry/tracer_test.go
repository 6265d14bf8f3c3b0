package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTracer_Disabled(t *testing.T) {
	shutdown, err := SetupTracer(context.Background(), "homechef", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func Test_stripScheme(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"otel-collector:4317", "otel-collector:4317"},
		{"http://otel-collector:4317", "otel-collector:4317"},
		{"https://otel-collector:4317", "otel-collector:4317"},
	}
	for _, test := range tests {
		t.Run(test.endpoint, func(t *testing.T) {
			assert.Equal(t, test.want, stripScheme(test.endpoint))
		})
	}
}
