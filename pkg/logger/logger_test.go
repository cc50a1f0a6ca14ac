package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	require.Error(t, Init("chatty", false))
	require.NoError(t, Init("info", true))
}

func TestWithCarriesFieldsAndRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	ctx := WithRequestID(context.Background(), "req-1")
	With(String("bom_id", "b1")).Warn(ctx, "scaled", Int("items", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "b1", fields["bom_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, 3, fields["items"])
}
