package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	UseLogger(zap.New(core))

	Warn("second owner granted", "community_id", uint(7), "actor_id", uint(3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "second owner granted", entries[0].Message)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.EqualValues(t, 7, entries[0].ContextMap()["community_id"])
}

func TestInit_Development(t *testing.T) {
	require.NoError(t, Init("development"))
	assert.NotNil(t, GetLogger())
	_ = Close()
}
