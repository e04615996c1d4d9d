package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "Production", ""} {
		log, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, log.SugaredLogger)
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("component", "store")

	log.Info("seeded", "rows", 3)
	log.Warn("bad date", "raw", "31.02.2025")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "seeded", entries[0].Message)
	assert.Equal(t, "store", entries[0].ContextMap()["component"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestNopDoesNotPanic(t *testing.T) {
	log := NewNop()
	log.Debug("x")
	log.Error("y", "err", "z")
	log.Sync()
}
