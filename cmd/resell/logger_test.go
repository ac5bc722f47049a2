package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := zerolog.New(newLevelRouter(&out, &errOut, "json"))

	logger.Info().Msg("started")
	logger.Warn().Msg("slow")
	logger.Error().Msg("broken")

	assert.Contains(t, out.String(), `"message":"started"`)
	assert.Contains(t, out.String(), `"message":"slow"`)
	assert.NotContains(t, out.String(), "broken")
	assert.Contains(t, errOut.String(), `"level":"error"`)
	assert.NotContains(t, errOut.String(), "started")
}

func TestLevelRouterConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := zerolog.New(newLevelRouter(&out, &errOut, "console"))

	logger.Info().Str("addr", ":8080").Msg("server started")

	assert.Contains(t, out.String(), "server started")
	assert.Contains(t, out.String(), "addr=")
	assert.NotContains(t, out.String(), "{")
	assert.Empty(t, errOut.String())
}

func TestSetupLoggerRejectsBadLevel(t *testing.T) {
	_, err := setupLogger("loud", "json", "")
	assert.Error(t, err)
}
