package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Setup("warn", "PROD", &buf)
	log.Info().Msg("hidden")
	log.Warn().Str("key", "value").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["message"])
	require.Equal(t, "value", line["key"])
	require.Equal(t, "warn", line["level"])
}

func TestSetupDefaultsToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Setup("nonsense", "DEV", &buf)
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	log.Info().Msg("console")
	require.Contains(t, buf.String(), "console")
}
