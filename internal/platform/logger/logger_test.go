package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production")
	log.Debug("hidden")
	log.Info("issued", "credential", "abc")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "issued", rec["msg"])
	assert.Equal(t, "credledger", rec["service"])
	assert.Equal(t, "production", rec["env"])
	assert.Equal(t, "abc", rec["credential"])
}

func TestLocalEnvironmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "local").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
