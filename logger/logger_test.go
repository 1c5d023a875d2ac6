package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Init("debug", "production")
	defer Init("info", "test")

	Log.WithField("case_id", "abc").Info("case created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "case created", entry["msg"])
	assert.Equal(t, "abc", entry["case_id"])
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}

func TestInitFallsBackToInfo(t *testing.T) {
	Init("not-a-level", "development")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestSecurity(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Init("info", "production")
	defer Init("info", "test")

	Security("LOGIN_FAILED", "user-1", "bad password")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "LOGIN_FAILED", entry["security"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "warning", entry["level"])
}
