package internal

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	level, ok := ParseLogLevel(" debug ")
	assert.True(t, ok)
	assert.Equal(t, LogLevelDebug, level)

	_, ok = ParseLogLevel("loud")
	assert.False(t, ok)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	l := NewLogger("Runner", LogLevelInfo)
	l.Info("started %d", 1)
	l.Trace("step %d", 2)

	assert.Equal(t, "[Runner] started 1\n", buf.String())
	assert.True(t, l.Enabled(LogLevelWarn))
	assert.False(t, l.Enabled(LogLevelDebug))
}

func TestNewDefaultLoggerReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "TRACE")
	assert.Equal(t, LogLevelTrace, NewDefaultLogger("x").GetLevel())
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, LogLevelInfo, NewDefaultLogger("x").GetLevel())
}
