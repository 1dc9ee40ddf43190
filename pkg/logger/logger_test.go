package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingWorksWithoutSetup(t *testing.T) {
	// Must not panic before SetupLogger ever runs
	assert.NotPanics(t, func() {
		Info("info %d", 1)
		Warning("warning %d", 2)
		Error("error %d", 3)
	})
}

func TestLevelsWritePrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	old := WarningLogger
	WarningLogger = log.New(&buf, "WARNING: ", 0)
	defer func() { WarningLogger = old }()

	Warning("stock low for %s", "O-")
	assert.Equal(t, "WARNING: stock low for O-\n", buf.String())
}
