package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gridview.log")
	logger, err := New(Options{Path: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("grid loaded", zap.Int("rows", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"grid loaded"`)
	assert.Contains(t, out, `"rows":3`)
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridview.log")
	logger, err := New(Options{Path: path, Verbose: true})
	require.NoError(t, err)

	logger.Debug("filters applied")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "filters applied")
}
