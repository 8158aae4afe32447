package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		wantPath   string
		wantFormat string
		wantLevel  string
	}{
		{
			name:       "positional path",
			args:       []string{"pipelines/"},
			wantPath:   "pipelines/",
			wantFormat: "text",
			wantLevel:  "info",
		},
		{
			name:       "pipeline flag",
			args:       []string{"-pipeline", "build.hcl"},
			wantPath:   "build.hcl",
			wantFormat: "text",
			wantLevel:  "info",
		},
		{
			name:       "shorthand flag",
			args:       []string{"-p", "build.hcl"},
			wantPath:   "build.hcl",
			wantFormat: "text",
			wantLevel:  "info",
		},
		{
			name:       "flag wins over positional",
			args:       []string{"-pipeline", "a.hcl", "b.hcl"},
			wantPath:   "a.hcl",
			wantFormat: "text",
			wantLevel:  "info",
		},
		{
			name:       "log options",
			args:       []string{"-log-format", "json", "-log-level", "debug", "build.hcl"},
			wantPath:   "build.hcl",
			wantFormat: "json",
			wantLevel:  "debug",
		},
		{
			name:       "log options are case-insensitive",
			args:       []string{"-log-format", "JSON", "-log-level", "WARN", "build.hcl"},
			wantPath:   "build.hcl",
			wantFormat: "json",
			wantLevel:  "warn",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			config, exit, err := Parse(tc.args, &out)
			require.NoError(t, err)
			require.False(t, exit)
			require.NotNil(t, config)
			assert.Equal(t, tc.wantPath, config.PipelinePath)
			assert.Equal(t, tc.wantFormat, config.LogFormat)
			assert.Equal(t, tc.wantLevel, config.LogLevel)
		})
	}
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	config, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, config)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer
	config, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, config)
}

func TestParse_InvalidOptions(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-bogus"}},
		{name: "bad log format", args: []string{"-log-format", "xml", "build.hcl"}},
		{name: "bad log level", args: []string{"-log-level", "loud", "build.hcl"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(tc.args, &out)
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
