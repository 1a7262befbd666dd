package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stencilgrid/internal/app"
	"github.com/vk/stencilgrid/internal/report"
)

func TestParse_PathSources(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"long flag", []string{"--grid", "a.hcl", "b.hcl"}, "a.hcl"},
		{"short flag", []string{"-g", "a.hcl"}, "a.hcl"},
		{"positional", []string{"dir/"}, "dir/"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, exit)
			assert.Equal(t, tc.want, cfg.GridPath)
		})
	}
}

func TestParse_AllFlags(t *testing.T) {
	cfg, _, err := Parse([]string{
		"--log-level", "DEBUG", "--log-format", "json",
		"--format", "YAML", "--output", "out.yaml", "--color", "never",
		"--scan", "walk", "--workers", "3", "--healthcheck-port", "8081",
		"--publish-url", "ws://localhost:3000/socket.io/", "--publish-namespace", "/grids",
		"--publish-event", "solution", "--publish-ack", "stored", "--publish-timeout", "2s",
		"sol.hcl",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, report.YAML, cfg.Format)
	assert.Equal(t, "out.yaml", cfg.OutputPath)
	assert.Equal(t, app.ColorNever, cfg.Color)
	assert.Equal(t, app.ScanWalk, cfg.Scan)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, 8081, cfg.HealthcheckPort)
	assert.Equal(t, "/grids", cfg.Publish.Namespace)
	assert.Equal(t, "solution", cfg.Publish.Event)
	assert.Equal(t, "stored", cfg.Publish.AckEvent)
	assert.Equal(t, 2*time.Second, cfg.Publish.Timeout)
}

func TestParse_UsageWithoutPath(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "-publish-url")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown flag", []string{"--nope"}, "flag provided but not defined"},
		{"log format", []string{"--log-format", "xml", "a.hcl"}, "invalid log format"},
		{"log level", []string{"--log-level", "loud", "a.hcl"}, "invalid log level"},
		{"report format", []string{"--format", "csv", "a.hcl"}, "unknown report format"},
		{"scan mode", []string{"--scan", "maybe", "a.hcl"}, "invalid scan mode"},
		{"publish url", []string{"--publish-url", "mailto:x", "a.hcl"}, "invalid publish settings"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}
