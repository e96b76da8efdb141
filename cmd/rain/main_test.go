package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoglobals // test binary path is set in TestMain
var testBinaryPath string

// TestMain builds the CLI binary once for the entire package and reuses it.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "rain-test-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1) //nolint:gocritic // Mkdir failed, nothing to cleanup
	}
	defer os.RemoveAll(dir)

	bin := filepath.Join(dir, "rain-test")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build test binary: %v\nOutput: %s\n", err, string(out))
		os.Exit(1) //nolint:gocritic // Binary failed, nothing to cleanup
	}
	testBinaryPath = bin

	code := m.Run()
	os.Exit(code)
}

func testdata(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

// newCmd runs the binary with HOME pointed at an empty directory so the user's own
// config and themes never leak into a test.
func newCmd(t *testing.T, env []string, args ...string) *exec.Cmd {
	t.Helper()
	if testBinaryPath == "" {
		t.Fatalf("test binary not built")
	}
	cmd := exec.Command(testBinaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "RAIN_THEME=", "RAIN_REDUCED_MOTION=")
	cmd.Env = append(cmd.Env, env...)
	return cmd
}

func run(t *testing.T, env []string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newCmd(t, env, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func TestCLI_HelpOutput(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "root help",
			args:     []string{"--help"},
			contains: []string{"rain", "glyph columns", "simulate", "config", "themes", "--reduced-motion", "--seed", "--log-file"},
		},
		{
			name:     "simulate help",
			args:     []string{"simulate", "--help"},
			contains: []string{"--duration", "--json", "--hide-after", "--nudge", "--max-columns"},
		},
		{
			name:     "config help",
			args:     []string{"config", "--help"},
			contains: []string{"show", "init", "validate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := newCmd(t, nil, tt.args...).CombinedOutput()
			require.NoError(t, err)
			for _, expected := range tt.contains {
				assert.Contains(t, string(output), expected)
			}
		})
	}
}

func TestCLI_Version(t *testing.T) {
	stdout, _, err := run(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
	assert.Contains(t, stdout, "commit: none")
}

func TestCLI_ConfigShow(t *testing.T) {
	t.Run("defaults as yaml", func(t *testing.T) {
		stdout, _, err := run(t, nil, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, stdout, "max_columns: 80")
		assert.Contains(t, stdout, "initial_columns: 40")
		assert.Contains(t, stdout, "spawn_interval: 300ms")
		assert.Contains(t, stdout, "theme: matrix")
	})

	t.Run("file, env and flags layered as json", func(t *testing.T) {
		stdout, _, err := run(t,
			[]string{"RAIN_REDUCED_MOTION=true", "RAIN_THEME=katakana"},
			"config", "show", "--json", "--config", testdata("config_fast.yaml"), "--max-columns", "30",
		)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.EqualValues(t, 30, got["max_columns"], "flag beats file")
		assert.EqualValues(t, 5, got["initial_columns"], "file beats defaults")
		assert.Equal(t, "katakana", got["theme"], "env beats file")
		assert.Equal(t, true, got["reduced_motion"])
		assert.Equal(t, "20ms", got["spawn_interval"])
	})

	t.Run("flag override that breaks validation", func(t *testing.T) {
		_, stderr, err := run(t, nil, "config", "show", "--initial-columns", "100")
		require.Error(t, err)
		assert.Contains(t, stderr, "initial_columns")
	})
}

func TestCLI_ConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	stdout, _, err := run(t, nil, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default config")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	stdout, _, err = run(t, nil, "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")

	// A second init refuses to overwrite.
	_, stderr, err := run(t, nil, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "already exists")
}

func TestCLI_ConfigValidateRejectsBadFile(t *testing.T) {
	_, stderr, err := run(t, nil, "config", "validate", testdata("config_invalid.yaml"))
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid config")
	assert.Contains(t, stderr, "max_length")
	assert.Contains(t, stderr, "initial_columns")
}

func TestCLI_ThemesList(t *testing.T) {
	stdout, stderr, err := run(t, nil, "themes", "list", "--dir", testdata("themes"))
	require.NoError(t, err)
	for _, name := range []string{"NAME", "matrix", "katakana", "binary", "signature", "amber"} {
		assert.Contains(t, stdout, name)
	}
	assert.NotContains(t, stdout, "ghost", "hidden directories are skipped")
	assert.NotContains(t, stdout, "broken")
	assert.Contains(t, stderr, "broken.json", "invalid theme files are reported")
}

func TestCLI_UnknownTheme(t *testing.T) {
	_, stderr, err := run(t, nil, "simulate", "--duration", "100ms", "--theme", "nope")
	require.Error(t, err)
	assert.Contains(t, stderr, "theme not found")
}

func TestCLI_Simulate(t *testing.T) {
	t.Run("json report", func(t *testing.T) {
		stdout, _, err := run(t, nil,
			"simulate", "--json", "--duration", "500ms", "--seed", "42", "--config", testdata("config_fast.yaml"),
		)
		require.NoError(t, err)

		var report struct {
			Duration string `json:"duration"`
			Cadence  string `json:"cadence"`
			PeakLive int    `json:"peak_live"`
			Mounts   int    `json:"mounts"`
			Unmounts int    `json:"unmounts"`
			Final    struct {
				Capacity int `json:"capacity"`
				Spawned  int `json:"spawned"`
				Expired  int `json:"expired"`
			} `json:"final"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, "normal", report.Cadence)
		assert.Equal(t, 12, report.Final.Capacity)
		assert.LessOrEqual(t, report.PeakLive, 12)
		assert.GreaterOrEqual(t, report.PeakLive, 5)
		assert.Equal(t, report.Mounts, report.Unmounts)
		assert.Positive(t, report.Final.Expired)
		assert.NotEmpty(t, report.Duration)
	})

	t.Run("text report with reduced motion", func(t *testing.T) {
		stdout, _, err := run(t, nil,
			"simulate", "--duration", "300ms", "--reduced-motion", "--config", testdata("config_fast.yaml"),
		)
		require.NoError(t, err)
		assert.Contains(t, stdout, "SIGNATURE RAIN SIMULATION")
		assert.Contains(t, stdout, "reduced cadence")
	})

	t.Run("rejects a zero duration", func(t *testing.T) {
		_, stderr, err := run(t, nil, "simulate", "--duration", "0s")
		require.Error(t, err)
		assert.Contains(t, stderr, "duration must be positive")
	})
}
