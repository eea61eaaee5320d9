package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frustumcull/batchgen/pkg/batch"
	"github.com/frustumcull/batchgen/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func sceneDir(t *testing.T, views map[string]string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BATCHGEN_WORKSPACE", t.TempDir())
	dir := t.TempDir()
	for name, content := range views {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir + string(filepath.Separator)
}

func TestGenerateCommand(t *testing.T) {
	dir := sceneDir(t, map[string]string{"A10.view": "-f 60\n"})
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("variants:\n  - flags: -x\n    suffix: o\n"), 0o644))

	stdout, _, err := execute(t, "generate",
		"--config", cfgPath,
		"--executable", "Tool",
		"--stats-dir", "../stats/",
		"--prim-in-leaf", "10",
		"--scene-dir", dir,
		"--view", "A10.view",
	)
	require.NoError(t, err)
	assert.Equal(t, "Tool -f 60 -q -c 10 -m ../stats/A10_o.stats -x\n", stdout)
}

func TestGeneratePresetLineCount(t *testing.T) {
	dir := sceneDir(t, map[string]string{"a.view": "-s a.obj", "b.view": "-s b.obj"})
	stdout, _, err := execute(t, "generate", "--scene-dir", dir, "--view", "a.view", "--view", "b.view")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, `Release\FrustumCulling.exe -s a.obj -q -c 10 -m ../stats/a_.stats -no-octant-test -no-plane-coherency -no-plane-masking`, lines[0])
	assert.Equal(t, `Release\FrustumCulling.exe -s b.obj -q -c 10 -m ../stats/b_olm.stats `, lines[9])
}

func TestGenerateMissingView(t *testing.T) {
	dir := sceneDir(t, map[string]string{"a.view": "-s a.obj"})
	stdout, _, err := execute(t, "generate", "--scene-dir", dir, "--view", "a.view", "--view", "gone.view")

	var readErr *batch.FileReadError
	require.True(t, errors.As(err, &readErr), "expected FileReadError, got %v", err)
	assert.Equal(t, 5, strings.Count(stdout, "\n"))
}

func TestGenerateMismatchedListsPrintsNothing(t *testing.T) {
	dir := sceneDir(t, map[string]string{"a.view": "-s a.obj"})
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
noOptimFlags: ["-a", "-b", "-c"]
noOptimFileSuffixes: ["", "a", "b", "c"]
`), 0o644))

	stdout, _, err := execute(t, "generate", "--config", cfgPath, "--scene-dir", dir, "--view", "a.view")
	var cfgErr *batch.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
	assert.Empty(t, stdout)
}

func TestPresetOutputLoadsAsConfig(t *testing.T) {
	sceneDir(t, nil)
	stdout, _, err := execute(t, "presets", "coherency")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "coherency.yaml")
	require.NoError(t, os.WriteFile(path, []byte(stdout), 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	got, err := cfg.Batch()
	require.NoError(t, err)

	want, err := batch.Preset("coherency")
	require.NoError(t, err)
	want.SceneDir = got.SceneDir
	assert.Equal(t, want, got)
}

func TestPresetsList(t *testing.T) {
	stdout, _, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, stdout, "octant\t7 views x 5 variants")
	assert.Contains(t, stdout, "coherency\t")
}

func TestViewsCommand(t *testing.T) {
	dir := sceneDir(t, map[string]string{"a.view": "-s a.obj\n-vf 60\n", "b.view": "-vf 30"})
	stdout, _, err := execute(t, "views", "--scene-dir", dir, "--view", "a.view", "--view", "b.view")
	require.NoError(t, err)
	assert.Contains(t, stdout, "VIEW")
	assert.Contains(t, stdout, "missing scene argument -s")
}

func TestRunCommand(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
	dir := sceneDir(t, map[string]string{"a.view": "-s a.obj"})
	logDir := t.TempDir()
	stdout, _, err := execute(t, "run",
		"--executable", "true",
		"--scene-dir", dir,
		"--view", "a.view",
		"--log-dir", logDir,
		"--timeout", "10s",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, ": 5 commands in ")

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "batchgen "))
}
