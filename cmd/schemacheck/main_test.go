package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemacheck"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "schemacheck version "+schemacheck.Version+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	dataPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"required":["id"]}`), 0o644))
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"id":1}`), 0o644))

	out, err := execute(t, "validate", "--schema", schemaPath, "--format", "text", "--engine", "subset", dataPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (subset)")

	require.NoError(t, os.WriteFile(dataPath, []byte(`{}`), 0o644))
	out, err = execute(t, "validate", "--schema", schemaPath, "--format", "text", "--engine", "draft7", dataPath)
	var exit exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.code)
	assert.Contains(t, out, "is invalid (draft7)")
}

func TestValidateCommand_BadEngine(t *testing.T) {
	_, err := execute(t, "validate", "--schema", "s.json", "--engine", "draft4", "d.json")
	assert.Error(t, err)
	assert.NotErrorAs(t, err, new(exitError))
}

func TestValidateCommand_BadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("engine:\n  default: nope\n"), 0o644))

	_, err := execute(t, "validate", "--config", cfg, "--schema", "s.json", "--engine", "subset", "d.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.default")
}
