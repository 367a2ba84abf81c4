package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func memoryConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paramcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: memory
log_level: none
cache:
  max_cache_size: 4
  ttl: 1h
parameters:
  db/host: localhost
  db/port: "5432"
`), 0o600))
	return path
}

func TestGetServesSecondRoundFromCache(t *testing.T) {
	out, err := run(t, "--config", memoryConfig(t), "get", "db/host", "db/port", "--repeat", "2", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "localhost")
	assert.Contains(t, out, "5432")
	assert.Equal(t, 2, strings.Count(out, "fetched"))
	assert.Equal(t, 2, strings.Count(out, "cache "))
}

func TestGetForceRefresh(t *testing.T) {
	out, err := run(t, "--config", memoryConfig(t), "get", "db/host", "--force-refresh", "--repeat", "2")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "fetched"))
	assert.Equal(t, 1, strings.Count(out, "cache "))
}

func TestGetMissingParameter(t *testing.T) {
	out, err := run(t, "--config", memoryConfig(t), "get", "db/host", "nope", "--reveal")
	assert.ErrorContains(t, err, "1 of 2 lookups failed")
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "localhost")
}

func TestGetMasksValuesByDefault(t *testing.T) {
	out, err := run(t, "--config", memoryConfig(t), "get", "db/host")
	require.NoError(t, err)
	assert.Contains(t, out, "loca*****")
	assert.NotContains(t, out, "localhost")
}

func TestPutRequiresWritableSource(t *testing.T) {
	_, err := run(t, "--config", memoryConfig(t), "put", "a", "1")
	assert.ErrorContains(t, err, "read-only")
}

func TestPutThenGetSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "params.db")
	out, err := run(t, "--source", "sqlite", "--sqlite-path", db, "--log-level", "none", "put", "feature", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "stored feature (version 1)")

	out, err = run(t, "--source", "sqlite", "--sqlite-path", db, "--log-level", "none", "get", "feature", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "on")
	assert.Contains(t, out, "fetched")
}

func TestInvalidFlags(t *testing.T) {
	_, err := run(t, "--source", "carrier-pigeon", "get", "a")
	assert.ErrorContains(t, err, "unknown source")

	_, err = run(t, "--ttl", "soon", "get", "a")
	assert.Error(t, err)
}

func TestExecuteReportsFailure(t *testing.T) {
	var stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", memoryConfig(t), "get", "nope"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Equal(t, 1, execute(context.Background(), cmd, &stderr))
	assert.Contains(t, stderr.String(), "1 of 1 lookups failed")

	stderr.Reset()
	cmd = newRootCommand()
	cmd.SetArgs([]string{"--config", memoryConfig(t), "get", "db/host"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Equal(t, 0, execute(context.Background(), cmd, &stderr))
	assert.Empty(t, stderr.String())
}
