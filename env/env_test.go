package env

import (
	"testing"
	"time"

	"github.com/agentuity/go-paramcache/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	assert.Equal(t, "PARAMCACHE_MAX_CACHE_SIZE", Name("max-cache-size"))
	assert.Equal(t, "PARAMCACHE_TTL", Name("ttl"))
}

func TestFlagOrEnv(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("test-flag", "", "Test flag")

	cmd.Flags().Set("test-flag", "flag-value")
	assert.Equal(t, "flag-value", FlagOrEnv(cmd, "test-flag", "TEST_ENV", "default"))

	cmd = &cobra.Command{Use: "test"}
	cmd.Flags().String("test-flag", "", "Test flag")
	t.Setenv("TEST_ENV", "env-value")
	assert.Equal(t, "env-value", FlagOrEnv(cmd, "test-flag", "TEST_ENV", "default"))

	t.Setenv("TEST_ENV", "")
	assert.Equal(t, "default", FlagOrEnv(cmd, "test-flag", "TEST_ENV", "default"))
}

func TestFlagOrEnvChangedNonString(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("size", 1, "")
	t.Setenv("TEST_SIZE", "9")

	n, err := FlagOrEnvInt(cmd, "size", "TEST_SIZE", 1)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	require.NoError(t, cmd.Flags().Set("size", "4"))
	n, err = FlagOrEnvInt(cmd, "size", "TEST_SIZE", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	t.Setenv("TEST_BAD", "four")
	_, err = FlagOrEnvInt(&cobra.Command{}, "size", "TEST_BAD", 1)
	assert.Error(t, err)
}

func TestFlagOrEnvDuration(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("ttl", "", "")

	d, err := FlagOrEnvDuration(cmd, "ttl", "TEST_TTL", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	t.Setenv("TEST_TTL", "1d2h")
	d, err = FlagOrEnvDuration(cmd, "ttl", "TEST_TTL", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 26*time.Hour, d)

	require.NoError(t, cmd.Flags().Set("ttl", "soon"))
	_, err = FlagOrEnvDuration(cmd, "ttl", "TEST_TTL", time.Minute)
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	testCases := []struct {
		name      string
		flagValue string
		envValue  string
		expected  logger.LogLevel
	}{
		{"debug level via flag", "debug", "", logger.LevelDebug},
		{"debug level via env", "", "DEBUG", logger.LevelDebug},
		{"warn level via flag", "warn", "", logger.LevelWarn},
		{"error level via env", "", "ERROR", logger.LevelError},
		{"trace level via flag", "trace", "", logger.LevelTrace},
		{"flag wins over env", "none", "debug", logger.LevelNone},
		{"unknown falls back to info", "loud", "", logger.LevelInfo},
		{"default level", "", "", logger.LevelError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			cmd.Flags().String("log-level", "", "Log level")
			t.Setenv(logger.LevelEnvVar, tc.envValue)
			if tc.flagValue != "" {
				cmd.Flags().Set("log-level", tc.flagValue)
			}
			assert.Equal(t, tc.expected, LogLevel(cmd, "error"))
		})
	}
}

func TestNewLogger(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("log-format", "", "")
	cmd.Flags().Set("log-level", "warn")

	l := NewLogger(cmd, "info")
	assert.True(t, l.IsLevelEnabled(logger.LevelWarn))
	assert.False(t, l.IsLevelEnabled(logger.LevelInfo))

	cmd.Flags().Set("log-format", "json")
	assert.NotNil(t, NewLogger(cmd, "info"))
}

func TestExpand(t *testing.T) {
	vars := map[string]string{"HOST": "db.local", "EMPTY": ""}
	lookup := func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"${HOST}:5432", "db.local:5432"},
		{"${MISSING:-fallback}", "fallback"},
		{"${EMPTY:-fallback}", "fallback"},
		{"${MISSING}", "${MISSING}"},
		{"${}", "${}"},
		{"a ${HOST} b ${PORT:-6379}", "a db.local b 6379"},
		{"unterminated ${HOST", "unterminated ${HOST"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Expand(tt.in, lookup), tt.in)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("PARAMCACHE_TEST_EXPAND", "yes")
	assert.Equal(t, "yes", ExpandEnv("${PARAMCACHE_TEST_EXPAND}"))
}
