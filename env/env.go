// Package env resolves settings from cobra flags, environment variables and
// defaults, in that order.
package env

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agentuity/go-paramcache/logger"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

// Prefix is prepended to every environment variable name this program reads.
const Prefix = "PARAMCACHE_"

// Name returns the environment variable for a flag, e.g. "max-cache-size"
// becomes PARAMCACHE_MAX_CACHE_SIZE.
func Name(flagName string) string {
	return Prefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// FlagOrEnv will try and get a flag from the cobra.Command and if not found, look it up in the environment
// and fallback to defaultValue if non found
func FlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue string) string {
	if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
		return f.Value.String()
	}
	if flagValue, _ := cmd.Flags().GetString(flagName); flagValue != "" {
		return flagValue
	}
	if val, ok := os.LookupEnv(envName); ok && val != "" {
		return val
	}
	return defaultValue
}

// FlagOrEnvInt is FlagOrEnv for integer settings.
func FlagOrEnvInt(cmd *cobra.Command, flagName string, envName string, defaultValue int) (int, error) {
	val := FlagOrEnv(cmd, flagName, envName, "")
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value %q for %s", val, flagName)
	}
	return n, nil
}

// FlagOrEnvDuration is FlagOrEnv for durations. Day and week units are accepted
// as well as the units understood by time.ParseDuration.
func FlagOrEnvDuration(cmd *cobra.Command, flagName string, envName string, defaultValue time.Duration) (time.Duration, error) {
	val := FlagOrEnv(cmd, flagName, envName, "")
	if val == "" {
		return defaultValue, nil
	}
	d, err := str2duration.ParseDuration(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q for %s", val, flagName)
	}
	return d, nil
}

// LogLevel returns the level from the log-level flag, then PARAMCACHE_LOG_LEVEL,
// then fallback. Unrecognized names resolve to info.
func LogLevel(cmd *cobra.Command, fallback string) logger.LogLevel {
	level, _ := logger.ParseLevel(FlagOrEnv(cmd, "log-level", logger.LevelEnvVar, fallback))
	return level
}

// NewLogger returns a console logger, or a JSON logger when the log-format flag
// or PARAMCACHE_LOG_FORMAT is "json", at the level chosen by LogLevel.
func NewLogger(cmd *cobra.Command, fallbackLevel string) logger.Logger {
	log.SetFlags(0)
	level := LogLevel(cmd, fallbackLevel)
	if strings.EqualFold(FlagOrEnv(cmd, "log-format", Name("log-format"), "console"), "json") {
		return logger.NewJSONLogger(level)
	}
	return logger.NewConsoleLogger(level)
}

// Expand replaces ${NAME} and ${NAME:-default} references in s using lookup.
// A reference with no value and no default is left as written. Unterminated
// references are copied through unchanged.
func Expand(s string, lookup func(string) (string, bool)) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var out strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+2:], '}')
		if end < 0 {
			break
		}
		end += start + 2
		out.WriteString(s[:start])
		ref := s[start : end+1]
		name, def, hasDefault := strings.Cut(s[start+2:end], ":-")
		switch val, ok := lookup(name); {
		case name == "":
			out.WriteString(ref)
		case ok && val != "":
			out.WriteString(val)
		case hasDefault:
			out.WriteString(def)
		default:
			out.WriteString(ref)
		}
		s = s[end+1:]
	}
	out.WriteString(s)
	return out.String()
}

// ExpandEnv is Expand against the process environment.
func ExpandEnv(s string) string {
	return Expand(s, os.LookupEnv)
}
