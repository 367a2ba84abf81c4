// Package tui renders command output for the paramcache CLI.
package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// HasTTY reports whether stdout is a terminal. Styles degrade to plain text when it is not.
var HasTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
