// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the process-wide logrus logger used for
// diagnostics. User-facing progress output does not go through it.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup applies level ("debug", "info", "warn", "error") and format ("text"
// or "json") to the standard logrus logger, writing to w.
func Setup(w io.Writer, level, format string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter logrus.Formatter
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true, DisableLevelTruncation: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}

	std := logrus.StandardLogger()
	std.SetOutput(w)
	std.SetLevel(lvl)
	std.SetFormatter(formatter)
	return nil
}
