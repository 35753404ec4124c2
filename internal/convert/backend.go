// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docbatch/internal/container"
	"github.com/pdiddy/docbatch/internal/describe"
	"github.com/pdiddy/docbatch/pkg/types"
)

// detectRuntime is replaced in tests.
var detectRuntime = container.DetectRuntime

// New builds the converter selected by cfg.Backend. It is constructed once
// per run and shared by all workers. d may be nil.
//
//   - native: in-process backends only.
//   - markitdown: every file goes through the markitdown container.
//   - auto (or empty): native first, markitdown for the rest when a
//     container runtime with the markitdown image is available.
func New(cfg types.ConverterConfig, d describe.Describer, log logrus.FieldLogger) (Converter, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	switch cfg.Backend {
	case types.BackendNative:
		return NewNative(d, nil), nil

	case types.BackendMarkitdown:
		return newMarkitdown(cfg)

	case types.BackendAuto, "":
		m, err := newMarkitdown(cfg)
		if err != nil {
			log.WithError(err).Warn("markitdown unavailable, using native backends only")
			return NewNative(d, nil), nil
		}
		log.WithField("runtime", m.runtime.Name()).Debug("markitdown fallback enabled")
		return NewNative(d, m), nil

	default:
		return nil, fmt.Errorf("unknown backend %q (want auto, native, or markitdown)", cfg.Backend)
	}
}

func newMarkitdown(cfg types.ConverterConfig) (*MarkitdownConverter, error) {
	rt, err := detectRuntime()
	if err != nil {
		return nil, err
	}
	return NewMarkitdownConverter(rt, cfg.EnablePlugins)
}
