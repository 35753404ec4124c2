// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report aggregates per-file outcomes into a run report, persists
// it as JSON or YAML, and prints a short human-readable summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docbatch/internal/atomicfile"
	"github.com/pdiddy/docbatch/pkg/types"
)

// DefaultPath is the conventional report file name.
const DefaultPath = "conversion_report.json"

// Meta carries run-level fields that are not derived from outcomes.
type Meta struct {
	// RunID is generated when empty.
	RunID string
	// GeneratedAt defaults to now.
	GeneratedAt time.Time
	InputDir    string
	OutputDir   string
	Backend     string
}

// Build computes a report from the final outcome sequence. The outcomes are
// copied, so later changes to the caller's slice do not affect the report.
func Build(outcomes []types.Outcome, meta Meta) types.Report {
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}

	r := types.Report{
		RunID:       meta.RunID,
		GeneratedAt: meta.GeneratedAt,
		InputDir:    meta.InputDir,
		OutputDir:   meta.OutputDir,
		Backend:     meta.Backend,
		TotalFiles:  len(outcomes),
		Outcomes:    append([]types.Outcome{}, outcomes...),
	}
	for _, o := range outcomes {
		if o.Succeeded {
			r.SuccessCount++
		} else {
			r.FailureCount++
		}
		r.TotalContentLength += o.ContentLength
	}
	return r
}

// PersistError reports that the run report could not be written. Output
// artifacts already written are unaffected.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting report %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// FormatFor resolves the report format: an explicit format wins, otherwise
// .yaml and .yml paths get YAML and everything else JSON.
func FormatFor(path string, explicit types.ReportFormat) (types.ReportFormat, error) {
	switch explicit {
	case types.ReportJSON, types.ReportYAML:
		return explicit, nil
	case "":
	default:
		return "", fmt.Errorf("unknown report format %q (want json or yaml)", explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return types.ReportYAML, nil
	}
	return types.ReportJSON, nil
}

// Write persists r at path in the given format. The file is written to a
// temporary sibling and renamed, so a reader never sees a partial report.
// Any failure is returned as a *PersistError.
func Write(path string, r types.Report, format types.ReportFormat) error {
	format, err := FormatFor(path, format)
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}

	err = atomicfile.Write(path, 0o644, func(w io.Writer) error {
		if format == types.ReportYAML {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(r); err != nil {
				return err
			}
			return enc.Close()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(r)
	})
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}

// Summary prints counts and locations for a finished run.
func Summary(w io.Writer, r types.Report, reportPath string) {
	fmt.Fprintf(w, "\nBatch processing complete: %d/%d files converted successfully\n", r.SuccessCount, r.TotalFiles)
	fmt.Fprintf(w, "  Successful: %d\n", r.SuccessCount)
	fmt.Fprintf(w, "  Failed:     %d\n", r.FailureCount)
	fmt.Fprintf(w, "  Characters: %d\n", r.TotalContentLength)
	if r.OutputDir != "" {
		fmt.Fprintf(w, "  Output directory: %s\n", r.OutputDir)
	}
	if reportPath != "" {
		fmt.Fprintf(w, "  Report: %s\n", reportPath)
	}
}
