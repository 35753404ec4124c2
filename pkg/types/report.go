// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Report summarizes one pipeline run. It is built once from the final
// outcome sequence and not modified afterwards.
type Report struct {
	// RunID uniquely identifies the run (UUID).
	RunID string `json:"run_id" yaml:"run_id"`

	GeneratedAt time.Time `json:"timestamp" yaml:"timestamp"`

	InputDir  string `json:"input_dir,omitempty" yaml:"input_dir,omitempty"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Backend   string `json:"backend,omitempty" yaml:"backend,omitempty"`

	TotalFiles         int `json:"total_files" yaml:"total_files"`
	SuccessCount       int `json:"successful_conversions" yaml:"successful_conversions"`
	FailureCount       int `json:"failed_conversions" yaml:"failed_conversions"`
	TotalContentLength int `json:"total_content_length" yaml:"total_content_length"`

	// Outcomes are in discovery order.
	Outcomes []Outcome `json:"results" yaml:"results"`
}

// HasFailures reports whether any file failed conversion.
func (r Report) HasFailures() bool {
	return r.FailureCount > 0
}
