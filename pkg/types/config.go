// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionBackend identifies which converter handles files.
type ConversionBackend string

const (
	// BackendAuto uses the native backend when it accepts a file and falls
	// back to markitdown otherwise.
	BackendAuto       ConversionBackend = "auto"
	BackendNative     ConversionBackend = "native"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ReportFormat selects the encoding of the persisted report.
type ReportFormat string

const (
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the optional describer that turns images
// into text through an OpenAI-compatible API.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the model identifier (e.g. "gpt-4o"). Empty disables the describer.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string `json:"base_url" yaml:"base_url"`

	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerMinute caps describer calls (default 60).
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Enabled reports whether enough is configured to call the API.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && c.APIKey != ""
}

// ConverterConfig is built once per run and used to construct the converter.
type ConverterConfig struct {
	// Backend selects auto, native, or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// EnablePlugins passes --use-plugins to markitdown.
	EnablePlugins bool `json:"enable_plugins" yaml:"enable_plugins"`

	AI AIConfig `json:"ai" yaml:"ai"`
}

// BatchConfig holds settings for one batch run.
type BatchConfig struct {
	InputDir  string `json:"input_dir" yaml:"input_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Extensions filters discovered files (e.g. ".pdf").
	Extensions []string `json:"extensions" yaml:"extensions"`

	ReportPath   string       `json:"report_path" yaml:"report_path"`
	ReportFormat ReportFormat `json:"report_format" yaml:"report_format"`

	// Workers is the number of concurrent conversions (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// Timeout bounds a single file's conversion. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// PreserveTree names artifacts by path relative to InputDir instead of stem.
	PreserveTree bool `json:"preserve_tree" yaml:"preserve_tree"`

	// Frontmatter prepends YAML frontmatter to each artifact.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter"`

	// HistoryDB is the SQLite run history path. Empty disables history.
	HistoryDB string `json:"history_db" yaml:"history_db"`

	Converter ConverterConfig `json:"converter" yaml:"converter"`
}
