// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// previewLen is the number of characters kept in ContentPreview.
const previewLen = 200

// Outcome records the result of converting one file. A successful outcome
// carries Content, which may be empty for a document with no text; a failed
// one carries Error and no Content. Build outcomes with NewSucceeded or
// NewFailed; they are not modified once appended to a run.
type Outcome struct {
	// SourcePath is the input file path as discovered.
	SourcePath string `json:"file_path" yaml:"file_path"`

	// SizeBytes is the input size when it was read, or 0 if it could not be stat'ed.
	SizeBytes int64 `json:"file_size" yaml:"file_size"`

	// Extension is the lowercased, dot-prefixed file suffix ("" when none).
	Extension string `json:"file_extension" yaml:"file_extension"`

	// Timestamp is when the outcome was recorded.
	Timestamp time.Time `json:"conversion_time" yaml:"conversion_time"`

	Succeeded bool `json:"success" yaml:"success"`

	// ContentLength is the character count of Content; 0 on failure.
	ContentLength int `json:"content_length" yaml:"content_length"`

	ContentPreview string `json:"content_preview,omitempty" yaml:"content_preview,omitempty"`

	// OutputPath is where the Markdown artifact was written.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Content string `json:"full_content" yaml:"full_content"`
}

// NewSucceeded builds a successful outcome carrying the extracted content.
func NewSucceeded(path string, size int64, content string) Outcome {
	return Outcome{
		SourcePath:     path,
		SizeBytes:      size,
		Extension:      Ext(path),
		Timestamp:      time.Now().UTC(),
		Succeeded:      true,
		ContentLength:  utf8.RuneCountInString(content),
		ContentPreview: preview(content),
		Content:        content,
	}
}

// NewFailed builds a failed outcome. An empty message is replaced so that a
// failed outcome always explains itself.
func NewFailed(path string, size int64, msg string) Outcome {
	if strings.TrimSpace(msg) == "" {
		msg = "unknown conversion error"
	}
	return Outcome{
		SourcePath: path,
		SizeBytes:  size,
		Extension:  Ext(path),
		Timestamp:  time.Now().UTC(),
		Error:      msg,
	}
}

// Demote turns a successful outcome into a failed one, dropping its content.
// Used when the artifact for an otherwise converted file cannot be written.
func (o Outcome) Demote(msg string) Outcome {
	f := NewFailed(o.SourcePath, o.SizeBytes, msg)
	f.Timestamp = o.Timestamp
	f.DurationMS = o.DurationMS
	return f
}

// Stem returns the file name without directory and extension.
func (o Outcome) Stem() string {
	return Stem(o.SourcePath)
}

// Ext returns the lowercased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Stem returns the base name of path with its extension removed.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLen {
		return content
	}
	return string([]rune(content)[:previewLen]) + "..."
}
