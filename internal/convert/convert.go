// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns input documents into Markdown artifacts. A Converter
// extracts text from one file; ConvertBatch runs it over many files,
// isolating per-file failures and recording one Outcome per file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docbatch/internal/atomicfile"
	"github.com/pdiddy/docbatch/pkg/types"
)

var (
	// ErrUnsupportedFormat is returned when no backend handles a file type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrTimeout is returned when a conversion exceeds Options.Timeout.
	ErrTimeout = errors.New("conversion timed out")

	// ErrOutputWrite marks an outcome demoted because its artifact could not be written.
	ErrOutputWrite = errors.New("writing output")
)

// Converter extracts Markdown text from a file. Backends include the
// markitdown container and the in-process native router.
type Converter interface {
	// Convert reads the file at path and returns its Markdown content.
	Convert(ctx context.Context, path string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, path string) (string, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Options controls how a batch writes artifacts and runs conversions.
type Options struct {
	// OutputDir receives one <stem>.md per successful conversion. It is
	// created on first write.
	OutputDir string

	// InputRoot is the discovery root, used by PreserveTree.
	InputRoot string

	// Timeout bounds a single conversion. Zero means no limit.
	Timeout time.Duration

	// Workers is the number of concurrent conversions; values below 2 run sequentially.
	Workers int

	// PreserveTree mirrors the input directory layout under OutputDir so
	// files with the same stem in different directories do not collide.
	PreserveTree bool

	// Frontmatter prepends YAML frontmatter to each artifact.
	Frontmatter bool

	// Log receives diagnostics. Nil uses the standard logrus logger.
	Log logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// ArtifactPath returns where the Markdown for path is written. By default it
// is OutputDir/<stem>.md, so same-stem inputs overwrite each other
// (last writer wins).
func ArtifactPath(path string, opts Options) string {
	if opts.PreserveTree && opts.InputRoot != "" {
		rel, err := filepath.Rel(opts.InputRoot, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.Join(opts.OutputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".md")
		}
	}
	return filepath.Join(opts.OutputDir, types.Stem(path)+".md")
}

// ConvertFile converts one file, writes its artifact on success, and returns
// the outcome. It never returns an error: every failure, including a
// failed artifact write, is recorded in the outcome.
func ConvertFile(ctx context.Context, c Converter, path string, opts Options, w io.Writer) types.Outcome {
	log := opts.logger().WithField("file", path)
	name := filepath.Base(path)
	start := time.Now()

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	if err := ctx.Err(); err != nil {
		out := types.NewFailed(path, size, fmt.Sprintf("skipped: %v", err))
		fmt.Fprintf(w, "failed:    %s (skipped: %v)\n", name, err)
		return out
	}

	content, err := runConverter(ctx, c, path, opts.Timeout)
	if err != nil {
		out := types.NewFailed(path, size, err.Error())
		out.DurationMS = time.Since(start).Milliseconds()
		log.WithError(err).Debug("conversion failed")
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return out
	}

	out := types.NewSucceeded(path, size, content)
	out.DurationMS = time.Since(start).Milliseconds()

	mdPath := ArtifactPath(path, opts)
	data := content
	if opts.Frontmatter {
		data = addFrontmatter(path, content)
	}
	if err := atomicfile.WriteFile(mdPath, []byte(data), 0o644); err != nil {
		werr := fmt.Errorf("%w %s: %v", ErrOutputWrite, mdPath, err)
		log.WithError(err).Warn("artifact write failed")
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, werr)
		return out.Demote(werr.Error())
	}
	out.OutputPath = mdPath

	log.WithFields(logrus.Fields{
		"output":     mdPath,
		"bytes":      size,
		"characters": out.ContentLength,
	}).Debug("converted")
	fmt.Fprintf(w, "converted: %s -> %s (%d bytes to %d characters)\n", name, mdPath, size, out.ContentLength)
	return out
}

// ConvertBatch converts paths in order and returns one outcome per path, in
// the same order. A failing file never stops the batch. Once ctx is done the
// remaining files are recorded as failed without being converted. With opts.Workers > 1
// conversions run concurrently; each result still lands in its input slot.
func ConvertBatch(ctx context.Context, c Converter, paths []string, opts Options, w io.Writer) []types.Outcome {
	warnCollisions(paths, opts)

	outcomes := make([]types.Outcome, len(paths))
	sw := &syncWriter{w: w}

	if opts.Workers < 2 {
		for i, p := range paths {
			outcomes[i] = ConvertFile(ctx, c, p, opts, sw)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, p := range paths {
		g.Go(func() error {
			outcomes[i] = ConvertFile(ctx, c, p, opts, sw)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// runConverter calls c with panic recovery and, when timeout is set, stops
// waiting once it expires even if the converter ignores its context.
func runConverter(ctx context.Context, c Converter, path string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		return safeConvert(ctx, c, path)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		content string
		err     error
	}
	done := make(chan result, 1)
	go func() {
		content, err := safeConvert(ctx, c, path)
		done <- result{content, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return r.content, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return "", ctx.Err()
	}
}

func safeConvert(ctx context.Context, c Converter, path string) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("converter panicked: %v", r)
		}
	}()
	return c.Convert(ctx, path)
}

// warnCollisions logs inputs whose artifacts would overwrite each other.
func warnCollisions(paths []string, opts Options) {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		target := ArtifactPath(p, opts)
		if first, ok := seen[target]; ok {
			opts.logger().WithFields(logrus.Fields{
				"output": target,
				"first":  first,
				"second": p,
			}).Warn("output name collision, later file overwrites earlier one")
			continue
		}
		seen[target] = p
	}
}

type frontmatter struct {
	Source      string `yaml:"source"`
	ConvertedAt string `yaml:"converted_at"`
}

// addFrontmatter prepends YAML frontmatter to the converted Markdown content.
func addFrontmatter(path, body string) string {
	fm, err := yaml.Marshal(frontmatter{
		Source:      path,
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return body
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// syncWriter serializes progress lines from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
