//go:build mage

// Package main contains Mage build targets for docbatch developer tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/docbatch/internal/convert"
	"github.com/pdiddy/docbatch/internal/report"
	"github.com/pdiddy/docbatch/pkg/types"
)

const (
	binDir  = "bin"
	binName = "docbatch"
	cmdPkg  = "./cmd/docbatch"
	demoDir = "demo"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// demoFiles are the sample inputs written by Demo.
var demoFiles = map[string]string{
	"test.txt":  "This is a simple text file.\n\nIt has multiple paragraphs.\n\n- And some\n- Bullet points",
	"test.csv":  "Name,Age,City\nJohn,25,New York\nJane,30,Los Angeles\nBob,35,Chicago",
	"test.json": `{"name": "docbatch demo", "features": ["PDF conversion", "Office docs", "Multi-modal"], "rating": 5}`,
	"test.html": `<!DOCTYPE html>
<html>
<head><title>Demo Page</title></head>
<body>
    <h1>Demo Document</h1>
    <p>This is a <strong>demonstration</strong> of docbatch.</p>
    <ul>
        <li>HTML to Markdown conversion</li>
        <li>Structure preservation</li>
        <li>Easy integration</li>
    </ul>
</body>
</html>`,
}

// Demo writes sample files under demo/input, converts them with the native
// backend, and leaves the Markdown and report under demo/.
func Demo(ctx context.Context) error {
	mg.Deps(Clean)

	inputDir := filepath.Join(demoDir, "input")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", inputDir, err)
	}
	for name, content := range demoFiles {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		fmt.Println("Created:", name)
	}

	cfg := types.BatchConfig{
		InputDir:   inputDir,
		OutputDir:  filepath.Join(demoDir, "markdown_output"),
		Extensions: []string{".txt", ".csv", ".json", ".html"},
		ReportPath: filepath.Join(demoDir, report.DefaultPath),
		Converter:  types.ConverterConfig{Backend: types.BackendNative},
	}
	rep, err := convert.Run(ctx, cfg, convert.NewNative(nil, nil), os.Stdout, nil)
	if err != nil {
		return err
	}
	if rep.HasFailures() {
		return fmt.Errorf("demo: %d file(s) failed", rep.FailureCount)
	}
	return nil
}

// Clean removes build and demo output.
func Clean() error {
	for _, dir := range []string{binDir, demoDir} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}
