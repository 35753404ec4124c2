// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docbatch/internal/discover"
	"github.com/pdiddy/docbatch/internal/report"
)

// resetFlags restores subcommand flags between executions in one process.
// Slice flags append once set, so they are emptied rather than reparsed.
func resetFlags() {
	for _, fs := range []*pflag.FlagSet{convertCmd.Flags(), historyCmd.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}
}

// execute runs the root command with args and returns its stdout. A non-nil
// error is what makes main exit 1.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestConvertCommand(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		input     func(in string) string
		types     []string
		report    func(work string) string
		wantErr   func(t *testing.T, err error)
		wantFiles []string
		wantOut   string
	}{
		{
			name:      "per-file failure still exits zero",
			files:     map[string]string{"a.txt": "hello", "bad.json": "{not json"},
			types:     []string{".txt,.json"},
			wantFiles: []string{"a.md"},
			wantOut:   "1/2 files converted successfully",
		},
		{
			name:      "types flag filters discovery",
			files:     map[string]string{"a.txt": "hello", "b.csv": "x,y\n1,2"},
			types:     []string{".txt"},
			wantFiles: []string{"a.md"},
			wantOut:   "Found 1 files to process",
		},
		{
			name:      "repeated types flag values combine",
			files:     map[string]string{"a.txt": "hello", "b.csv": "x,y\n1,2"},
			types:     []string{".txt", ".csv"},
			wantFiles: []string{"a.md", "b.md"},
			wantOut:   "2/2 files converted successfully",
		},
		{
			name:  "missing input directory exits one",
			input: func(in string) string { return filepath.Join(in, "missing") },
			types: []string{".txt"},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, discover.ErrDirectoryNotFound)
			},
		},
		{
			name:  "unwritable report exits one and keeps artifacts",
			files: map[string]string{"a.txt": "hello"},
			types: []string{".txt"},
			report: func(work string) string {
				blocker := filepath.Join(work, "blocker")
				require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
				return filepath.Join(blocker, "report.json")
			},
			wantErr: func(t *testing.T, err error) {
				var pe *report.PersistError
				assert.ErrorAs(t, err, &pe)
			},
			wantFiles: []string{"a.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := t.TempDir()
			work := t.TempDir()
			writeFiles(t, in, tt.files)

			input := in
			if tt.input != nil {
				input = tt.input(in)
			}
			reportPath := filepath.Join(work, "conversion_report.json")
			if tt.report != nil {
				reportPath = tt.report(work)
			}
			outDir := filepath.Join(work, "md")

			args := []string{"convert", input,
				"-o", outDir,
				"-r", reportPath,
				"--backend", "native",
				"--history-db=",
			}
			for _, ext := range tt.types {
				args = append(args, "-t", ext)
			}

			out, err := execute(t, args...)

			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
			} else {
				require.NoError(t, err)
				assert.FileExists(t, reportPath)
			}
			assert.Equal(t, tt.wantFiles, dirNames(t, outDir))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestConvertCommandRequiresInput(t *testing.T) {
	_, err := execute(t, "convert")
	assert.Error(t, err)
}

func TestConvertRecordsHistory(t *testing.T) {
	in := t.TempDir()
	work := t.TempDir()
	writeFiles(t, in, map[string]string{"a.txt": "hello", "bad.json": "{"})
	db := filepath.Join(work, "history.db")

	_, err := execute(t, "convert", in,
		"-o", filepath.Join(work, "md"),
		"-t", ".txt,.json",
		"-r", filepath.Join(work, "report.json"),
		"--backend", "native",
		"--history-db", db,
	)
	require.NoError(t, err)

	out, err := execute(t, "history", "--history-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "1/2 ok  1 failed")
}
