// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbatch/internal/convert"
	"github.com/pdiddy/docbatch/internal/describe"
	"github.com/pdiddy/docbatch/internal/discover"
	"github.com/pdiddy/docbatch/internal/history"
	"github.com/pdiddy/docbatch/internal/report"
	"github.com/pdiddy/docbatch/internal/secrets"
	"github.com/pdiddy/docbatch/pkg/types"
)

const defaultOutputDir = "converted_markdown"

var convertCmd = &cobra.Command{
	Use:   "convert <inputDirectory>",
	Short: "Convert every matching document under a directory to Markdown",
	Long: `Convert walks inputDirectory recursively, converts each file whose
extension is in --types to <output>/<stem>.md, and writes a report with one
entry per file. A file that fails to convert is recorded in the report and
does not stop the batch.

The command exits non-zero only when the input directory does not exist or
the report cannot be written.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

// convertFlags maps viper keys to the flags that set them. Every key can
// also come from the config file or a DOCBATCH_ environment variable.
var convertFlags = []string{
	"output", "types", "report", "report-format", "backend", "workers",
	"timeout", "plugins", "llm-model", "llm-base-url", "preserve-tree",
	"frontmatter", "history-db",
}

func init() {
	f := convertCmd.Flags()
	f.StringP("output", "o", defaultOutputDir, "directory for Markdown artifacts")
	f.StringSliceP("types", "t", discover.DefaultExtensions, "file extensions to convert, comma-separated or repeated (-t .pdf,.docx or -t .pdf -t .docx)")
	f.StringP("report", "r", report.DefaultPath, "report file path (empty disables the report)")
	f.String("report-format", "", "report encoding: json or yaml (default from the report extension)")
	f.String("backend", string(types.BackendAuto), "conversion backend: auto, native, or markitdown")
	f.Int("workers", 1, "number of files converted concurrently")
	f.Duration("timeout", 0, "per-file conversion timeout (0 disables)")
	f.Bool("plugins", false, "enable markitdown plugins")
	f.String("llm-model", "", "model used to describe images (requires an API key)")
	f.String("llm-base-url", "", "OpenAI-compatible API base URL")
	f.Bool("preserve-tree", false, "mirror input subdirectories in the output directory")
	f.Bool("frontmatter", false, "prepend YAML frontmatter to each artifact")
	f.String("history-db", history.DefaultPath, "SQLite run history database (empty disables history)")

	for _, key := range convertFlags {
		viper.BindPFlag(key, f.Lookup(key))
	}

	rootCmd.AddCommand(convertCmd)
}

// batchConfig collects the run settings from viper.
func batchConfig(inputDir string) types.BatchConfig {
	return types.BatchConfig{
		InputDir:     inputDir,
		OutputDir:    viper.GetString("output"),
		Extensions:   viper.GetStringSlice("types"),
		ReportPath:   viper.GetString("report"),
		ReportFormat: types.ReportFormat(viper.GetString("report-format")),
		Workers:      viper.GetInt("workers"),
		Timeout:      viper.GetDuration("timeout"),
		PreserveTree: viper.GetBool("preserve-tree"),
		Frontmatter:  viper.GetBool("frontmatter"),
		HistoryDB:    viper.GetString("history-db"),
		Converter: types.ConverterConfig{
			Backend:       types.ConversionBackend(viper.GetString("backend")),
			EnablePlugins: viper.GetBool("plugins"),
			AI: types.AIConfig{
				Model:   viper.GetString("llm-model"),
				BaseURL: viper.GetString("llm-base-url"),
				APIKey:  secretDefault(secrets.KeyOpenAI, viper.GetString("llm-api-key")),
			},
		},
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := batchConfig(args[0])
	log := logrus.StandardLogger()

	d, err := newDescriber(cfg.Converter.AI)
	if err != nil {
		return err
	}
	conv, err := convert.New(cfg.Converter, d, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rep, runErr := convert.Run(ctx, cfg, conv, cmd.OutOrStdout(), log)
	if errors.Is(runErr, discover.ErrDirectoryNotFound) {
		return fmt.Errorf("input directory %s: %w", cfg.InputDir, runErr)
	}

	if cfg.HistoryDB != "" && rep.RunID != "" {
		if err := recordHistory(cmd, cfg.HistoryDB, rep); err != nil {
			log.WithError(err).Warn("could not record run history")
		}
	}

	var pe *report.PersistError
	if errors.As(runErr, &pe) {
		report.Summary(cmd.OutOrStdout(), rep, "")
		return pe
	}
	return runErr
}

// newDescriber returns nil, not a typed nil pointer, when no model or key
// is configured.
func newDescriber(cfg types.AIConfig) (describe.Describer, error) {
	d, err := describe.New(cfg)
	if errors.Is(err, describe.ErrNotConfigured) {
		if cfg.Model != "" {
			logrus.WithField("model", cfg.Model).Warn("image descriptions disabled: no API key")
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func recordHistory(cmd *cobra.Command, path string, rep types.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(cmd.Context(), rep)
}
