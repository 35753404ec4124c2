// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docbatch/internal/discover"
	"github.com/pdiddy/docbatch/internal/report"
	"github.com/pdiddy/docbatch/pkg/types"
)

// Run discovers files under cfg.InputDir, converts them with c, and builds
// and persists the run report. It fails only when the input directory is
// missing (discover.ErrDirectoryNotFound) or the report cannot be written
// (*report.PersistError); per-file failures are recorded in the report. The
// report is returned even when persisting it fails.
func Run(ctx context.Context, cfg types.BatchConfig, c Converter, w io.Writer, log logrus.FieldLogger) (types.Report, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	files, err := discover.Files(cfg.InputDir, discover.Options{
		Extensions: cfg.Extensions,
		Exclude:    []string{cfg.OutputDir},
		Log:        log,
	})
	if err != nil {
		return types.Report{}, err
	}
	fmt.Fprintf(w, "Found %d files to process\n", len(files))
	log.WithFields(logrus.Fields{
		"input":   cfg.InputDir,
		"output":  cfg.OutputDir,
		"files":   len(files),
		"workers": cfg.Workers,
	}).Info("starting batch")

	outcomes := ConvertBatch(ctx, c, files, Options{
		OutputDir:    cfg.OutputDir,
		InputRoot:    cfg.InputDir,
		Timeout:      cfg.Timeout,
		Workers:      cfg.Workers,
		PreserveTree: cfg.PreserveTree,
		Frontmatter:  cfg.Frontmatter,
		Log:          log,
	}, w)

	backend := string(cfg.Converter.Backend)
	if backend == "" {
		backend = string(types.BackendAuto)
	}
	rep := report.Build(outcomes, report.Meta{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Backend:   backend,
	})

	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, rep, cfg.ReportFormat); err != nil {
			return rep, err
		}
	}
	report.Summary(w, rep, cfg.ReportPath)

	log.WithFields(logrus.Fields{
		"run_id":    rep.RunID,
		"succeeded": rep.SuccessCount,
		"failed":    rep.FailureCount,
	}).Info("batch complete")
	return rep, nil
}
