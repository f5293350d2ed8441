// Package pipeline drives the per-file documentation flow: parse,
// fingerprint, generate with correction, splice, and verify.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docsmith/internal/analysis"
	"docsmith/internal/correction"
	"docsmith/internal/insertion"
	"docsmith/internal/logging"
	"docsmith/internal/store"
)

// Pipeline processes one source unit at a time. It is safe for
// concurrent use as long as the underlying generator is.
type Pipeline struct {
	ctrl      *correction.Controller
	extractor *analysis.Extractor
	logger    *zap.Logger
}

// FileResult is the outcome of processing a single file.
type FileResult struct {
	Path     string
	Original []byte
	Updated  []byte
	Changed  bool
	Skipped  int // declarations that already had docstrings
	Outcomes []correction.Outcome
}

func New(ctrl *correction.Controller, extractor *analysis.Extractor, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		ctrl:      ctrl,
		extractor: extractor,
		logger:    logging.Named(logger, logging.CategoryPipeline),
	}
}

// ProcessSource documents every undocumented declaration in content.
// Declarations are spliced bottom-up so line positions taken from the
// original parse stay valid as the file grows. The updated source is
// re-parsed before being returned; a file that no longer parses is
// rejected and the original content kept.
func (p *Pipeline) ProcessSource(ctx context.Context, path string, content []byte) (*FileResult, error) {
	unit, err := analysis.ParseUnit(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer unit.Close()

	res := &FileResult{Path: path, Original: content}

	var targets []analysis.Declaration
	for _, d := range unit.Declarations() {
		if d.HasDocstring {
			res.Skipped++
			continue
		}
		targets = append(targets, d)
	}
	if len(targets) == 0 {
		res.Updated = content
		return res, nil
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].DefLine > targets[j].DefLine })

	lines := unit.Lines()
	for _, decl := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fp, err := p.extractor.Extract(decl)
		if err != nil {
			p.logger.Warn("fingerprint extraction failed",
				zap.String("file", path),
				zap.String("declaration", decl.QualifiedName),
				zap.Error(err))
			continue
		}

		outcome := p.ctrl.Document(ctx, decl, fp)
		res.Outcomes = append(res.Outcomes, outcome)

		if outcome.Status == correction.StatusTransportFailed || outcome.Block == "" {
			continue
		}
		spliced, err := insertion.Splice(lines, decl, outcome.Block)
		if err != nil {
			p.logger.Warn("splice failed",
				zap.String("file", path),
				zap.String("declaration", decl.QualifiedName),
				zap.Error(err))
			continue
		}
		lines = spliced
		res.Changed = true
	}

	if !res.Changed {
		res.Updated = content
		return res, nil
	}

	updated := []byte(strings.Join(lines, "\n"))
	check, err := analysis.ParseUnit(ctx, updated)
	if err != nil {
		p.logger.Error("updated source failed to parse, keeping original",
			zap.String("file", path))
		res.Updated = content
		res.Changed = false
		return res, fmt.Errorf("%s: updated source no longer parses", path)
	}
	check.Close()

	res.Updated = updated
	return res, nil
}

// Runner runs the pipeline over a directory tree with bounded
// parallelism and records results in the run ledger.
type Runner struct {
	pipe     *Pipeline
	ledger   *store.Store
	logger   *zap.Logger
	jobs     int
	write    bool
	provider string
	model    string
}

type RunnerOptions struct {
	Jobs     int
	Write    bool
	Provider string
	Model    string
}

func NewRunner(pipe *Pipeline, ledger *store.Store, opts RunnerOptions, logger *zap.Logger) *Runner {
	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		pipe:     pipe,
		ledger:   ledger,
		logger:   logging.Named(logger, logging.CategoryPipeline),
		jobs:     opts.Jobs,
		write:    opts.Write,
		provider: opts.Provider,
		model:    opts.Model,
	}
}

// Run processes every Python file under root. Files are processed in
// parallel; a single file's failure is reported but does not stop the
// run. The returned report covers every file attempted.
func (r *Runner) Run(ctx context.Context, root string) (*Report, error) {
	files, err := collectPythonFiles(root)
	if err != nil {
		return nil, err
	}

	var runID string
	if r.ledger != nil {
		runID, err = r.ledger.BeginRun(ctx, root, r.provider, r.model)
		if err != nil {
			r.logger.Warn("run ledger unavailable", zap.Error(err))
		}
	}

	report := NewReport(root)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)

	for _, path := range files {
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				report.AddError(path, err)
				return nil
			}
			res, err := r.pipe.ProcessSource(gctx, path, content)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				report.AddError(path, err)
				return nil
			}

			if res.Changed {
				if err := os.WriteFile(outputPath(path, r.write), res.Updated, 0o644); err != nil {
					report.AddError(path, err)
					return nil
				}
			}
			report.AddFile(res)
			r.record(gctx, runID, res)
			return nil
		})
	}
	err = g.Wait()

	if r.ledger != nil && runID != "" {
		if endErr := r.ledger.EndRun(context.WithoutCancel(ctx), runID); endErr != nil {
			r.logger.Warn("run ledger update failed", zap.Error(endErr))
		}
	}
	return report, err
}

func (r *Runner) record(ctx context.Context, runID string, res *FileResult) {
	if r.ledger == nil || runID == "" {
		return
	}
	for _, o := range res.Outcomes {
		rec := store.OutcomeRecord{
			File:        res.Path,
			Declaration: o.Declaration.QualifiedName,
			Status:      o.Status.String(),
			Attempts:    o.Attempts,
			Corrections: o.Corrections,
			Violations:  len(o.RemainingViolations),
		}
		if err := r.ledger.RecordOutcome(ctx, runID, rec); err != nil {
			r.logger.Warn("outcome record failed", zap.Error(err))
			return
		}
	}
}

const documentedSuffix = ".documented.py"

// outputPath selects in-place output under --write and a sibling
// .documented.py file otherwise, so dry runs still produce reviewable
// output without touching the source.
func outputPath(path string, inPlace bool) string {
	if inPlace {
		return path
	}
	return strings.TrimSuffix(path, ".py") + documentedSuffix
}

func collectPythonFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(root, ".py") {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("%s is not a Python file", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__" || name == "venv") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".py") && !strings.HasSuffix(path, documentedSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
