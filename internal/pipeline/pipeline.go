// Package pipeline orchestrates a full analysis run: catalog scan,
// detector fan-out, scoring, persistence, guide generation, and
// validation. All state lives for exactly one run; concurrent runs cannot
// share anything because nothing here is package-level.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/catalog"
	"github.com/julianshen/archguide/internal/config"
	"github.com/julianshen/archguide/internal/detect"
	"github.com/julianshen/archguide/internal/extract"
	"github.com/julianshen/archguide/internal/generate"
	"github.com/julianshen/archguide/internal/render"
	"github.com/julianshen/archguide/internal/score"
	"github.com/julianshen/archguide/internal/validate"
)

// Options are the per-invocation knobs the CLI passes down.
type Options struct {
	Root           string
	OutputDir      string
	GuideIDs       []string // empty means all guides
	Timeout        time.Duration
	SkipGeneration bool
}

// Outcome is everything one run produced.
type Outcome struct {
	Result   *analysis.Result
	Guides   []generate.GeneratedGuide
	Failures []generate.Failure
	Reports  []validate.GuideReport
}

// Run executes the pipeline. It returns an error only for the fatal
// cases: invalid guide selection, an unreadable project root, or a rule
// set that fails to compile. Everything else degrades to a partial,
// explicitly flagged result.
func Run(ctx context.Context, cfg *config.Config, opts Options, svc generate.Service) (*Outcome, error) {
	started := time.Now()

	guides, err := generate.FilterGuides(opts.GuideIDs)
	if err != nil {
		return nil, err
	}
	rules, err := detect.CompileRules(cfg.Domains)
	if err != nil {
		return nil, err
	}

	// Stage 1: scan and seal. Detectors never observe a partial catalog.
	log.Printf("pipeline: scanning %s", opts.Root)
	cat, err := catalog.Scan(opts.Root, catalog.Options{
		Exclude:     cfg.Exclude,
		MaxFileSize: cfg.MaxFileSizeBytes,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("pipeline: cataloged %d files", cat.Len())

	runCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// Stage 2: detector fan-out. The tech-stack detector and the pattern
	// detector run independently; extraction is staged directly behind
	// the pattern detector inside the same task.
	var mu sync.Mutex
	var caps map[string]*analysis.Capability
	var matches []analysis.DomainMatch
	var examples []analysis.CodeExample

	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() {
		detected := detect.DetectTechStack(cat, detect.NewSignatureIndex(cfg.Signatures))
		mu.Lock()
		caps = detected
		mu.Unlock()
	})
	p.Go(func() {
		found := detect.DetectPatterns(cat, rules)
		mu.Lock()
		matches = found
		mu.Unlock()
		if runCtx.Err() != nil {
			return
		}

		_, declared := detect.DeclaredDeps(cat)
		resolver := &extract.StackResolver{Declared: declared, Cat: cat}
		extracted := extract.Extract(cat, found, rules, extract.Limits{
			MaxExamplesPerDomain: cfg.Extraction.MaxExamplesPerDomain,
			MinExampleLines:      cfg.Extraction.MinExampleLines,
			MaxExampleLines:      cfg.Extraction.MaxExampleLines,
			PriorityFiles:        cfg.Extraction.PriorityFiles,
		}, resolver)
		mu.Lock()
		examples = extracted
		mu.Unlock()
	})

	// Barrier: wait for both tasks or abandon them at the deadline and
	// emit whatever partial result exists.
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	partial := false
	select {
	case <-done:
	case <-runCtx.Done():
		partial = true
		log.Printf("WARNING: pipeline: timeout after %s, emitting partial result", opts.Timeout)
	}

	// Stage 3: scoring and assembly, single-threaded.
	mu.Lock()
	result := &analysis.Result{
		SchemaVersion: analysis.SchemaVersion,
		Project: analysis.ProjectMeta{
			Name: projectName(opts.Root),
			Root: opts.Root,
		},
		Capabilities: caps,
		Matches:      matches,
		Examples:     examples,
		Scores:       score.Score(caps, matches, examples, cfg.Scoring),
		Run: analysis.RunMeta{
			RunID:        uuid.NewString(),
			StartedAt:    started.UTC(),
			FilesScanned: cat.Len(),
			Partial:      partial,
			Warnings:     cat.Warnings(),
		},
	}
	mu.Unlock()
	if result.Capabilities == nil {
		result.Capabilities = map[string]*analysis.Capability{}
	}

	outcome := &Outcome{Result: result}

	// Stage 4: generation, one guide at a time behind the rate limiter.
	if !opts.SkipGeneration && svc != nil && !partial {
		var limiter *rate.Limiter
		if cfg.RequestDelay > 0 {
			limiter = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
		}
		outcome.Guides, outcome.Failures = generate.RunBatch(runCtx, svc, result, guides, limiter)

		// Stage 5: validation over whatever was generated.
		engine := &validate.Engine{RequiredSections: cfg.Guides.RequiredSections}
		reports, err := engine.Validate(runCtx, outcome.Guides, result)
		if err != nil {
			log.Printf("WARNING: pipeline: validation aborted: %v", err)
		} else {
			outcome.Reports = reports
			for _, report := range reports {
				if !report.Clean() {
					log.Printf("WARNING: pipeline: guide %q flagged for review (%d issues)",
						report.GuideID, len(report.Issues))
				}
			}
		}
	}

	result.Run.Duration = time.Since(started)

	// Persistence happens last so the document carries the final run
	// metadata; a write failure degrades, it does not discard the run.
	if opts.OutputDir != "" {
		if err := render.WriteAnalysis(opts.OutputDir, result); err != nil {
			log.Printf("WARNING: pipeline: persisting analysis: %v", err)
		}
		if len(outcome.Guides) > 0 {
			if err := render.WriteGuides(opts.OutputDir, outcome.Guides); err != nil {
				log.Printf("WARNING: pipeline: writing guides: %v", err)
			}
		}
		if len(outcome.Reports) > 0 {
			if err := render.WriteReports(opts.OutputDir, outcome.Reports); err != nil {
				log.Printf("WARNING: pipeline: writing reports: %v", err)
			}
		}
	}

	return outcome, nil
}

// projectName derives a display name from the root directory.
func projectName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

// Preflight verifies the project root is readable before anything runs.
func Preflight(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s: not a directory", root)
	}
	return nil
}
