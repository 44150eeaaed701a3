// Package render writes the pipeline's artifacts: guide markdown files,
// the persisted analysis document, and the validation reports.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/generate"
	"github.com/julianshen/archguide/internal/validate"
)

// AnalysisFilename is the persisted analysis document. Its JSON shape is
// a versioned contract the generation and validation stages depend on.
const AnalysisFilename = "analysis.json"

// ReportsFilename holds the per-guide validation reports.
const ReportsFilename = "validation.json"

// WriteGuides writes each generated guide as <guideID>.md under dir.
func WriteGuides(dir string, guides []generate.GeneratedGuide) error {
	for _, guide := range guides {
		path := filepath.Join(dir, "guides", guide.GuideID+".md")
		content := guide.Markdown
		if guide.Title != "" {
			content = "# " + guide.Title + "\n\n" + content
		}
		if err := writeDoc(path, []byte(content)); err != nil {
			return err
		}
	}
	return nil
}

// WriteAnalysis persists the analysis result for auditability and for the
// downstream stages.
func WriteAnalysis(dir string, result *analysis.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}
	return writeDoc(filepath.Join(dir, AnalysisFilename), append(data, '\n'))
}

// WriteReports persists the validation reports next to the guides.
func WriteReports(dir string, reports []validate.GuideReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling reports: %w", err)
	}
	return writeDoc(filepath.Join(dir, ReportsFilename), append(data, '\n'))
}

// writeDoc creates parent directories and writes content to path.
func writeDoc(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
