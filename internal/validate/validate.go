// Package validate re-checks finished documentation against the analysis
// it was generated from. The accuracy, completeness, and consistency
// passes run independently over every guide and their findings are
// unioned; no pass suppresses another.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/generate"
	"github.com/julianshen/archguide/internal/parser"
)

// Issue is one finding from a validation pass.
type Issue struct {
	Pass    string `json:"pass"` // "accuracy", "completeness", "consistency"
	Message string `json:"message"`
}

// GuideReport collects the issues found in one guide.
type GuideReport struct {
	GuideID string  `json:"guideId"`
	Issues  []Issue `json:"issues,omitempty"`
}

// Clean reports whether the guide passed every check.
func (r GuideReport) Clean() bool { return len(r.Issues) == 0 }

// Engine validates generated guides.
type Engine struct {
	RequiredSections []string
}

// Validate runs the three passes concurrently and returns one report per
// guide, in guide order. Quality failures are surfaced as issues, never
// dropped; only context cancellation aborts.
func (e *Engine) Validate(ctx context.Context, guides []generate.GeneratedGuide, result *analysis.Result) ([]GuideReport, error) {
	collected := make([][]Issue, len(guides))
	var mu sync.Mutex
	record := func(i int, issue Issue) {
		mu.Lock()
		collected[i] = append(collected[i], issue)
		mu.Unlock()
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		accuracyPass(guides, result, record)
		return nil
	})
	g.Go(func() error {
		completenessPass(guides, e.RequiredSections, record)
		return nil
	})
	g.Go(func() error {
		consistencyPass(guides, result, record)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reports := make([]GuideReport, len(guides))
	for i, guide := range guides {
		reports[i] = GuideReport{GuideID: guide.GuideID, Issues: collected[i]}
	}
	return reports, nil
}

// ---------- accuracy ----------

// provenanceRe matches the annotation the service attaches to embedded
// examples: <!-- example: path:start-end -->
var provenanceRe = regexp.MustCompile(`<!--\s*example:\s*([^\s:]+):(\d+)-(\d+)\s*-->`)

// codeBlock is a fenced block found in guide markdown.
type codeBlock struct {
	language   string
	body       string
	provenance string // full annotation line preceding the fence, if any
}

// accuracyPass re-parses every embedded code block and cross-checks each
// provenance annotation against the stored examples by file and lines.
func accuracyPass(guides []generate.GeneratedGuide, result *analysis.Result, record func(int, Issue)) {
	p := parser.New()

	stored := make(map[string]bool, len(result.Examples))
	for _, e := range result.Examples {
		stored[fmt.Sprintf("%s:%d-%d", e.Path, e.StartLine, e.EndLine)] = true
	}

	for i, guide := range guides {
		for _, block := range fencedBlocks(guide.Markdown) {
			if block.provenance != "" {
				m := provenanceRe.FindStringSubmatch(block.provenance)
				key := fmt.Sprintf("%s:%s-%s", m[1], m[2], m[3])
				if !stored[key] {
					record(i, Issue{
						Pass:    "accuracy",
						Message: fmt.Sprintf("code block cites %s which is not a stored example", key),
					})
				}
			}
			if block.language != "" && parser.Supported(block.language) {
				valid, err := p.Valid(block.language, []byte(block.body))
				if err == nil && !valid {
					record(i, Issue{
						Pass:    "accuracy",
						Message: fmt.Sprintf("embedded %s code block does not parse", block.language),
					})
				}
			}
		}
	}
}

// fencedBlocks extracts ``` fenced code blocks and any provenance
// annotation on the line directly above the opening fence.
func fencedBlocks(markdown string) []codeBlock {
	lines := strings.Split(markdown, "\n")
	var blocks []codeBlock
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		block := codeBlock{language: normalizeLang(strings.TrimPrefix(trimmed, "```"))}
		if i > 0 && provenanceRe.MatchString(lines[i-1]) {
			block.provenance = lines[i-1]
		}
		var body []string
		j := i + 1
		for ; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				break
			}
			body = append(body, lines[j])
		}
		block.body = strings.Join(body, "\n")
		blocks = append(blocks, block)
		i = j
	}
	return blocks
}

// normalizeLang maps common fence info strings onto parser language names.
func normalizeLang(info string) string {
	switch strings.TrimSpace(info) {
	case "js":
		return "javascript"
	case "ts":
		return "typescript"
	case "py":
		return "python"
	case "golang":
		return "go"
	default:
		return strings.TrimSpace(info)
	}
}

// ---------- completeness ----------

// completenessPass checks every required section heading appears in each
// guide.
func completenessPass(guides []generate.GeneratedGuide, required []string, record func(int, Issue)) {
	for i, guide := range guides {
		headings := map[string]bool{}
		for _, line := range strings.Split(guide.Markdown, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") {
				headings[strings.TrimSpace(strings.TrimLeft(trimmed, "#"))] = true
			}
		}
		for _, section := range required {
			if !headings[section] {
				record(i, Issue{
					Pass:    "completeness",
					Message: fmt.Sprintf("missing required section %q", section),
				})
			}
		}
	}
}

// ---------- consistency ----------

// consistencyPass verifies each detected capability is spelled
// identically across all guides. The guides may agree on any spelling;
// what gets flagged is disagreement, with the majority spelling taken as
// the reference and ties broken toward the capability's configured name.
func consistencyPass(guides []generate.GeneratedGuide, result *analysis.Result, record func(int, Issue)) {
	for _, name := range result.CapabilityNames() {
		short := name
		if idx := strings.Index(name, ":"); idx >= 0 {
			short = name[idx+1:]
		}
		if len(short) < 3 {
			continue // too short to match reliably
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(short) + `\b`)
		if err != nil {
			continue
		}

		// Collect the spellings each guide uses.
		spellingsByGuide := make([]map[string]bool, len(guides))
		counts := map[string]int{}
		for i, guide := range guides {
			spellingsByGuide[i] = map[string]bool{}
			for _, found := range re.FindAllString(guide.Markdown, -1) {
				if !spellingsByGuide[i][found] {
					spellingsByGuide[i][found] = true
					counts[found]++
				}
			}
		}
		if len(counts) <= 1 {
			continue // absent or uniformly spelled
		}

		spellings := make([]string, 0, len(counts))
		for spelling := range counts {
			spellings = append(spellings, spelling)
		}
		sort.Strings(spellings)
		reference := short
		best := counts[short]
		for _, spelling := range spellings {
			if counts[spelling] > best {
				reference, best = spelling, counts[spelling]
			}
		}

		for i := range guides {
			for spelling := range spellingsByGuide[i] {
				if spelling != reference {
					record(i, Issue{
						Pass: "consistency",
						Message: fmt.Sprintf("capability %q spelled %q here but %q elsewhere",
							name, spelling, reference),
					})
					break // one issue per capability per guide
				}
			}
		}
	}
}
