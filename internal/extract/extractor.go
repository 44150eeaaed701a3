// Package extract selects and validates bounded code examples for each
// architectural domain. Candidates come from the pattern detector's
// matches; every persisted example re-parses standalone together with its
// recorded leading import block.
package extract

import (
	"log"
	"sort"
	"strings"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/catalog"
	"github.com/julianshen/archguide/internal/detect"
	"github.com/julianshen/archguide/internal/parser"
)

// Limits bounds the extraction pass.
type Limits struct {
	MaxExamplesPerDomain int
	MinExampleLines      int
	MaxExampleLines      int
	PriorityFiles        []string
}

// Resolver answers whether an imported module can be accounted for:
// a declared dependency, a file in the catalog, or a runtime module.
type Resolver interface {
	Resolves(fromPath, language, module string) bool
}

// Extract runs one bounded, terminating extraction pass. Per domain,
// candidates are ranked by priority-file membership, matched-rule count,
// then path; for each candidate the most rule-dense window within the
// line bounds is validated. Syntax failures discard the candidate and the
// next ranked one is tried; unresolved imports only mark the example
// needs-review. The pass stops per domain once MaxExamplesPerDomain
// examples are accepted or candidates run out.
func Extract(cat *catalog.Catalog, matches []analysis.DomainMatch, rules *detect.RuleSet, limits Limits, resolver Resolver) []analysis.CodeExample {
	p := parser.New()
	priority := make(map[string]bool, len(limits.PriorityFiles))
	for _, f := range limits.PriorityFiles {
		priority[f] = true
	}

	byDomain := make(map[analysis.Domain][]analysis.DomainMatch)
	for _, m := range matches {
		byDomain[m.Domain] = append(byDomain[m.Domain], m)
	}

	var examples []analysis.CodeExample
	for _, domain := range analysis.AllDomains() {
		candidates := rank(byDomain[domain], priority)

		accepted := 0
		for _, cand := range candidates {
			if accepted >= limits.MaxExamplesPerDomain {
				break
			}
			example, ok := extractOne(cat, p, rules, limits, resolver, cand)
			if !ok {
				continue
			}
			examples = append(examples, example)
			accepted++
		}
	}
	return examples
}

// rank orders candidates: priority files first, then by matched-rule
// count descending, then by path for a stable final tie-break.
func rank(matches []analysis.DomainMatch, priority map[string]bool) []analysis.DomainMatch {
	ranked := make([]analysis.DomainMatch, len(matches))
	copy(ranked, matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := priority[ranked[i].Path], priority[ranked[j].Path]
		if pi != pj {
			return pi
		}
		if ranked[i].RuleCount() != ranked[j].RuleCount() {
			return ranked[i].RuleCount() > ranked[j].RuleCount()
		}
		return ranked[i].Path < ranked[j].Path
	})
	return ranked
}

// extractOne attempts to produce a validated example from one candidate
// file. Returns false when the candidate must be discarded.
func extractOne(cat *catalog.Catalog, p *parser.Parser, rules *detect.RuleSet, limits Limits, resolver Resolver, cand analysis.DomainMatch) (analysis.CodeExample, bool) {
	entry, ok := cat.Entry(cand.Path)
	if !ok || !entry.ContentBearing() {
		return analysis.CodeExample{}, false
	}
	if !parser.Supported(entry.Language) {
		// Without a grammar the syntax gate cannot run, and unvalidated
		// snippets are never persisted.
		return analysis.CodeExample{}, false
	}

	data, err := cat.Content(cand.Path)
	if err != nil {
		return analysis.CodeExample{}, false
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < limits.MinExampleLines {
		return analysis.CodeExample{}, false
	}

	hits := ruleHitLines(rules.ContentRules(cand.Domain), lines)
	spans := functionSpans(p, entry.Language, data)
	start, end := bestWindow(len(lines), hits, limits, spans)

	snippet := strings.Join(lines[start-1:end], "\n")
	importBlock, importEnd := leadingImports(entry.Language, lines)
	if start <= importEnd {
		importBlock = "" // window already begins inside the import block
	}

	standalone := snippet
	if importBlock != "" {
		standalone = importBlock + "\n\n" + snippet
	}
	valid, err := p.Valid(entry.Language, []byte(standalone))
	if err != nil || !valid {
		log.Printf("WARNING: extract: %s %s:%d-%d failed syntax validation, trying next candidate",
			cand.Domain, cand.Path, start, end)
		return analysis.CodeExample{}, false
	}

	example := analysis.CodeExample{
		Domain:      cand.Domain,
		Path:        cand.Path,
		StartLine:   start,
		EndLine:     end,
		ImportBlock: importBlock,
		Snippet:     snippet,
	}

	for _, module := range importedModules(importBlock) {
		if resolver != nil && !resolver.Resolves(cand.Path, entry.Language, module) {
			example.NeedsReview = true
			example.ReviewReasons = append(example.ReviewReasons, "unresolved import: "+module)
		}
	}
	return example, true
}

// ruleHitLines returns the 1-based lines matched by any content rule.
func ruleHitLines(rules []detect.Rule, lines []string) map[int]bool {
	hits := make(map[int]bool)
	for _, rule := range rules {
		for _, n := range rule.FindLines(lines) {
			hits[n] = true
		}
	}
	return hits
}

// functionSpans parses the file and returns its function spans; a parse
// failure just means no function-aligned candidates.
func functionSpans(p *parser.Parser, language string, data []byte) []parser.FunctionSpan {
	tree, err := p.Parse(language, data)
	if err != nil {
		return nil
	}
	defer tree.Close()
	return tree.Functions()
}

// bestWindow picks the most rule-dense contiguous window within the
// configured bounds. Function-aligned windows are tried first so an
// example covers whole definitions when one fits; plain sliding windows
// are the fallback. Ties keep the earliest window, which makes selection
// deterministic.
func bestWindow(total int, hits map[int]bool, limits Limits, spans []parser.FunctionSpan) (int, int) {
	type window struct{ start, end int }
	var candidates []window

	for _, span := range spans {
		length := span.EndLine - span.StartLine + 1
		if length > limits.MaxExampleLines {
			continue
		}
		start, end := span.StartLine, span.EndLine
		// Grow a short function to the minimum, extending downward first.
		for end-start+1 < limits.MinExampleLines && end < total {
			end++
		}
		for end-start+1 < limits.MinExampleLines && start > 1 {
			start--
		}
		if end-start+1 >= limits.MinExampleLines {
			candidates = append(candidates, window{start, end})
		}
	}

	size := limits.MaxExampleLines
	if size > total {
		size = total
	}
	for start := 1; start+size-1 <= total; start++ {
		candidates = append(candidates, window{start, start + size - 1})
	}

	best := candidates[0]
	bestScore := -1
	for _, w := range candidates {
		score := 0
		for n := w.start; n <= w.end; n++ {
			if hits[n] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = w, score
		}
	}
	return best.start, best.end
}

// leadingImports returns the file's leading import block (imports,
// comments, and blank lines before the first other statement) and the
// line number where it ends.
func leadingImports(language string, lines []string) (string, int) {
	var block []string
	end := 0
	inGoGroup := false
	lastImport := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case inGoGroup:
			block = append(block, line)
			end = i + 1
			if trimmed == ")" {
				inGoGroup = false
				lastImport = end
			}
			continue
		case trimmed == "" || isComment(trimmed):
			block = append(block, line)
			end = i + 1
			continue
		case language == "go" && strings.HasPrefix(trimmed, "package "):
			block = append(block, line)
			end = i + 1
			lastImport = end
			continue
		case strings.HasPrefix(trimmed, "import ("):
			inGoGroup = true
			block = append(block, line)
			end = i + 1
			continue
		case isImportLine(trimmed):
			block = append(block, line)
			end = i + 1
			lastImport = end
			continue
		}
		break
	}

	if lastImport == 0 {
		return "", 0
	}
	return strings.TrimRight(strings.Join(block[:lastImport], "\n"), "\n"), end
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}

func isImportLine(trimmed string) bool {
	for _, prefix := range []string{"import ", "from ", "require ", "require_relative ", "use ", "const "} {
		if strings.HasPrefix(trimmed, prefix) {
			if prefix == "const " {
				return strings.Contains(trimmed, "require(")
			}
			return true
		}
	}
	return false
}

// importedModules pulls quoted module paths (and Python-style bare
// modules) out of an import block.
func importedModules(block string) []string {
	if block == "" {
		return nil
	}
	var modules []string
	seen := map[string]bool{}
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isComment(trimmed) || strings.HasPrefix(trimmed, "package ") {
			continue
		}
		module := quotedModule(trimmed)
		if module == "" {
			module = bareModule(trimmed)
		}
		if module != "" && !seen[module] {
			seen[module] = true
			modules = append(modules, module)
		}
	}
	return modules
}

// quotedModule extracts the first quoted string from an import line.
func quotedModule(line string) string {
	for _, quote := range []byte{'"', '\'', '`'} {
		start := strings.IndexByte(line, quote)
		if start < 0 {
			continue
		}
		rest := line[start+1:]
		end := strings.IndexByte(rest, quote)
		if end >= 0 {
			return rest[:end]
		}
	}
	return ""
}

// bareModule handles unquoted Python "import x" / "from x import y".
func bareModule(line string) string {
	if strings.HasPrefix(line, "from ") {
		rest := strings.TrimPrefix(line, "from ")
		if idx := strings.Index(rest, " import "); idx > 0 {
			return strings.TrimSpace(rest[:idx])
		}
	}
	if strings.HasPrefix(line, "import ") {
		rest := strings.TrimPrefix(line, "import ")
		if idx := strings.IndexAny(rest, " ,("); idx > 0 {
			rest = rest[:idx]
		}
		return strings.TrimSpace(rest)
	}
	return ""
}
