package detect

import (
	"regexp"
	"strings"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/catalog"
)

// Vote weights. Declared manifest dependencies are trusted more than
// import occurrences inferred from source text.
const (
	manifestVoteWeight = 1.0
	importVoteWeight   = 0.5
)

// importLineRe pulls a quoted module path out of an import or require
// line in any of the supported source languages.
var importLineRe = regexp.MustCompile(
	`(?m)^\s*(?:import\b[^"'` + "`" + `\n]*|.*\brequire\s*\(?\s*|from\s+)["'` + "`" + `]([^"'` + "`" + `\n]+)["'` + "`" + `]`)

// pythonImportRe matches unquoted Python imports.
var pythonImportRe = regexp.MustCompile(`(?m)^\s*(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import\b)`)

// sourceLanguages are the languages scanned for import occurrences.
var sourceLanguages = map[string]bool{
	"go":         true,
	"python":     true,
	"javascript": true,
	"typescript": true,
	"tsx":        true,
	"java":       true,
	"ruby":       true,
	"rust":       true,
}

// DetectTechStack scans manifests and source imports against the
// signature index and returns the evidenced capabilities keyed by name.
// Equally evidenced capabilities all survive; the detector never picks a
// single winner between genuinely ambiguous markers.
func DetectTechStack(cat *catalog.Catalog, idx *SignatureIndex) map[string]*analysis.Capability {
	caps := make(map[string]*analysis.Capability)

	vote := func(module, evidencePath string, weight float64) {
		sig, ok := idx.Lookup(module)
		if !ok {
			return
		}
		cap, ok := caps[sig.Capability]
		if !ok {
			cap = &analysis.Capability{Name: sig.Capability, Category: sig.Category}
			caps[sig.Capability] = cap
		}
		cap.AddEvidence(sig.Marker, evidencePath, weight)
	}

	// Declared dependencies: weight 1.0 per hit.
	byManifest, _ := DeclaredDeps(cat)
	for manifestPath, deps := range byManifest {
		for _, dep := range deps {
			vote(dep, manifestPath, manifestVoteWeight)
		}
	}

	// Inferred imports in non-manifest source files: weight 0.5.
	for _, entry := range cat.Entries() {
		if IsManifest(entry.Path) || !entry.ContentBearing() || !sourceLanguages[entry.Language] {
			continue
		}
		data, err := cat.Content(entry.Path)
		if err != nil {
			continue
		}
		for _, module := range importOccurrences(entry.Language, data) {
			vote(module, entry.Path, importVoteWeight)
		}
	}

	return caps
}

// importOccurrences extracts imported module names from source text. This
// is a textual scan, not a parse: declared manifests carry the trusted
// signal and this only adds corroborating half-votes.
func importOccurrences(language string, data []byte) []string {
	text := string(data)
	var modules []string
	seen := map[string]bool{}

	add := func(m string) {
		m = strings.TrimSpace(m)
		if m != "" && !seen[m] {
			seen[m] = true
			modules = append(modules, m)
		}
	}

	for _, m := range importLineRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	if language == "python" {
		for _, m := range pythonImportRe.FindAllStringSubmatch(text, -1) {
			module := m[1]
			if module == "" {
				module = m[2]
			}
			// Dotted imports vote as their root package.
			if dot := strings.Index(module, "."); dot > 0 {
				module = module[:dot]
			}
			add(module)
		}
	}
	return modules
}
