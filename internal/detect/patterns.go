package detect

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/catalog"
	"github.com/julianshen/archguide/internal/config"
)

// Rule is one compiled pattern rule. Rules are loaded at startup and
// never mutated.
type Rule struct {
	ID        string
	Domain    analysis.Domain
	Dimension analysis.RuleDimension
	re        *regexp.Regexp
}

// Matches reports whether the rule matches the given text (a path for
// file-dimension rules, file content otherwise).
func (r Rule) Matches(text string) bool {
	return r.re.MatchString(text)
}

// FindLines returns the 1-based line numbers of content lines the rule
// matches.
func (r Rule) FindLines(lines []string) []int {
	var hits []int
	for i, line := range lines {
		if r.re.MatchString(line) {
			hits = append(hits, i+1)
		}
	}
	return hits
}

// RuleSet holds the compiled per-domain rules, split by dimension.
type RuleSet struct {
	file    map[analysis.Domain][]Rule
	content map[analysis.Domain][]Rule // function + import dimensions
	domains []analysis.Domain
}

// CompileRules compiles the configured domain rule tables. Patterns were
// already syntax-checked at config load, so compile errors here indicate
// a config that bypassed validation.
func CompileRules(domains map[string]config.DomainRules) (*RuleSet, error) {
	rs := &RuleSet{
		file:    make(map[analysis.Domain][]Rule),
		content: make(map[analysis.Domain][]Rule),
	}

	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		domain := analysis.Domain(name)
		rules := domains[name]

		fileRules, err := compileDimension(domain, analysis.DimensionFile, rules.FilePatterns)
		if err != nil {
			return nil, err
		}
		funcRules, err := compileDimension(domain, analysis.DimensionFunction, rules.FunctionPatterns)
		if err != nil {
			return nil, err
		}
		importRules, err := compileDimension(domain, analysis.DimensionImport, rules.ImportPatterns)
		if err != nil {
			return nil, err
		}

		rs.file[domain] = fileRules
		rs.content[domain] = append(funcRules, importRules...)
		rs.domains = append(rs.domains, domain)
	}

	return rs, nil
}

func compileDimension(domain analysis.Domain, dim analysis.RuleDimension, patterns []string) ([]Rule, error) {
	var rules []Rule
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling %s %s pattern %q: %w", domain, dim, p, err)
		}
		rules = append(rules, Rule{
			ID:        fmt.Sprintf("%s/%s/%d", domain, dim, i),
			Domain:    domain,
			Dimension: dim,
			re:        re,
		})
	}
	return rules, nil
}

// Domains returns the domains the rule set covers, sorted.
func (rs *RuleSet) Domains() []analysis.Domain { return rs.domains }

// ContentRules returns the content-dimension (function + import) rules
// for a domain. The extractor reuses these to locate rule-dense regions.
func (rs *RuleSet) ContentRules(d analysis.Domain) []Rule { return rs.content[d] }

// DetectPatterns matches every catalog entry against the rule set. A file
// counts toward a domain only with both path-level and content-level
// corroboration: at least one file-dimension rule and at least one
// function- or import-dimension rule. Iteration follows the catalog's
// emission order; at most one match exists per (domain, file).
func DetectPatterns(cat *catalog.Catalog, rs *RuleSet) []analysis.DomainMatch {
	var matches []analysis.DomainMatch

	for _, entry := range cat.Entries() {
		var content string
		contentLoaded := false

		for _, domain := range rs.domains {
			var fileHits []string
			for _, rule := range rs.file[domain] {
				if rule.Matches(entry.Path) {
					fileHits = append(fileHits, rule.ID)
				}
			}
			if len(fileHits) == 0 {
				continue
			}

			// Path matched; content-level corroboration required.
			if !entry.ContentBearing() {
				continue
			}
			if !contentLoaded {
				data, err := cat.Content(entry.Path)
				if err != nil {
					break
				}
				content = string(data)
				contentLoaded = true
			}

			var contentHits []string
			for _, rule := range rs.content[domain] {
				if rule.Matches(content) {
					contentHits = append(contentHits, rule.ID)
				}
			}
			if len(contentHits) == 0 {
				continue
			}

			matches = append(matches, analysis.DomainMatch{
				Domain:       domain,
				Path:         entry.Path,
				FileRules:    fileHits,
				ContentRules: contentHits,
			})
		}
	}

	return matches
}
