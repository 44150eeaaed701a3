// Package analysis defines the shared data model for the codebase analysis
// pipeline: detected capabilities, domain matches, validated code examples,
// and the scored result handed to the documentation generator.
package analysis

import (
	"sort"
	"time"
)

// SchemaVersion identifies the persisted analysis document format.
// Bump when the JSON shape of Result changes.
const SchemaVersion = "1"

// Domain is one of the fixed architectural categories the pipeline scores.
type Domain string

const (
	DomainAuthentication Domain = "authentication"
	DomainComponents     Domain = "components"
	DomainState          Domain = "state"
	DomainJobs           Domain = "jobs"
	DomainStorage        Domain = "storage"
	DomainDatabase       Domain = "database"
	DomainErrors         Domain = "errors"
	DomainTesting        Domain = "testing"
	DomainIntegration    Domain = "integration"
	DomainDeployment     Domain = "deployment"
)

// AllDomains returns the ten fixed domains in canonical order.
func AllDomains() []Domain {
	return []Domain{
		DomainAuthentication,
		DomainComponents,
		DomainState,
		DomainJobs,
		DomainStorage,
		DomainDatabase,
		DomainErrors,
		DomainTesting,
		DomainIntegration,
		DomainDeployment,
	}
}

// IsValidDomain reports whether d names one of the fixed domains.
func IsValidDomain(d Domain) bool {
	for _, known := range AllDomains() {
		if d == known {
			return true
		}
	}
	return false
}

// CapabilityCategory groups capabilities by the kind of technology they name.
type CapabilityCategory string

const (
	CategoryFramework CapabilityCategory = "framework"
	CategoryAuth      CapabilityCategory = "auth"
	CategoryDatabase  CapabilityCategory = "database"
	CategoryState     CapabilityCategory = "state"
	CategoryStyling   CapabilityCategory = "styling"
)

// Capability is a detected technology fact tied to supporting evidence.
// A Capability never exists with zero evidence paths.
type Capability struct {
	Name     string             `json:"name"`     // e.g. "framework:react"
	Category CapabilityCategory `json:"category"` //
	Markers  []string           `json:"markers"`  // marker strings that matched
	Evidence []string           `json:"evidence"` // file paths, sorted, unique
	Weight   float64            `json:"weight"`   // summed vote weight
}

// AddEvidence records a marker hit from the given file. Duplicate markers
// and paths are kept unique; evidence stays sorted for determinism.
func (c *Capability) AddEvidence(marker, path string, weight float64) {
	c.Markers = insertSorted(c.Markers, marker)
	c.Evidence = insertSorted(c.Evidence, path)
	c.Weight += weight
}

func insertSorted(list []string, s string) []string {
	i := sort.SearchStrings(list, s)
	if i < len(list) && list[i] == s {
		return list
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}

// RuleDimension distinguishes the three kinds of pattern rules.
type RuleDimension string

const (
	DimensionFile     RuleDimension = "file"
	DimensionFunction RuleDimension = "function"
	DimensionImport   RuleDimension = "import"
)

// DomainMatch records a file's corroborated membership in a domain:
// at least one file-dimension rule and one content-dimension rule matched.
type DomainMatch struct {
	Domain       Domain   `json:"domain"`
	Path         string   `json:"path"`
	FileRules    []string `json:"fileRules"`    // matched filePattern rule IDs
	ContentRules []string `json:"contentRules"` // matched function/import rule IDs
}

// RuleCount returns the total number of rules the file matched.
func (m DomainMatch) RuleCount() int {
	return len(m.FileRules) + len(m.ContentRules)
}

// CodeExample is a validated, length-bounded source excerpt for a domain.
// StartLine and EndLine are 1-based and inclusive; Snippet is the excerpt
// text and ImportBlock the file's leading imports that were reattached
// during validation.
type CodeExample struct {
	Domain        Domain   `json:"domain"`
	Path          string   `json:"path"`
	StartLine     int      `json:"startLine"`
	EndLine       int      `json:"endLine"`
	ImportBlock   string   `json:"importBlock,omitempty"`
	Snippet       string   `json:"snippet"`
	NeedsReview   bool     `json:"needsReview"`
	ReviewReasons []string `json:"reviewReasons,omitempty"`
}

// LineCount returns the number of lines the snippet spans.
func (e CodeExample) LineCount() int {
	return e.EndLine - e.StartLine + 1
}

// DomainScore holds the heuristic quality scores for one domain.
type DomainScore struct {
	Domain         Domain  `json:"domain"`
	Confidence     float64 `json:"confidence"`
	Completeness   float64 `json:"completeness"`
	ReviewRequired bool    `json:"reviewRequired"`
}

// Warning records a non-fatal condition encountered during a run.
type Warning struct {
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason"`
}

// RunMeta carries run identification and accounting for a single pipeline
// invocation.
type RunMeta struct {
	RunID        string        `json:"runId"`
	StartedAt    time.Time     `json:"startedAt"`
	Duration     time.Duration `json:"duration"`
	FilesScanned int           `json:"filesScanned"`
	Partial      bool          `json:"partial"`
	Warnings     []Warning     `json:"warnings,omitempty"`
}

// ProjectMeta identifies the analyzed project.
type ProjectMeta struct {
	Name string `json:"name"`
	Root string `json:"root"`
}

// Result is the immutable handoff object aggregating everything the
// detectors and scorer produced. It is persisted as a versioned JSON
// document that the generation and validation stages depend on.
type Result struct {
	SchemaVersion string                 `json:"schemaVersion"`
	Project       ProjectMeta            `json:"project"`
	Capabilities  map[string]*Capability `json:"capabilities"`
	Matches       []DomainMatch          `json:"matches"`
	Examples      []CodeExample          `json:"examples"`
	Scores        map[Domain]DomainScore `json:"scores"`
	Run           RunMeta                `json:"run"`
}

// MatchesForDomain returns the matches belonging to the given domain,
// preserving their stored order.
func (r *Result) MatchesForDomain(d Domain) []DomainMatch {
	var out []DomainMatch
	for _, m := range r.Matches {
		if m.Domain == d {
			out = append(out, m)
		}
	}
	return out
}

// ExamplesForDomain returns the examples belonging to the given domain.
func (r *Result) ExamplesForDomain(d Domain) []CodeExample {
	var out []CodeExample
	for _, e := range r.Examples {
		if e.Domain == d {
			out = append(out, e)
		}
	}
	return out
}

// CapabilityNames returns all detected capability names in sorted order.
func (r *Result) CapabilityNames() []string {
	names := make([]string, 0, len(r.Capabilities))
	for name := range r.Capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
