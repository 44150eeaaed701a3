// Package score turns detector outputs into per-domain confidence and
// completeness scores. It is a pure aggregation: no I/O, one pass.
package score

import (
	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/config"
)

// categoryDomains maps capability categories to the domains they count as
// detected configuration for.
var categoryDomains = map[analysis.CapabilityCategory][]analysis.Domain{
	analysis.CategoryAuth:      {analysis.DomainAuthentication},
	analysis.CategoryDatabase:  {analysis.DomainDatabase},
	analysis.CategoryState:     {analysis.DomainState},
	analysis.CategoryFramework: {analysis.DomainComponents},
	analysis.CategoryStyling:   {analysis.DomainComponents},
}

// Score computes a DomainScore for each of the fixed domains.
//
// Confidence is a weighted sum of three binary terms (pattern matches
// present, accepted examples present, configuration detected), clamped to
// [0,1]; the weights are policy from the configuration. Completeness is
// acceptedExamples / max(patternMatches, 1), clamped: a domain with
// matches but no accepted example scores 0 (detected but unverified).
// ReviewRequired flags any domain whose confidence falls below the
// configured threshold.
func Score(caps map[string]*analysis.Capability, matches []analysis.DomainMatch, examples []analysis.CodeExample, policy config.Scoring) map[analysis.Domain]analysis.DomainScore {
	matchCount := make(map[analysis.Domain]int)
	for _, m := range matches {
		matchCount[m.Domain]++
	}

	acceptedCount := make(map[analysis.Domain]int)
	for _, e := range examples {
		acceptedCount[e.Domain]++
	}

	configured := make(map[analysis.Domain]bool)
	for _, c := range caps {
		for _, d := range categoryDomains[c.Category] {
			configured[d] = true
		}
	}

	scores := make(map[analysis.Domain]analysis.DomainScore, len(analysis.AllDomains()))
	for _, domain := range analysis.AllDomains() {
		confidence := 0.0
		if matchCount[domain] > 0 {
			confidence += policy.Weights.Patterns
		}
		if acceptedCount[domain] > 0 {
			confidence += policy.Weights.Examples
		}
		if configured[domain] {
			confidence += policy.Weights.Configuration
		}
		confidence = clamp01(confidence)

		denominator := matchCount[domain]
		if denominator < 1 {
			denominator = 1
		}
		completeness := clamp01(float64(acceptedCount[domain]) / float64(denominator))

		scores[domain] = analysis.DomainScore{
			Domain:         domain,
			Confidence:     confidence,
			Completeness:   completeness,
			ReviewRequired: confidence < policy.ConfidenceThreshold,
		}
	}
	return scores
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
