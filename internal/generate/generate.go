// Package generate talks to the external content service that turns an
// analysis result into documentation guides. The service is a
// collaborator: this package defines the request contract, a thin HTTP
// client, and the sequential rate-limited batch runner. Guide prose is
// never produced locally.
package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/time/rate"

	"github.com/julianshen/archguide/internal/analysis"
)

// OverviewGuideID is the one guide not tied to a single domain.
const OverviewGuideID = "overview"

// Guide identifies one documentation guide to generate.
type Guide struct {
	ID     string
	Title  string
	Domain analysis.Domain // empty for the overview guide
}

// AllGuides returns the overview guide plus one guide per domain, in
// canonical order.
func AllGuides() []Guide {
	guides := []Guide{{ID: OverviewGuideID, Title: "Architecture Overview"}}
	for _, d := range analysis.AllDomains() {
		guides = append(guides, Guide{
			ID:     string(d),
			Title:  titleize(string(d)) + " Guide",
			Domain: d,
		})
	}
	return guides
}

// FilterGuides returns the guides whose IDs appear in ids; an empty
// filter keeps everything. Unknown IDs are reported as an error so a
// typo in --guides fails fast.
func FilterGuides(ids []string) ([]Guide, error) {
	all := AllGuides()
	if len(ids) == 0 {
		return all, nil
	}
	known := make(map[string]Guide, len(all))
	for _, g := range all {
		known[g.ID] = g
	}
	var out []Guide
	for _, id := range ids {
		g, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("unknown guide %q", id)
		}
		out = append(out, g)
	}
	return out, nil
}

func titleize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Request is what the content service receives per guide.
type Request struct {
	GuideID  string           `json:"guideId"`
	Model    string           `json:"model,omitempty"`
	Analysis *analysis.Result `json:"analysis"`
}

// GeneratedGuide is one produced document.
type GeneratedGuide struct {
	GuideID  string `json:"guideId"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// Failure records one guide the service could not produce.
type Failure struct {
	GuideID string `json:"guideId"`
	Reason  string `json:"reason"`
}

// Service abstracts the content service for testability.
type Service interface {
	Generate(ctx context.Context, req Request) (GeneratedGuide, error)
}

// RunBatch generates the given guides one at a time, waiting on the rate
// limiter between calls to respect the service's externally imposed
// limits. A failed call is recorded and the batch continues; the only
// abort condition is context cancellation.
func RunBatch(ctx context.Context, svc Service, result *analysis.Result, guides []Guide, limiter *rate.Limiter) ([]GeneratedGuide, []Failure) {
	var produced []GeneratedGuide
	var failures []Failure

	for _, guide := range guides {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				failures = append(failures, Failure{GuideID: guide.ID, Reason: err.Error()})
				return produced, failures
			}
		} else if err := ctx.Err(); err != nil {
			failures = append(failures, Failure{GuideID: guide.ID, Reason: err.Error()})
			return produced, failures
		}

		doc, err := svc.Generate(ctx, Request{GuideID: guide.ID, Analysis: result})
		if err != nil {
			log.Printf("WARNING: generate: guide %q failed: %v", guide.ID, err)
			failures = append(failures, Failure{GuideID: guide.ID, Reason: err.Error()})
			continue
		}
		if doc.Title == "" {
			doc.Title = guide.Title
		}
		produced = append(produced, doc)
	}
	return produced, failures
}
