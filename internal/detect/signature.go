// Package detect implements the two detection stages of the analysis
// core: technology-stack detection against the signature index, and
// architecture-pattern detection against per-domain rule sets.
package detect

import (
	"sort"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/config"
)

// signature is one resolved index row: a marker string naming a
// capability.
type signature struct {
	Marker     string
	Capability string
	Category   analysis.CapabilityCategory
}

// SignatureIndex maps ecosystem marker strings to named capabilities.
// It is pure data, built once from the configured marker tables.
type SignatureIndex struct {
	byMarker map[string]signature
	ordered  []signature // sorted by marker for deterministic iteration
}

// NewSignatureIndex builds the index from the configured tables. The
// capability name is "<category>:<key>", e.g. "framework:react".
func NewSignatureIndex(sigs config.Signatures) *SignatureIndex {
	idx := &SignatureIndex{byMarker: make(map[string]signature)}

	idx.addTable(sigs.Frameworks, analysis.CategoryFramework)
	idx.addTable(sigs.Auth, analysis.CategoryAuth)
	idx.addTable(sigs.Databases, analysis.CategoryDatabase)
	idx.addTable(sigs.State, analysis.CategoryState)
	idx.addTable(sigs.Styling, analysis.CategoryStyling)

	for _, sig := range idx.byMarker {
		idx.ordered = append(idx.ordered, sig)
	}
	sort.Slice(idx.ordered, func(i, j int) bool {
		return idx.ordered[i].Marker < idx.ordered[j].Marker
	})
	return idx
}

func (idx *SignatureIndex) addTable(table map[string][]string, cat analysis.CapabilityCategory) {
	for key, markers := range table {
		name := string(cat) + ":" + key
		for _, marker := range markers {
			idx.byMarker[marker] = signature{Marker: marker, Capability: name, Category: cat}
		}
	}
}

// Lookup resolves a module name against the index. A module matches a
// marker exactly or as a subpath of it ("react/jsx-runtime" matches
// marker "react").
func (idx *SignatureIndex) Lookup(module string) (signature, bool) {
	if sig, ok := idx.byMarker[module]; ok {
		return sig, true
	}
	for _, sig := range idx.ordered {
		if len(module) > len(sig.Marker) &&
			module[:len(sig.Marker)] == sig.Marker &&
			module[len(sig.Marker)] == '/' {
			return sig, true
		}
	}
	return signature{}, false
}

// Len returns the number of distinct markers in the index.
func (idx *SignatureIndex) Len() int { return len(idx.byMarker) }
