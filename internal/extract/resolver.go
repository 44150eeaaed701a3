package extract

import (
	"path"
	"strings"

	"github.com/julianshen/archguide/internal/catalog"
)

// StackResolver resolves imports against the scanned project: relative
// paths against the catalog, bare module names against the declared
// manifest dependencies, with per-language allowances for runtime and
// standard-library modules that no manifest declares.
type StackResolver struct {
	Declared map[string]bool
	Cat      *catalog.Catalog
}

// relExtensions are tried when a relative import omits its extension, the
// way JS/TS module resolution does.
var relExtensions = []string{
	"", ".ts", ".tsx", ".js", ".jsx", ".vue", ".py", ".rb",
	"/index.ts", "/index.tsx", "/index.js",
}

// Resolves implements Resolver.
func (r *StackResolver) Resolves(fromPath, language, module string) bool {
	if strings.HasPrefix(module, "./") || strings.HasPrefix(module, "../") {
		return r.resolveRelative(fromPath, module)
	}

	if r.declared(module) {
		return true
	}

	switch language {
	case "go":
		// Stdlib paths have no dot in the first segment.
		first := module
		if idx := strings.Index(module, "/"); idx >= 0 {
			first = module[:idx]
		}
		return !strings.Contains(first, ".")
	case "python", "ruby":
		// A bare single-segment name is indistinguishable from stdlib;
		// only dotted/pathed modules must be accounted for.
		return !strings.ContainsAny(module, "/")
	default:
		return false
	}
}

func (r *StackResolver) declared(module string) bool {
	if r.Declared[module] {
		return true
	}
	// Subpath imports resolve to their declaring package:
	// "@supabase/supabase-js/dist/x" or "lodash/merge".
	for dep := range r.Declared {
		if strings.HasPrefix(module, dep+"/") {
			return true
		}
	}
	return false
}

func (r *StackResolver) resolveRelative(fromPath, module string) bool {
	if r.Cat == nil {
		return false
	}
	base := path.Join(path.Dir(fromPath), module)
	for _, ext := range relExtensions {
		if _, ok := r.Cat.Entry(base + ext); ok {
			return true
		}
	}
	return false
}
