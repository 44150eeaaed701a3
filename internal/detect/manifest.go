package detect

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/julianshen/archguide/internal/catalog"
)

// manifestParser knows how to pull declared dependency names out of one
// manifest format.
type manifestParser struct {
	filename string
	parse    func(data []byte) []string
}

// manifestParsers covers the ecosystems the detector understands. Order
// is fixed so runs are deterministic.
var manifestParsers = []manifestParser{
	{filename: "package.json", parse: parsePackageJSON},
	{filename: "go.mod", parse: parseGoMod},
	{filename: "requirements.txt", parse: parseRequirementsTxt},
	{filename: "Gemfile", parse: parseGemfile},
}

// IsManifest reports whether the path names a recognized dependency
// manifest (at any directory depth).
func IsManifest(relPath string) bool {
	base := path.Base(relPath)
	for _, p := range manifestParsers {
		if p.filename == base {
			return true
		}
	}
	return false
}

// DeclaredDeps parses every manifest in the catalog and returns the
// declared dependency names keyed by the manifest path that declared
// them, plus the union set of all names.
func DeclaredDeps(cat *catalog.Catalog) (byManifest map[string][]string, all map[string]bool) {
	byManifest = make(map[string][]string)
	all = make(map[string]bool)

	for _, entry := range cat.Entries() {
		if !IsManifest(entry.Path) || !entry.ContentBearing() {
			continue
		}
		base := path.Base(entry.Path)
		for _, p := range manifestParsers {
			if p.filename != base {
				continue
			}
			data, err := cat.Content(entry.Path)
			if err != nil {
				continue
			}
			deps := p.parse(data)
			if len(deps) == 0 {
				continue
			}
			byManifest[entry.Path] = deps
			for _, d := range deps {
				all[d] = true
			}
		}
	}
	return byManifest, all
}

// parsePackageJSON returns the names under dependencies and
// devDependencies.
func parsePackageJSON(data []byte) []string {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}
	var deps []string
	for name := range manifest.Dependencies {
		deps = append(deps, name)
	}
	for name := range manifest.DevDependencies {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

// parseGoMod returns the module paths in require directives.
func parseGoMod(data []byte) []string {
	var deps []string
	inBlock := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "require (":
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock:
			if fields := strings.Fields(line); len(fields) >= 2 {
				deps = append(deps, fields[0])
			}
		case strings.HasPrefix(line, "require "):
			if fields := strings.Fields(line); len(fields) >= 3 {
				deps = append(deps, fields[1])
			}
		}
	}
	return deps
}

// parseRequirementsTxt returns package names, stripping version
// constraints and environment markers.
func parseRequirementsTxt(data []byte) []string {
	var deps []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		for _, sep := range []string{"==", ">=", "<=", "~=", ">", "<", "!=", ";", "["} {
			if idx := strings.Index(line, sep); idx >= 0 {
				line = line[:idx]
			}
		}
		if line = strings.TrimSpace(line); line != "" {
			deps = append(deps, line)
		}
	}
	return deps
}

var gemfileRe = regexp.MustCompile(`^\s*gem\s+['"]([^'"]+)['"]`)

// parseGemfile returns the gem names declared with gem "name".
func parseGemfile(data []byte) []string {
	var deps []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if m := gemfileRe.FindStringSubmatch(scanner.Text()); m != nil {
			deps = append(deps, m[1])
		}
	}
	return deps
}
