package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/archguide/internal/analysis"
	"github.com/julianshen/archguide/internal/catalog"
	"github.com/julianshen/archguide/internal/config"
	"github.com/julianshen/archguide/internal/detect"
	"github.com/julianshen/archguide/internal/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scanDir(t *testing.T, dir string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Scan(dir, catalog.Options{MaxFileSize: 1 << 20})
	require.NoError(t, err)
	return cat
}

func componentRules(t *testing.T, functionPatterns ...string) *detect.RuleSet {
	t.Helper()
	rs, err := detect.CompileRules(map[string]config.DomainRules{
		"components": {
			FilePatterns:     []string{`\.tsx$`},
			FunctionPatterns: functionPatterns,
			ImportPatterns:   []string{`from ['"]react['"]`},
		},
	})
	require.NoError(t, err)
	return rs
}

func testLimits() Limits {
	return Limits{
		MaxExamplesPerDomain: 3,
		MinExampleLines:      3,
		MaxExampleLines:      30,
	}
}

const buttonTSX = `import React from 'react'
import { useState } from 'react'

export default function Button() {
  const [count, setCount] = useState(0)
  return <button onClick={() => setCount(count + 1)}>{count}</button>
}
`

func TestExtractAcceptsValidExample(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "Button.tsx"), buttonTSX)
	cat := scanDir(t, dir)

	matches := []analysis.DomainMatch{{
		Domain:       analysis.DomainComponents,
		Path:         "src/Button.tsx",
		FileRules:    []string{"components/file/0"},
		ContentRules: []string{"components/import/0"},
	}}
	resolver := &StackResolver{Declared: map[string]bool{"react": true}, Cat: cat}

	examples := Extract(cat, matches, componentRules(t, `useState`), testLimits(), resolver)

	require.Len(t, examples, 1)
	ex := examples[0]
	assert.Equal(t, analysis.DomainComponents, ex.Domain)
	assert.Equal(t, "src/Button.tsx", ex.Path)
	assert.GreaterOrEqual(t, ex.StartLine, 1)
	assert.GreaterOrEqual(t, ex.LineCount(), 3)
	assert.LessOrEqual(t, ex.LineCount(), 30)
	assert.Contains(t, ex.Snippet, "function Button")
	assert.False(t, ex.NeedsReview)
	assert.Empty(t, ex.ReviewReasons)
}

func TestExtractUnresolvedImportNeedsReview(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "Widget.tsx"), `import mystery from 'mystery-lib'

export function Widget() {
  const data = mystery.load()
  return <div>{data}</div>
}

export function Other() {
  return <span>ok</span>
}
`)
	cat := scanDir(t, dir)

	matches := []analysis.DomainMatch{{
		Domain:       analysis.DomainComponents,
		Path:         "src/Widget.tsx",
		FileRules:    []string{"components/file/0"},
		ContentRules: []string{"components/function/0"},
	}}
	resolver := &StackResolver{Declared: map[string]bool{"react": true}, Cat: cat}
	limits := testLimits()
	limits.MaxExampleLines = 4

	examples := Extract(cat, matches, componentRules(t, `mystery\.load`), limits, resolver)

	require.Len(t, examples, 1)
	ex := examples[0]
	assert.True(t, ex.NeedsReview)
	assert.Equal(t, []string{"unresolved import: mystery-lib"}, ex.ReviewReasons)
	assert.Contains(t, ex.ImportBlock, "mystery-lib")
	assert.Contains(t, ex.Snippet, "mystery.load")
}

func TestExtractDiscardsSyntaxFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "Broken.tsx"), `import React from 'react'

export function Broken( {
  return <div>
}
`)
	writeFile(t, filepath.Join(dir, "src", "Fine.tsx"), buttonTSX)
	cat := scanDir(t, dir)

	matches := []analysis.DomainMatch{
		{Domain: analysis.DomainComponents, Path: "src/Broken.tsx",
			FileRules: []string{"a", "b"}, ContentRules: []string{"c", "d"}},
		{Domain: analysis.DomainComponents, Path: "src/Fine.tsx",
			FileRules: []string{"a"}, ContentRules: []string{"c"}},
	}
	resolver := &StackResolver{Declared: map[string]bool{"react": true}, Cat: cat}

	// Broken.tsx ranks first on rule count but fails the syntax gate; the
	// next candidate is tried instead of aborting the domain.
	examples := Extract(cat, matches, componentRules(t, `useState`), testLimits(), resolver)

	require.Len(t, examples, 1)
	assert.Equal(t, "src/Fine.tsx", examples[0].Path)
}

func TestExtractHonorsPerDomainCap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "A.tsx"), buttonTSX)
	writeFile(t, filepath.Join(dir, "src", "B.tsx"), buttonTSX)
	cat := scanDir(t, dir)

	matches := []analysis.DomainMatch{
		{Domain: analysis.DomainComponents, Path: "src/A.tsx",
			FileRules: []string{"a"}, ContentRules: []string{"c"}},
		{Domain: analysis.DomainComponents, Path: "src/B.tsx",
			FileRules: []string{"a"}, ContentRules: []string{"c"}},
	}
	resolver := &StackResolver{Declared: map[string]bool{"react": true}, Cat: cat}
	limits := testLimits()
	limits.MaxExamplesPerDomain = 1

	examples := Extract(cat, matches, componentRules(t, `useState`), limits, resolver)
	require.Len(t, examples, 1)
	assert.Equal(t, "src/A.tsx", examples[0].Path)
}

func TestExtractIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "A.tsx"), buttonTSX)
	writeFile(t, filepath.Join(dir, "src", "B.tsx"), buttonTSX)
	cat := scanDir(t, dir)

	matches := []analysis.DomainMatch{
		{Domain: analysis.DomainComponents, Path: "src/B.tsx",
			FileRules: []string{"a"}, ContentRules: []string{"c"}},
		{Domain: analysis.DomainComponents, Path: "src/A.tsx",
			FileRules: []string{"a"}, ContentRules: []string{"c"}},
	}
	resolver := &StackResolver{Declared: map[string]bool{"react": true}, Cat: cat}

	first := Extract(cat, matches, componentRules(t, `useState`), testLimits(), resolver)
	second := Extract(cat, matches, componentRules(t, `useState`), testLimits(), resolver)
	assert.Equal(t, first, second)
}

func TestExtractExamplesReparseStandalone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "Button.tsx"), buttonTSX)
	writeFile(t, filepath.Join(dir, "src", "Widget.tsx"), `import mystery from 'mystery-lib'

export function Widget() {
  const data = mystery.load()
  return <div>{data}</div>
}

export function Other() {
  return <span>ok</span>
}
`)
	cat := scanDir(t, dir)

	matches := []analysis.DomainMatch{
		{Domain: analysis.DomainComponents, Path: "src/Button.tsx",
			FileRules: []string{"a"}, ContentRules: []string{"c"}},
		{Domain: analysis.DomainComponents, Path: "src/Widget.tsx",
			FileRules: []string{"a"}, ContentRules: []string{"c"}},
	}
	resolver := &StackResolver{Declared: map[string]bool{"react": true}, Cat: cat}
	limits := testLimits()
	limits.MaxExampleLines = 4

	examples := Extract(cat, matches, componentRules(t, `useState`, `mystery\.load`), limits, resolver)
	require.NotEmpty(t, examples)

	withImports := 0
	for _, ex := range examples {
		if ex.ImportBlock != "" {
			withImports++
		}
	}
	require.Positive(t, withImports, "no example exercises import reattachment")

	// Every stored snippet plus its recorded import block must parse on
	// its own.
	p := parser.New()
	for _, ex := range examples {
		standalone := ex.Snippet
		if ex.ImportBlock != "" {
			standalone = ex.ImportBlock + "\n\n" + ex.Snippet
		}
		entry, ok := cat.Entry(ex.Path)
		require.True(t, ok)
		valid, err := p.Valid(entry.Language, []byte(standalone))
		require.NoError(t, err, ex.Path)
		assert.True(t, valid, "%s:%d-%d does not re-parse", ex.Path, ex.StartLine, ex.EndLine)
	}
}

func TestRankOrdering(t *testing.T) {
	matches := []analysis.DomainMatch{
		{Path: "z.ts", FileRules: []string{"a"}, ContentRules: []string{"b"}},
		{Path: "a.ts", FileRules: []string{"a"}, ContentRules: []string{"b"}},
		{Path: "dense.ts", FileRules: []string{"a", "b"}, ContentRules: []string{"c", "d"}},
		{Path: "src/auth.ts", FileRules: []string{"a"}, ContentRules: []string{"b"}},
	}
	ranked := rank(matches, map[string]bool{"src/auth.ts": true})

	var paths []string
	for _, m := range ranked {
		paths = append(paths, m.Path)
	}
	// Priority file first, then rule count, then path.
	assert.Equal(t, []string{"src/auth.ts", "dense.ts", "a.ts", "z.ts"}, paths)
}

func TestLeadingImportsGoGroup(t *testing.T) {
	lines := []string{
		"package server",
		"",
		"import (",
		"\t\"fmt\"",
		"\t\"net/http\"",
		")",
		"",
		"func main() {}",
	}
	block, end := leadingImports("go", lines)
	assert.Equal(t, 7, end)
	assert.Contains(t, block, "package server")
	assert.Contains(t, block, "\"net/http\"")
	assert.NotContains(t, block, "func main")
}

func TestLeadingImportsNone(t *testing.T) {
	block, end := leadingImports("typescript", []string{"const x = 1", "import later from 'x'"})
	assert.Empty(t, block)
	assert.Zero(t, end)
}

func TestImportedModules(t *testing.T) {
	modules := importedModules(`import React from 'react'
import { create } from "zustand"
from django.db import models
const knex = require('knex')
import os`)
	assert.Equal(t, []string{"react", "zustand", "django.db", "knex", "os"}, modules)
}

func TestBestWindowPrefersRuleDenseRegion(t *testing.T) {
	limits := Limits{MinExampleLines: 3, MaxExampleLines: 5}
	start, end := bestWindow(20, map[int]bool{12: true, 13: true, 15: true}, limits, nil)
	assert.LessOrEqual(t, start, 12)
	assert.GreaterOrEqual(t, end, 15)
	assert.Equal(t, 5, end-start+1)
}

func TestStackResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "lib", "api.ts"), "export {}\n")
	writeFile(t, filepath.Join(dir, "src", "App.tsx"), "import api from './lib/api'\n")
	cat := scanDir(t, dir)

	r := &StackResolver{
		Declared: map[string]bool{"react": true, "@supabase/supabase-js": true},
		Cat:      cat,
	}

	assert.True(t, r.Resolves("src/App.tsx", "tsx", "./lib/api"))
	assert.False(t, r.Resolves("src/App.tsx", "tsx", "./lib/missing"))
	assert.True(t, r.Resolves("src/App.tsx", "tsx", "react"))
	assert.True(t, r.Resolves("src/App.tsx", "tsx", "@supabase/supabase-js/dist/module"))
	assert.False(t, r.Resolves("src/App.tsx", "tsx", "left-pad"))

	// Go stdlib needs no declaration; module paths with a dotted host do.
	assert.True(t, r.Resolves("main.go", "go", "net/http"))
	assert.False(t, r.Resolves("main.go", "go", "github.com/lib/pq"))

	// Bare Python names pass as potential stdlib.
	assert.True(t, r.Resolves("app.py", "python", "os"))
}
