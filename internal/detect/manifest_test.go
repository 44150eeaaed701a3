package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/archguide/internal/catalog"
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

func TestIsManifest(t *testing.T) {
	assert.True(t, IsManifest("package.json"))
	assert.True(t, IsManifest("services/api/go.mod"))
	assert.True(t, IsManifest("Gemfile"))
	assert.True(t, IsManifest("requirements.txt"))
	assert.False(t, IsManifest("package-lock.json"))
	assert.False(t, IsManifest("src/index.ts"))
}

func TestParsePackageJSON(t *testing.T) {
	deps := parsePackageJSON([]byte(`{
		"name": "app",
		"dependencies": {"react": "^18.2.0", "zustand": "^4.0.0"},
		"devDependencies": {"typescript": "^5.0.0"}
	}`))
	assert.Equal(t, []string{"react", "typescript", "zustand"}, deps)
}

func TestParsePackageJSONMalformed(t *testing.T) {
	assert.Nil(t, parsePackageJSON([]byte("{not json")))
}

func TestParseGoMod(t *testing.T) {
	deps := parseGoMod([]byte(`module example.com/app

go 1.22

require (
	github.com/gin-gonic/gin v1.9.0
	github.com/lib/pq v1.10.0 // indirect
)

require gopkg.in/yaml.v3 v3.0.1
`))
	assert.Equal(t, []string{
		"github.com/gin-gonic/gin",
		"github.com/lib/pq",
		"gopkg.in/yaml.v3",
	}, deps)
}

func TestParseRequirementsTxt(t *testing.T) {
	deps := parseRequirementsTxt([]byte(`# web
django==4.2
celery>=5.3 ; python_version >= "3.8"
redis[hiredis]~=5.0
-r base.txt

psycopg2
`))
	assert.Equal(t, []string{"django", "celery", "redis", "psycopg2"}, deps)
}

func TestParseGemfile(t *testing.T) {
	deps := parseGemfile([]byte(`source "https://rubygems.org"

gem "rails", "~> 7.1"
gem 'sidekiq'
group :test do
  gem "rspec-rails"
end
`))
	assert.Equal(t, []string{"rails", "sidekiq", "rspec-rails"}, deps)
}

func TestDeclaredDeps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"dependencies": {"react": "^18.0.0"}}`)
	writeFile(t, filepath.Join(dir, "backend", "requirements.txt"), "flask==3.0\n")
	writeFile(t, filepath.Join(dir, "README.md"), "docs\n")

	byManifest, all := DeclaredDeps(scanDir(t, dir))

	require.Len(t, byManifest, 2)
	assert.Equal(t, []string{"react"}, byManifest["package.json"])
	assert.Equal(t, []string{"flask"}, byManifest["backend/requirements.txt"])
	assert.True(t, all["react"])
	assert.True(t, all["flask"])
	assert.False(t, all["docs"])
}
