package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setupFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "fixtures/01-articles.json", `{
		"data": [{"type": "articles", "id": "1", "attributes": {"title": "Hi"},
			"relationships": {"author": {"data": {"type": "people", "id": "9"}}}}],
		"meta": {"page": 1}
	}`)
	writeFile(t, dir, "fixtures/nested/02-people.yaml", `
data:
  type: people
  id: 9
  attributes:
    name: Dan
`)
	writeFile(t, dir, "fixtures/README.md", "# not a payload\n")
	return dir
}

func TestLoader_Match(t *testing.T) {
	dir := setupFixtures(t)
	loader := NewLoader(dir, nil, nil)

	paths, err := loader.Match("fixtures/**/*", "fixtures/*.json")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "fixtures", "01-articles.json"),
		filepath.Join(dir, "fixtures", "nested", "02-people.yaml"),
	}, paths)

	_, err = loader.Match("fixtures/[")
	assert.Error(t, err)

	paths, err = loader.Match("nothing/*.json")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLoader_SyncAll(t *testing.T) {
	dir := setupFixtures(t)
	loader := NewLoader(dir, nil, nil)
	store := core.NewStore()

	results, err := loader.SyncAll(store, "fixtures/**/*")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, map[string]any{"page": float64(1)}, results[0].Meta)

	article := results[0].Primary.One()
	require.NotNil(t, article)
	author := article.One("author")
	require.NotNil(t, author)

	// The YAML file synced later promotes the placeholder in place.
	assert.False(t, author.IsPlaceholder())
	assert.Equal(t, "Dan", author.Get("name"))
	assert.Same(t, author, results[1].Primary.One())
}

func TestLoader_SyncAllStopsAtFirstError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"data": {"type": "tags", "id": "a"}}`)
	writeFile(t, dir, "b.json", `{"data": {"type": "tags"}}`)
	writeFile(t, dir, "c.json", `{"data": {"type": "tags", "id": "c"}}`)

	loader := NewLoader(dir, nil, nil)
	store := core.NewStore()

	results, err := loader.SyncAll(store, "*.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedRecord)
	assert.Contains(t, err.Error(), "b.json")
	assert.Len(t, results, 1)

	_, ok := store.Find("tags", "a")
	assert.True(t, ok)
	_, ok = store.Find("tags", "c")
	assert.False(t, ok)
}

func TestLoader_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"data": `)
	loader := NewLoader(dir, nil, nil)

	_, err := loader.Load(bad)
	assert.Error(t, err)

	_, err = loader.Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = loader.Load(filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)
}
