package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

func TestExporter_RoundTrip(t *testing.T) {
	src := core.NewStore()
	_, err := src.Sync(core.Payload{
		"data": map[string]any{
			"type":       "articles",
			"id":         "1",
			"attributes": map[string]any{"title": "Rails is Omakase"},
			"relationships": map[string]any{
				"author": map[string]any{"data": map[string]any{"type": "people", "id": "9"}},
			},
		},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := NewExporter(dir, nil).Export(src)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "articles", "1.json")}, paths, "placeholders are skipped")

	dst := core.NewStore()
	results, err := NewLoader(dir, nil, nil).SyncAll(dst, "**/*.json")
	require.NoError(t, err)
	require.Len(t, results, 1)

	article, ok := dst.Find("articles", "1")
	require.True(t, ok)
	assert.Equal(t, "Rails is Omakase", article.Get("title"))
	assert.Equal(t, "9", article.One("author").ID)
	assert.True(t, article.One("author").IsPlaceholder())
}

func TestExporter_Placeholders(t *testing.T) {
	store := core.NewStore()
	_, err := store.InitOrGet("people", "a/b")
	require.NoError(t, err)

	dir := t.TempDir()
	x := NewExporter(dir, nil)
	paths, err := x.Export(store)
	require.NoError(t, err)
	assert.Empty(t, paths)

	x.IncludePlaceholders = true
	paths, err = x.Export(store)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "people", "a%2Fb.json"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": {"type": "people", "id": "a/b"}}`, string(data))
}

func TestExporter_DotSegmentsStayInDir(t *testing.T) {
	src := core.NewStore()
	for _, rec := range []map[string]any{
		{"type": "..", "id": "escaped"},
		{"type": ".", "id": ".."},
		{"type": "people", "id": ".hidden"},
	} {
		_, err := src.SyncRecord(rec)
		require.NoError(t, err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := NewExporter(dir, nil).Export(src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "%2E.", "escaped.json"),
		filepath.Join(dir, "%2E", "%2E..json"),
		filepath.Join(dir, "people", "%2Ehidden.json"),
	}, paths)

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1, "nothing is written next to the export directory")

	dst := core.NewStore()
	results, err := NewLoader(dir, nil, nil).SyncAll(dst, "**/*.json")
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, ref := range []core.Ref{{Type: "..", ID: "escaped"}, {Type: ".", ID: ".."}, {Type: "people", ID: ".hidden"}} {
		_, ok := dst.Resolve(ref)
		assert.True(t, ok, ref.String())
	}
}

func TestExporter_PathRejectsEmptySegments(t *testing.T) {
	store := core.NewStore()
	e, err := store.InitOrGet("people", "")
	require.NoError(t, err)

	x := NewExporter(t.TempDir(), nil)
	_, err = x.Path(e)
	assert.ErrorIs(t, err, ErrUnsafePath)

	x.IncludePlaceholders = true
	paths, err := x.Export(store)
	assert.ErrorIs(t, err, ErrUnsafePath)
	assert.Empty(t, paths)
}
