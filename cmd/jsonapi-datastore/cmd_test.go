package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	datastore "github.com/Archelyst/jsonapi-datastore"
)

// execute runs the root command with args and returns what it printed on stdout.
// Flag variables are package globals, so they are reset before every run.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, logFormat, baseDir, strict = false, "text", ".", false
	syncJSON, syncFind, syncType, syncDiagram, syncOut = false, "", "", false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSync_Summary(t *testing.T) {
	out, err := execute(t, "sync", "--dir", "testdata", "payloads/*")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "sync_summary", []byte(out))
}

func TestSync_Find(t *testing.T) {
	out, err := execute(t, "sync", "--dir", "testdata", "payloads/*", "--find", "comments/12")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	data := doc["data"].(map[string]any)
	assert.Equal(t, "comments", data["type"])
	assert.Equal(t, "12", data["id"])
	assert.Equal(t, map[string]any{"body": "I like XML better"}, data["attributes"])
	assert.Equal(t,
		map[string]any{"author": map[string]any{"data": map[string]any{"type": "people", "id": "9"}}},
		data["relationships"])
}

func TestSync_FindErrors(t *testing.T) {
	_, err := execute(t, "sync", "--dir", "testdata", "payloads/*", "--find", "people/404")
	assert.ErrorIs(t, err, datastore.ErrNotFound)

	_, err = execute(t, "sync", "--dir", "testdata", "payloads/*", "--find", "people")
	assert.ErrorContains(t, err, "want type/id")
}

func TestSync_Type(t *testing.T) {
	out, err := execute(t, "sync", "--dir", "testdata", "payloads/*", "--type", "organizations")
	require.NoError(t, err)
	assert.Equal(t, "acme (placeholder)\n", out)

	out, err = execute(t, "sync", "--dir", "testdata", "payloads/*", "--type", "people")
	require.NoError(t, err)
	assert.Equal(t, "9\n2\n", out)
}

func TestSync_JSONState(t *testing.T) {
	out, err := execute(t, "sync", "--dir", "testdata", "payloads/*", "--json")
	require.NoError(t, err)

	var state datastore.StoreState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, 4, state.Types)
	assert.Equal(t, 6, state.Entities)
	assert.Equal(t, 1, state.Placeholders)
	assert.Equal(t, uint64(2), state.Syncs)
	assert.Equal(t, uint64(5), state.Records)
	assert.NotNil(t, state.LastSync)
}

func TestSync_Diagram(t *testing.T) {
	out, err := execute(t, "sync", "--dir", "testdata", "payloads/*", "--diagram")
	require.NoError(t, err)
	assert.Contains(t, out, "organizations")
	assert.Contains(t, out, "articles")
}

func TestSync_Errors(t *testing.T) {
	_, err := execute(t, "sync")
	assert.Error(t, err, "at least one pattern is required")

	_, err = execute(t, "sync", "--log-format", "xml", "payloads/*")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestSync_Out(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "sync", "--dir", "testdata", "payloads/*", "--out", dir)
	require.NoError(t, err)

	// organizations/acme is still a placeholder and is not written.
	for _, name := range []string{"articles/1.json", "comments/5.json", "comments/12.json", "people/9.json", "people/2.json"} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(name)))
	}
	assert.NoDirExists(t, filepath.Join(dir, "organizations"))

	data, err := os.ReadFile(filepath.Join(dir, "people", "2.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": {"type": "people", "id": "2", "attributes": {"first-name": "Ada", "last-name": "Lovelace"}}}`, string(data))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jsonapi-datastore version "+datastore.Version+"\n", out)
}

// syncBuffer guards the watch output, which is written by the watch loop while
// the test polls it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch_ResyncsWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	baseDir, strict, watchBuffer = dir, false, 64
	t.Cleanup(func() { baseDir = "." })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "people.json"),
		[]byte(`{"data": {"type": "people", "id": "9"}}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, "*.json", out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "CREATE people/9")
	}, 5*time.Second, 20*time.Millisecond)

	// The watcher is registered after the initial load; keep rewriting until it sees one.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "people.json"),
			[]byte(`{"data": {"type": "people", "id": "9", "attributes": {"name": "dgeb"}}}`), 0o644)
		return strings.Contains(out.String(), "UPDATE people/9")
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
