package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	datastore "github.com/Archelyst/jsonapi-datastore"
	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/fs"
)

var (
	syncJSON    bool
	syncFind    string
	syncType    string
	syncDiagram bool
	syncOut     string
)

var syncCmd = &cobra.Command{
	Use:   "sync [pattern...]",
	Short: "Sync payload files into a fresh store and report on the graph",
	Long: `Sync every JSON:API payload file matching the given glob patterns (in sorted
path order) and print a summary. Use --find to print one entity as a JSON:API
document, --type to list the ids of one type, --json for the store state.
With --out every synced entity is also written as its own document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, files, err := datastore.Load(args, storeOptions()...)
		if err != nil {
			return err
		}

		if syncOut != "" {
			paths, err := fs.NewExporter(syncOut, slog.Default()).Export(store)
			if err != nil {
				return err
			}
			slog.Info("store exported", "dir", syncOut, "files", len(paths))
		}

		out := cmd.OutOrStdout()
		switch {
		case syncFind != "":
			return printEntity(out, store, syncFind)
		case syncType != "":
			for _, e := range store.FindAll(syncType) {
				if e.IsPlaceholder() {
					fmt.Fprintf(out, "%s (placeholder)\n", e.ID)
					continue
				}
				fmt.Fprintln(out, e.ID)
			}
			return nil
		case syncJSON:
			return encodeJSON(out, store.State())
		case syncDiagram:
			printDiagram(out, store)
			return nil
		default:
			printSummary(out, store, files)
			return nil
		}
	},
}

func parseRef(s string) (datastore.Ref, error) {
	typ, id, ok := strings.Cut(s, "/")
	if !ok || typ == "" || id == "" {
		return datastore.Ref{}, fmt.Errorf("invalid reference %q (want type/id)", s)
	}
	return datastore.Ref{Type: typ, ID: id}, nil
}

func printEntity(out io.Writer, store *datastore.Store, ref string) error {
	r, err := parseRef(ref)
	if err != nil {
		return err
	}
	e, ok := store.Resolve(r)
	if !ok {
		return fmt.Errorf("%s: %w", r, datastore.ErrNotFound)
	}
	return encodeJSON(out, e.Serialize())
}

func encodeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func printSummary(out io.Writer, store *datastore.Store, files []datastore.FileResult) {
	fmt.Fprintln(out, "files:")
	for _, f := range files {
		fmt.Fprintf(out, "  %s: %d primary\n", displayPath(f.Path), f.Primary.Len())
	}
	fmt.Fprintln(out, "types:")
	for _, typ := range store.Types() {
		entities := store.FindAll(typ)
		if n := countPlaceholders(entities); n > 0 {
			fmt.Fprintf(out, "  %s: %d (placeholders: %d)\n", typ, len(entities), n)
			continue
		}
		fmt.Fprintf(out, "  %s: %d\n", typ, len(entities))
	}
	fmt.Fprintf(out, "entities: %d\n", store.Len())
}

func displayPath(path string) string {
	if rel, err := filepath.Rel(baseDir, path); err == nil {
		path = rel
	}
	return filepath.ToSlash(path)
}

func countPlaceholders(entities []*datastore.Entity) int {
	n := 0
	for _, e := range entities {
		if e.IsPlaceholder() {
			n++
		}
	}
	return n
}

type graphNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []graphNode
}

// printDiagram renders the store as a Mermaid tree: one node per type.
func printDiagram(out io.Writer, store *datastore.Store) {
	state, _ := store.State().(datastore.StoreState)

	root := graphNode{
		Name:   "Store",
		Status: "running",
		Metadata: map[string]string{
			"type":     "container",
			"entities": strconv.Itoa(state.Entities),
			"syncs":    strconv.FormatUint(state.Syncs, 10),
		},
	}
	for _, typ := range store.Types() {
		entities := store.FindAll(typ)
		status := "running"
		if countPlaceholders(entities) == len(entities) {
			// Only forward references so far.
			status = "pending"
		}
		root.Children = append(root.Children, graphNode{
			Name:   typ,
			Status: status,
			Metadata: map[string]string{
				"type":         "collection",
				"entities":     strconv.Itoa(len(entities)),
				"placeholders": strconv.Itoa(countPlaceholders(entities)),
			},
		})
	}

	config := introspection.DefaultDiagramConfig()
	config.SecondaryID = "store"
	config.SecondaryLabel = "Entity Graph"
	fmt.Fprintln(out, introspection.TreeDiagram(root, config))
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Output the store state in JSON format")
	syncCmd.Flags().StringVar(&syncFind, "find", "", "Print one entity (type/id) as a JSON:API document")
	syncCmd.Flags().StringVar(&syncType, "type", "", "List the ids of every entity of a type")
	syncCmd.Flags().BoolVar(&syncDiagram, "diagram", false, "Print the graph as a Mermaid diagram")
	syncCmd.Flags().StringVar(&syncOut, "out", "", "Write each entity to <dir>/<type>/<id>.json")
}
