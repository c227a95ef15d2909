package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	datastore "github.com/Archelyst/jsonapi-datastore"
	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/fs"
	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/lifecycle"
)

var watchBuffer int

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Sync payload files and keep re-syncing them as they change",
	Long: `Load every file matching the pattern, then watch the directory and re-sync
files as they are written. Store events are printed one per line. Removing a
file keeps its entities: a payload only ever adds to the graph.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, args[0], cmd.OutOrStdout())
	},
}

func runWatch(ctx context.Context, pattern string, out io.Writer) error {
	logger := slog.Default()

	events := make(chan datastore.Event, watchBuffer)
	store, files, err := datastore.Load([]string{pattern},
		storeOptions(datastore.WithListener(datastore.ChannelListener(events)))...)
	if err != nil {
		return err
	}
	logger.Info("initial sync complete", "files", len(files), "entities", store.Len())

	source := lifecycle.NewSource(events)
	if err := source.Start(ctx); err != nil {
		return fmt.Errorf("start event source: %w", err)
	}

	watcher := fs.NewWatcher(baseDir, pattern, logger)
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("watch stopped", "watcher", watcher.State(), "store", store.State())
	}()

	loader := datastore.NewLoader(storeOptions()...)
	storeEvents := source.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-storeEvents:
			if !ok {
				storeEvents = nil
				continue
			}
			fmt.Fprintln(out, e)
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			switch c.Op {
			case fs.OpWrite:
				if _, err := loader.SyncFile(store, c.Path); err != nil {
					logger.Error("re-sync failed", "path", c.Path, "error", err)
				}
			case fs.OpRemove:
				logger.Info("payload file removed, entities kept", "path", c.Path)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVar(&watchBuffer, "buffer", 256, "Store event buffer; events beyond it are dropped")
}
