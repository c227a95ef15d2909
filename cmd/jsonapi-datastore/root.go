package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	datastore "github.com/Archelyst/jsonapi-datastore"
)

var (
	verbose   bool
	logFormat string
	baseDir   string
	strict    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsonapi-datastore",
	Short: "Normalize JSON:API documents into an in-memory entity graph",
	Long: `jsonapi-datastore syncs JSON:API payload files (JSON or YAML) into an
identity map where every (type, id) pair resolves to exactly one entity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		var handler slog.Handler
		switch logFormat {
		case "text":
			handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
		case "json":
			handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
		default:
			return fmt.Errorf("unknown log format %q (want text or json)", logFormat)
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// storeOptions builds the datastore options shared by every command.
func storeOptions(extra ...datastore.Option) []datastore.Option {
	opts := []datastore.Option{
		datastore.WithLogger(slog.Default()),
		datastore.WithBaseDir(baseDir),
		datastore.WithStrict(strict),
	}
	return append(opts, extra...)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&baseDir, "dir", "C", ".", "Directory patterns are resolved against")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Keep numbers as exact decimal strings")
}
