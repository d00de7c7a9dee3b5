package main

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"logship/internal/config"
	"logship/internal/logging"
	"logship/internal/record"
	"logship/internal/ship"
)

const version = "1.0.0"

type selectionFlags struct {
	file    string
	dir     string
	archive string
	pattern string
}

// addSelectionFlags registers the shared input-selection flag set on cmd.
func (s *selectionFlags) addTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "",
		"Log file(s) to process; plain text, gzip, and bzip2 are supported. Shell globs select multiple files; pass - to read from stdin")
	cmd.Flags().StringVarP(&s.dir, "dir", "d", "",
		"Recursively process files in the given directory (requires -p)")
	cmd.Flags().StringVarP(&s.archive, "archive", "a", "",
		"Process files in the given archive: zip, or plain/gzip/bzip2 tar (requires -p)")
	cmd.Flags().StringVarP(&s.pattern, "pattern", "p", "",
		"Only process file names matching this glob pattern when processing a directory or archive")
}

// request builds the validated selection request, recording which flags were
// actually given so empty values can be rejected.
func (s *selectionFlags) request(cmd *cobra.Command) ship.Request {
	return ship.Request{
		File:       s.file,
		Dir:        s.dir,
		Archive:    s.archive,
		Pattern:    s.pattern,
		FileSet:    cmd.Flags().Changed("file"),
		DirSet:     cmd.Flags().Changed("dir"),
		ArchiveSet: cmd.Flags().Changed("archive"),
		PatternSet: cmd.Flags().Changed("pattern"),
	}
}

type rootOptions struct {
	selection  selectionFlags
	configPath string
	logLevel   string
	logFormat  string
	runID      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "logship [flags] [field1:value1 ...]",
		Short:         "Encode log lines as JSON messages for import into a log indexer",
		Long: "logship reads log lines from files, directories, archives, or stdin and\n" +
			"writes them to stdout as newline-delimited JSON records, each carrying the\n" +
			"given static field:value pairs plus a message field with the raw line.\n" +
			"Diagnostics go to stderr and never mix with the record stream.",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShip(cmd, opts, args)
		},
	}

	opts.selection.addTo(rootCmd)
	rootCmd.Flags().BoolVar(&opts.runID, "run-id", false,
		"Stamp every record with a per-run UUID field")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Diagnostic level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "",
		"Diagnostic format: console or json")

	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newConfigCommand(opts))

	return rootCmd
}

func runShip(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, _, _, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, opts, cfg)
	if err != nil {
		return err
	}

	tmpl, err := buildTemplate(cfg, args, opts.runID)
	if err != nil {
		return err
	}

	req := opts.selection.request(cmd)
	if _, err := req.Validate(); err != nil {
		return err
	}

	if cfg.Run.LockFile != "" {
		lock := flock.New(cfg.Run.LockFile)
		held, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire run lock: %w", err)
		}
		if !held {
			return fmt.Errorf("another logship instance holds %s", cfg.Run.LockFile)
		}
		defer lock.Unlock() //nolint:errcheck
	}

	shipper := ship.New(tmpl, cmd.OutOrStdout(), cmd.InOrStdin(), logger)
	return shipper.Run(cmd.Context(), req)
}

// newLogger builds the stderr diagnostic logger, with flags overriding the
// configured level and format.
func newLogger(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) (*slog.Logger, error) {
	logOpts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if opts.logLevel != "" {
		logOpts.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		logOpts.Format = opts.logFormat
	}
	return logging.New(cmd.ErrOrStderr(), logOpts)
}

// buildTemplate merges configured static fields (in sorted key order, for
// deterministic output), command-line pairs on top, and the optional run
// identity field.
func buildTemplate(cfg *config.Config, args []string, stampRunID bool) (*record.Template, error) {
	tmpl := record.NewTemplate()
	for _, key := range slices.Sorted(maps.Keys(cfg.Fields)) {
		tmpl.Set(key, cfg.Fields[key])
	}

	cli, err := record.ParseFields(args)
	if err != nil {
		return nil, err
	}
	for _, f := range cli.Fields() {
		tmpl.Set(f.Key, f.Value)
	}

	if stampRunID || cfg.Run.IDField != "" {
		field := cfg.Run.IDField
		if field == "" {
			field = "run_id"
		}
		tmpl.Set(field, uuid.NewString())
	}
	return tmpl, nil
}
