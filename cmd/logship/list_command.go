package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"logship/internal/ship"
)

// newListCommand builds the dry-run inspection command: it resolves the same
// selection the root command would ship and prints what would be processed,
// without emitting any records.
func newListCommand() *cobra.Command {
	selection := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show which files or archive members a selection would process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := selection.request(cmd)
			mode, err := req.Validate()
			if err != nil {
				return err
			}
			if mode == ship.ModeStdin {
				return errors.New("nothing to list: stdin is consumed as-is")
			}

			entries, err := collectEntries(mode, req)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching files.")
				return nil
			}

			tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
			fmt.Fprint(cmd.OutOrStdout(), renderListing(entries, tty))
			return nil
		},
	}

	selection.addTo(cmd)
	return cmd
}

func collectEntries(mode ship.Mode, req ship.Request) ([]listEntry, error) {
	switch mode {
	case ship.ModeFile:
		return collectGlobEntries(req.File)
	case ship.ModeDir:
		return collectDirEntries(req.Dir, req.Pattern)
	case ship.ModeArchive:
		return collectArchiveEntries(req.Archive, req.Pattern)
	default:
		return nil, nil
	}
}

func collectGlobEntries(pattern string) ([]listEntry, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
	}
	var entries []listEntry
	for _, path := range paths {
		entries = append(entries, statEntry(path))
	}
	return entries, nil
}

func collectDirEntries(root, pattern string) ([]listEntry, error) {
	compiled, err := ship.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	var entries []listEntry
	for path, walkErr := range ship.WalkMatches(root, compiled) {
		if walkErr != nil {
			continue
		}
		entries = append(entries, statEntry(path))
	}
	return entries, nil
}

func collectArchiveEntries(path, pattern string) ([]listEntry, error) {
	compiled, err := ship.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	format, members, err := ship.ListArchive(path, compiled)
	if err != nil {
		return nil, err
	}
	entries := make([]listEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, listEntry{name: m.Name, kind: format + " member", size: m.Size})
	}
	return entries, nil
}

func statEntry(path string) listEntry {
	entry := listEntry{name: path, kind: ship.Classify(path).String()}
	if info, err := os.Stat(path); err == nil {
		entry.size = info.Size()
	}
	return entry
}
