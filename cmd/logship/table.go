package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// listEntry is one row of the dry-run listing: a file path or archive
// member that the same selection would ship.
type listEntry struct {
	name string
	kind string
	size int64
}

// renderListing renders entries as a rounded table for terminals, or as
// plain tab-separated rows when the output is piped.
func renderListing(entries []listEntry, tty bool) string {
	if !tty {
		var sb strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&sb, "%s\t%d\t%s\n", e.name, e.size, e.kind)
		}
		return sb.String()
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Size", "Kind"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.name, strconv.FormatInt(e.size, 10), e.kind})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render() + "\n"
}
