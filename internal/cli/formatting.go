/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatBold returns s in bold when w is a terminal.
func formatBold(w io.Writer, s string) string {
	if !isTerminal(w) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// table writes tab-aligned rows under a header.
type table struct {
	tw   *tabwriter.Writer
	rows int
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = formatBold(w, h)
	}
	_, _ = io.WriteString(t.tw, strings.Join(cells, "\t")+"\n")
	return t
}

func (t *table) row(cells ...string) {
	t.rows++
	_, _ = io.WriteString(t.tw, strings.Join(cells, "\t")+"\n")
}

func (t *table) empty() bool { return t.rows == 0 }

func (t *table) flush() error { return t.tw.Flush() }
