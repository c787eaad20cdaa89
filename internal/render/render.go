// Package render prints banners, column lists and fixed-width tables to a
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
)

const (
	DefaultTruncateWidth = 130
	DefaultMaxTotalWidth = 150

	timestampLayout = "2006-01-02T15:04:05.000000"
)

// Printer writes to out. Widths are counted in runes.
type Printer struct {
	out           io.Writer
	truncateWidth int
	maxTotalWidth int
	bold          *color.Color
	now           func() time.Time
}

func New(out io.Writer) *Printer {
	return &Printer{
		out:           out,
		truncateWidth: DefaultTruncateWidth,
		maxTotalWidth: DefaultMaxTotalWidth,
		bold:          color.New(color.Bold),
		now:           time.Now,
	}
}

// DisableColor turns off ANSI styling, e.g. when writing to a file.
func (p *Printer) DisableColor() {
	p.bold.DisableColor()
}

// Banner prints lines in a box of asterisks followed by the invocation time.
func (p *Printer) Banner(lines ...string) {
	timestamp := "Invoked at: " + p.now().Format(timestampLayout)

	width := runeLen(timestamp)
	for _, line := range lines {
		width = max(width, runeLen(line))
	}

	border := strings.Repeat("*", width+4)
	p.bold.Fprintln(p.out, border)
	for _, line := range lines {
		p.bold.Fprintln(p.out, "* "+pad(line, width)+" *")
	}
	p.bold.Fprintln(p.out, "* "+pad(timestamp, width)+" *")
	p.bold.Fprintln(p.out, border)
}

// Table prints rows as a bordered table with one column per entry in
// columns. When the table would be wider than the maximum total width, only
// the first row is shown, as a key/value table. It returns the width
// allotted to each column, or nil when there are no rows.
func (p *Printer) Table(columns []string, rows []map[string]string) map[string]int {
	if len(rows) == 0 {
		return nil
	}

	widths := make(map[string]int, len(columns))
	total := len(columns) - 1
	for _, column := range columns {
		widest := runeLen(column)
		for _, row := range rows {
			widest = max(widest, runeLen(row[column]))
		}
		widths[column] = widest + 1
		if widest > p.truncateWidth {
			widths[column] = p.truncateWidth
		}
		total += widths[column]
	}

	if total > p.maxTotalWidth {
		fmt.Fprintf(p.out, "\nCalculated total_width of %d exceeds proposed max_total_width of %d. Showing first row as a dictionary\n",
			total, p.maxTotalWidth)
		p.Dictionary(columns, rows[0])
		return widths
	}

	rule := strings.Repeat("-", total)
	fmt.Fprintln(p.out, rule)
	p.tableLine(columns, widths, func(column string) string { return column })
	fmt.Fprintln(p.out, rule)
	for _, row := range rows {
		p.tableLine(columns, widths, func(column string) string { return row[column] })
	}
	fmt.Fprintln(p.out, rule)

	return widths
}

func (p *Printer) tableLine(columns []string, widths map[string]int, cell func(string) string) {
	var b strings.Builder
	for _, column := range columns {
		b.WriteString("|")
		b.WriteString(fit(cell(column), widths[column]))
	}
	b.WriteString("|")
	fmt.Fprintln(p.out, b.String())
}

// Dictionary prints the keys of row, in the given order, against their
// values.
func (p *Printer) Dictionary(keys []string, row map[string]string) {
	if len(keys) == 0 {
		return
	}
	keyWidth, valueWidth := 0, 0
	for _, k := range keys {
		keyWidth = max(keyWidth, runeLen(k))
		valueWidth = max(valueWidth, runeLen(row[k]))
	}
	keyWidth += 2
	valueWidth += 2

	rule := strings.Repeat("-", keyWidth+valueWidth+2)
	fmt.Fprintln(p.out, rule)
	fmt.Fprintf(p.out, "|%s|%s|\n", fit("Column", keyWidth), fit("Value", valueWidth))
	fmt.Fprintln(p.out, rule)
	for _, k := range keys {
		fmt.Fprintf(p.out, "|%s|%s|\n", fit(k, keyWidth), fit(row[k], valueWidth))
	}
	fmt.Fprintln(p.out, rule)
}

// List prints items in as many fixed-width columns as fit the maximum total
// width.
func (p *Printer) List(items []string) {
	if len(items) == 0 {
		return
	}
	width := 0
	for _, item := range items {
		width = max(width, runeLen(item))
	}
	width += 2
	perLine := max(p.maxTotalWidth/width, 1)

	var b strings.Builder
	for i, item := range items {
		b.WriteString(fit(item, width))
		if (i+1)%perLine == 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	io.WriteString(p.out, b.String())
}

// Line prints a plain line of text.
func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// fit left-aligns s in exactly width runes, truncating when longer.
func fit(s string, width int) string {
	return fmt.Sprintf("%-*.*s", width, width, s)
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
