// Package output formats plain CLI results: status lines, key/value
// listings, and JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Writer prints CLI output. Write errors are ignored.
type Writer struct {
	out io.Writer
}

// New creates a Writer over out.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints "icon msg", or an indented msg when icon is empty.
func (w *Writer) Status(icon, msg string) {
	if icon == "" {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
		return
	}
	_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
}

// Statusf is Status with formatting.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success line.
func (w *Writer) Success(msg string) { w.Status("✅", msg) }

// Successf prints a formatted success line.
func (w *Writer) Successf(format string, args ...any) { w.Success(fmt.Sprintf(format, args...)) }

// Warning prints a warning line.
func (w *Writer) Warning(msg string) { w.Status("⚠️ ", msg) }

// Warningf prints a formatted warning line.
func (w *Writer) Warningf(format string, args ...any) { w.Warning(fmt.Sprintf(format, args...)) }

// Error prints an error line.
func (w *Writer) Error(msg string) { w.Status("❌", msg) }

// Errorf prints a formatted error line.
func (w *Writer) Errorf(format string, args ...any) { w.Error(fmt.Sprintf(format, args...)) }

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Line prints msg unadorned.
func (w *Writer) Line(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// KV is one row of a key/value listing.
type KV struct {
	Key   string
	Value string
}

// KeyValues prints rows with keys padded to a common width.
func (w *Writer) KeyValues(rows []KV) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Key)+1)
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(w.out, "  %-*s  %s\n", width, r.Key+":", r.Value)
	}
}

// List prints items one per line, wrapped to perLine items.
func (w *Writer) List(items []string, perLine int) {
	if perLine <= 0 {
		perLine = 1
	}
	for start := 0; start < len(items); start += perLine {
		end := min(start+perLine, len(items))
		_, _ = fmt.Fprintf(w.out, "  %s\n", strings.Join(items[start:end], " "))
	}
}

// JSON prints v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
