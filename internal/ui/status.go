package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// IndexFileInfo describes one on-disk index or store file.
type IndexFileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Format  string    `json:"format"`
	Exists  bool      `json:"exists"`
	Entries int       `json:"entries"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time,omitempty"`
}

// StatusInfo is the cache overview printed by `ccindex info`.
type StatusInfo struct {
	CachePath string          `json:"cache_path"`
	Prefix    string          `json:"file_name_prefix"`
	Files     []IndexFileInfo `json:"files"`
}

// StatusRenderer displays cache status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info as text.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Cache: "+info.CachePath))
	_, _ = fmt.Fprintf(r.out, "  Prefix: %s\n\n", info.Prefix)

	for _, f := range info.Files {
		state := r.styles.Success.Render("ready")
		if !f.Exists {
			state = r.styles.Warning.Render("missing")
		}
		_, _ = fmt.Fprintf(r.out, "  %s (%s)\n", f.Name, state)
		_, _ = fmt.Fprintf(r.out, "    Path:    %s\n", f.Path)
		_, _ = fmt.Fprintf(r.out, "    Format:  %s\n", f.Format)
		if f.Exists {
			_, _ = fmt.Fprintf(r.out, "    Entries: %d\n", f.Entries)
			_, _ = fmt.Fprintf(r.out, "    Size:    %s\n", FormatBytes(f.Size))
			_, _ = fmt.Fprintf(r.out, "    Updated: %s\n", formatTime(f.ModTime))
		}
		_, _ = fmt.Fprintln(r.out)
	}
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// formatTime formats a time relative to now.
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		if mins := int(diff.Minutes()); mins != 1 {
			return fmt.Sprintf("%d minutes ago", mins)
		}
		return "1 minute ago"
	case diff < 24*time.Hour:
		if hours := int(diff.Hours()); hours != 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
