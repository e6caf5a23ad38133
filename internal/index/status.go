package index

import (
	"os"

	"github.com/Aman-CERP/ccindex/internal/defstore"
	"github.com/Aman-CERP/ccindex/internal/marshal"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

// Status file names.
const (
	StatusDescriptor  = "descriptor"
	StatusSearch      = "search"
	StatusDefinitions = "definitions"
)

// Status describes the files under the cache for opts. entries supplies
// known entry counts by status file name; missing names report 0.
func Status(opts Options, entries map[string]int) ui.StatusInfo {
	o := opts.withDefaults()
	dbPath := defstore.Options{CachePath: o.CachePath, FileNamePrefix: o.FileNamePrefix}.DatabasePath()

	info := ui.StatusInfo{CachePath: o.CachePath, Prefix: o.FileNamePrefix}
	for _, f := range []struct{ name, path, format string }{
		{StatusDescriptor, o.DescriptorPath(), marshal.FormatForPath(o.DescriptorPath()).String()},
		{StatusSearch, o.SearchPath(), marshal.FormatForPath(o.SearchPath()).String()},
		{StatusDefinitions, dbPath, "sqlite"},
	} {
		fi := ui.IndexFileInfo{Name: f.name, Path: f.path, Format: f.format, Entries: entries[f.name]}
		if st, err := os.Stat(f.path); err == nil && st.Mode().IsRegular() {
			fi.Exists = true
			fi.Size = st.Size()
			fi.ModTime = st.ModTime()
		}
		info.Files = append(info.Files, fi)
	}
	return info
}
