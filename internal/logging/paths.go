package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.ccindex/logs, or a temp-dir equivalent when the
// home directory is unknown.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ccindex", "logs")
	}
	return filepath.Join(home, ".ccindex", "logs")
}

// DefaultLogPath returns the log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "ccindex.log")
}

// FindLogFile returns explicit if it exists, else the default log file.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no log file found at %s; run a command with --debug first", path)
	}
	return path, nil
}
