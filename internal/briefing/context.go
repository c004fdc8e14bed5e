package briefing

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ContextSeparator follows every file in the context blob.
const ContextSeparator = "\n---\n"

// LoadContext concatenates the files of dir in name order, each followed
// by ContextSeparator. A missing directory yields an empty blob; any other
// read error is returned. Sub-directories are skipped.
func LoadContext(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Context directory not found, proceeding without contextual data", "dir", dir)
			return "", nil
		}
		return "", fmt.Errorf("failed to read context directory: %w", err)
	}

	var sb strings.Builder
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", fmt.Errorf("failed to read context file %s: %w", entry.Name(), err)
		}
		sb.Write(content)
		sb.WriteString(ContextSeparator)
	}

	return sb.String(), nil
}
