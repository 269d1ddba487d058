package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

// LoadLocal reads documents from the given files or directories.
// Directories are walked non-recursively for text files. Results are
// ordered by path so repeated builds see documents in the same order.
func LoadLocal(paths []string) ([]domain.Document, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isTextKey(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)

	docs := make([]domain.Document, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		docs = append(docs, domain.NewDocument(filepath.Base(file), string(data)))
	}
	return docs, nil
}
