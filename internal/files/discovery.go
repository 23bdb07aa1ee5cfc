// Package files locates dataset files on disk.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindCSVFiles returns the names of the .csv files directly under dir,
// sorted by name. Subdirectories are not descended into.
func FindCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
