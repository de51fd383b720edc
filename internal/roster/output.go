package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"ufsc-matriculas/internal/scrapers/cagr"
)

// Contents renders ids the way Moodle expects them, one per line.
func Contents(ids []cagr.StudentId) string {
	return strings.Join(ids, "\n")
}

// FileName is the name the download is offered as.
func FileName(prefix string) string {
	return fmt.Sprintf("matriculas%s.csv", prefix)
}

// BatchFileName names the n-th (1-based) batch of a split download.
func BatchFileName(prefix string, n int) string {
	return fmt.Sprintf("matriculas%s-%d.csv", prefix, n)
}

// Batches splits ids into chunks of at most size ids, size <= 0 means a
// single chunk. There is always at least one chunk, even if it is empty.
func Batches(ids []cagr.StudentId, size int) [][]cagr.StudentId {
	if size <= 0 || len(ids) <= size {
		return [][]cagr.StudentId{ids}
	}
	var out [][]cagr.StudentId
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// WriteFiles writes the result into dir, split into batches of batchSize
// ids. When everything fits in one batch the file is named FileName(prefix).
// It returns the paths it wrote.
func WriteFiles(dir string, result Result, batchSize int) ([]string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}

	batches := Batches(result.StudentIds, batchSize)
	paths := make([]string, len(batches))
	for i, batch := range batches {
		name := FileName(result.Prefix)
		if len(batches) > 1 {
			name = BatchFileName(result.Prefix, i+1)
		}
		paths[i] = filepath.Join(dir, name)

		err := os.WriteFile(paths[i], []byte(Contents(batch)), 0644)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}
