package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marketbrief/marketbrief/internal/models"
)

// Writer persists the run report as a JSON artifact under the results dir.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) Write(r *models.RunReport) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run report: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("run-%s.json", r.StartedAt.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write run report: %w", err)
	}
	return path, nil
}
