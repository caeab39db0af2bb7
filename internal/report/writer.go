package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/seenimoa/marketbrief/pkg/models"
	"github.com/seenimoa/marketbrief/pkg/utils"
)

// Filename returns the report file name for its generation date,
// daily_report_YYYYMMDD.md, dated in US Eastern time.
func Filename(r *models.Report) string {
	return fmt.Sprintf("daily_report_%s.md", utils.ReportDate(r.GeneratedAt))
}

// Save renders the report and writes it under dir, creating the
// directory if needed. A report for the same date overwrites the
// previous file. Returns the written path.
func Save(r *models.Report, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, Filename(r))
	if err := os.WriteFile(path, []byte(Render(r)), 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}
