package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dbsmedya/extscan/internal/scanner"
)

// fileRecord is the JSON shape of one file. Modified is null when unknown.
type fileRecord struct {
	Path     string     `json:"path"`
	Size     int64      `json:"size"`
	Modified *time.Time `json:"modified"`
}

func writeJSON(w io.Writer, files []scanner.DiscoveredFile) error {
	records := make([]fileRecord, 0, len(files))
	for _, f := range files {
		rec := fileRecord{Path: f.Path, Size: f.Size}
		if f.HasModified() {
			m := f.Modified
			rec.Modified = &m
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}
	return nil
}

func writePlain(w io.Writer, files []scanner.DiscoveredFile) error {
	for _, f := range files {
		if _, err := fmt.Fprintln(w, f.Path); err != nil {
			return err
		}
	}
	return nil
}
