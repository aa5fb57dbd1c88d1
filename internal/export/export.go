// Package export writes a metrics report to delimited files or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"jobmetrics/domain/table"
	"jobmetrics/internal/metrics"
)

// WriteCSV writes one <key>.csv per report table into dir, creating dir as
// needed, and returns the paths written in key order.
func WriteCSV(r *metrics.Report, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts dir %s: %w", dir, err)
	}

	var paths []string
	for _, nt := range r.Tables() {
		path := filepath.Join(dir, nt.Key+".csv")
		if err := writeCSVFile(path, nt.Table); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	log.Printf("[Export] wrote %d tables to %s", len(paths), dir)
	return paths, nil
}

func writeCSVFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := EncodeCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// EncodeCSV writes the header row and then every row. Missing cells are
// empty and numbers use the shortest exact decimal form.
func EncodeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	record := make([]string, len(t.Columns()))
	for i := 0; i < t.Len(); i++ {
		for j, col := range t.Columns() {
			record[j] = t.Get(i, col).String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON form of a report.
type Document struct {
	Tables       map[string]*table.Table `json:"tables"`
	Insufficient []string                `json:"insufficient"`
}

// NewDocument collects the report tables by key.
func NewDocument(r *metrics.Report) Document {
	doc := Document{
		Tables:       make(map[string]*table.Table),
		Insufficient: append([]string{}, r.Insufficient...),
	}
	for _, nt := range r.Tables() {
		doc.Tables[nt.Key] = nt.Table
	}
	return doc
}

// WriteJSON encodes the report as an indented Document.
func WriteJSON(r *metrics.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}
