// Package artifact writes run results as JSON files: daily.json,
// overall.json and daily_index.json.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smukkama/weather-summary/internal/aggregation"
)

const (
	DailyFile   = "daily.json"
	OverallFile = "overall.json"
	IndexFile   = "daily_index.json"
)

// Writer writes artifacts into Dir.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

func (w *Writer) Name() string { return "artifact" }

// Write encodes all three documents. Files are replaced atomically so a
// reader sees either the previous run or this one.
func (w *Writer) Write(ctx context.Context, runID string, res *aggregation.Result) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	days := res.Days
	if days == nil {
		days = []aggregation.DailySummary{}
	}
	index := res.Index
	if index == nil {
		index = aggregation.DailyIndex{}
	}

	docs := []struct {
		name string
		v    any
	}{
		{DailyFile, days},
		{OverallFile, res.Overall},
		{IndexFile, index},
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := Encode(doc.v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", doc.name, err)
		}
		if err := writeFile(filepath.Join(w.Dir, doc.name), data); err != nil {
			return err
		}
	}

	return nil
}

// Encode renders v as indented JSON with a trailing newline. Map keys come
// out sorted, so equal values always encode to equal bytes.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
