package result

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskify/internal/task"
)

var ErrUnknownFormat = errors.New("unknown format")

// Exporter dumps the current task list in a downloadable format.
type Exporter struct{ repo task.Repository }

func NewExporter(repo task.Repository) *Exporter { return &Exporter{repo: repo} }

// ContentType returns the MIME type Export produces for format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return "text/csv"
	case "pdf":
		return "application/pdf"
	default:
		return "application/json"
	}
}

func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	all, err := e.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "json", "":
		if all == nil {
			all = []task.Task{}
		}
		return json.MarshalIndent(all, "", "  ")
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "text", "completed"})
		for _, t := range all {
			_ = w.Write([]string{strconv.FormatInt(t.ID, 10), t.Text, strconv.FormatBool(t.Completed)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Taskify")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		if len(all) == 0 {
			pdf.MultiCell(0, 6, emptyMessage, "0", "L", false)
		}
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		for _, t := range all {
			line := fmt.Sprintf("%s #%d  %s", checkbox(t.Completed), t.ID, tr(t.Text))
			pdf.MultiCell(0, 6, line, "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownFormat, format)
	}
}
