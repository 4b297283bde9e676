package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/models"
)

const (
	DashboardFile = "data.json"
	DetailFile    = "detailed_data.json"
	KPIFile       = "kpi_data.json"
)

// Writer serializes report documents and hands them to a sink.
type Writer struct {
	Sink Sink
	Log  zerolog.Logger
}

func (w Writer) WriteDashboard(ctx context.Context, doc models.DashboardReport) error {
	return w.write(ctx, DashboardFile, doc)
}

func (w Writer) WriteDetail(ctx context.Context, doc models.DetailReport) error {
	return w.write(ctx, DetailFile, doc)
}

func (w Writer) WriteKPI(ctx context.Context, doc models.KPIDocument) error {
	return w.write(ctx, KPIFile, doc)
}

func (w Writer) write(ctx context.Context, name string, doc any) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := w.Sink.Put(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.Log.Info().Str("file", name).Int("bytes", len(data)).Msg("report written")
	return nil
}

// Encode renders a document as two-space indented JSON with a trailing newline.
// Map keys come out sorted, so equal documents encode to equal bytes.
func Encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
