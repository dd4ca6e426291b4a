package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"

	"finance-dashboard/internal/ingest"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/observability"
)

// Importer parses uploaded statements and hands the rows to the ledger.
type Importer struct {
	ledger *Ledger
	logger *slog.Logger
}

func NewImporter(ledger *Ledger, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{ledger: ledger, logger: logger}
}

// ImportPayload imports a transport-encoded upload and returns the number of
// rows now loaded. On error the ledger is unchanged.
func (im *Importer) ImportPayload(ctx context.Context, payload, filename string) (int, error) {
	return im.run(ctx, filename, func() ([]models.Record, error) {
		return ingest.Parse(payload, filename)
	})
}

func (im *Importer) ImportBytes(ctx context.Context, raw []byte, filename string) (int, error) {
	return im.run(ctx, filename, func() ([]models.Record, error) {
		return ingest.Decode(raw, filename)
	})
}

func (im *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	return im.run(ctx, filepath.Base(path), func() ([]models.Record, error) {
		return ingest.ParseFile(path)
	})
}

func (im *Importer) run(ctx context.Context, filename string, parse func() ([]models.Record, error)) (int, error) {
	_, parseSpan := observability.StartSpan(ctx, "ingest.parse")
	parseSpan.SetTag("filename", filename)
	records, err := parse()
	if err != nil {
		parseSpan.SetError(err)
		parseSpan.End(im.logger)
		im.logger.Warn("import rejected", "filename", filename, "error", err)
		return 0, err
	}
	parseSpan.SetTag("records", strconv.Itoa(len(records)))
	parseSpan.End(im.logger)

	loadCtx, loadSpan := observability.StartSpan(ctx, "ledger.load")
	defer loadSpan.End(im.logger)
	if err := im.ledger.Load(loadCtx, filename, records); err != nil {
		loadSpan.SetError(err)
		im.logger.Warn("import rejected", "filename", filename, "error", err)
		return 0, err
	}

	return len(records), nil
}
