package extract

import (
	"context"
	"log/slog"
)

// fallback tries the primary strategy and uses the secondary on any error
// or empty result. The secondary must be total, so Extract never fails.
type fallback struct {
	primary   RowExtractor
	secondary RowExtractor
	log       *slog.Logger
}

// NewFallback composes two strategies; secondary is expected to be total.
func NewFallback(primary, secondary RowExtractor, log *slog.Logger) RowExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &fallback{primary: primary, secondary: secondary, log: log}
}

func (f *fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *fallback) Extract(ctx context.Context, req Request) ([]RawRow, error) {
	rows, err := f.primary.Extract(ctx, req)
	if err == nil && len(rows) > 0 {
		return rows, nil
	}
	if err != nil {
		f.log.Warn("extract.primary_failed",
			"strategy", f.primary.Name(),
			"document_id", req.DocumentID,
			"error", err,
		)
	} else {
		f.log.Warn("extract.primary_empty",
			"strategy", f.primary.Name(),
			"document_id", req.DocumentID,
		)
	}
	return f.secondary.Extract(ctx, req)
}
