package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// Exporter writes datasets in any supported format.
type Exporter struct {
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// New creates an exporter. metrics may be nil.
func New(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Exporter {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Exporter{
		logger:  logger.With(slog.String("component", "exporter")),
		metrics: metrics,
	}
}

// Export writes ds to w in format.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, ds *domain.Dataset) error {
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(w, ds)
	case FormatXLSX:
		err = WriteXLSX(w, ds)
	default:
		return apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("export failed", err)
	}

	infrastructure.RecordExport(ctx, e.metrics, string(format))
	e.logger.InfoContext(ctx, "table exported",
		slog.String("format", string(format)),
		slog.Int("record_count", ds.Len()))
	return nil
}

// ExportFile writes ds to path, creating its directory.
func (e *Exporter) ExportFile(ctx context.Context, path string, format Format, ds *domain.Dataset) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create file", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = apperrors.NewStorageError("failed to close file", cerr)
		}
	}()

	return e.Export(ctx, file, format, ds)
}
