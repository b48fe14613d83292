package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", s))
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName names an export produced at t.
func (f Format) FileName(t time.Time) string {
	return fmt.Sprintf("vgsales_filtrado_%s.%s", t.Format("20060102_150405"), f)
}

// formatFloat formats sales with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
