package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamWriter writes CSV rows one at a time.
type StreamWriter struct {
	writer *csv.Writer
	rows   int
}

// NewStreamWriter writes the optional BOM and the header row to w.
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	// Write BOM for Excel compatibility
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", s.rows, err)
	}
	s.rows++
	return nil
}

// Rows returns the number of records written so far.
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Close flushes the stream.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

// WriteCSV writes the header and every record of ds to w.
func WriteCSV(w io.Writer, ds *domain.Dataset) error {
	stream, err := NewStreamWriter(w, domain.CanonicalColumns, true)
	if err != nil {
		return err
	}

	for i := 0; i < ds.Len(); i++ {
		if err := stream.WriteRecord(Row(ds.At(i))); err != nil {
			return err
		}
	}
	return stream.Close()
}

// Row renders a record in CanonicalColumns order.
func Row(r domain.GameSale) []string {
	return []string{
		r.Name,
		r.Platform,
		formatInt(r.Year),
		r.Genre,
		r.Publisher,
		formatFloat(r.SalesNA),
		formatFloat(r.SalesEU),
		formatFloat(r.SalesJP),
		formatFloat(r.SalesOther),
		formatFloat(r.SalesGlobal),
	}
}
