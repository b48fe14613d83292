package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
)

// RawTable is a parsed tabular file before normalization. Every cell is text.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Reader locates the dataset file inside a directory and parses it.
type Reader struct {
	FileName string
}

// Read parses dir/FileName. The format follows the file extension: .xlsx is
// read from the first sheet, anything else as comma separated text.
func (r Reader) Read(dir string) (*RawTable, error) {
	path := filepath.Join(dir, r.FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewSourceUnavailableError(
				fmt.Sprintf("file %s not found in %s", r.FileName, dir), err)
		}
		return nil, apperrors.NewSourceUnavailableError(
			fmt.Sprintf("cannot access %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("cannot open %s", path), err)
		}
		defer f.Close()
		return ParseCSV(f)
	}
}

// ParseCSV reads a header row followed by data rows. Short rows are padded
// to the header width.
func ParseCSV(in io.Reader) (*RawTable, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("dataset file is empty", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header row", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &RawTable{Header: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read data row", err)
		}
		table.Rows = append(table.Rows, pad(record, len(header)))
	}
	return table, nil
}

func readWorkbook(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("dataset sheet is empty", nil)
	}

	table := &RawTable{Header: rows[0]}
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, pad(row, len(table.Header)))
	}
	return table, nil
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
