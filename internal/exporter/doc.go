// Package exporter writes the filtered sales table as CSV or XLSX.
//
// CSV output starts with a UTF-8 BOM so spreadsheet tools detect the
// encoding of accented genre names. XLSX output is produced with excelize's
// stream writer, one row per record.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	err := exp.Export(w, exporter.FormatCSV, filtered)
package exporter
