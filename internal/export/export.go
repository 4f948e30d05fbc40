// Package export serializes derived tables for download.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// CSVTimeLayout is the time column layout of CSV exports.
const CSVTimeLayout = "2006-01-02 15:04"

// ParseFormat accepts a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV, FormatParquet:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "application/json"
	}
}

// Extension is the file name suffix of the format, without a dot.
func (f Format) Extension() string {
	if f == "" {
		return string(FormatJSON)
	}
	return string(f)
}

// Write encodes table in format f.
func Write(w io.Writer, f Format, loc epw.Location, table *derive.Table) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatParquet:
		return WriteParquet(w, loc, table)
	default:
		return WriteJSON(w, table)
	}
}

// WriteJSON writes the table as a single JSON document.
func WriteJSON(w io.Writer, table *derive.Table) error {
	if err := json.NewEncoder(w).Encode(table); err != nil {
		return fmt.Errorf("encode json table: %w", err)
	}
	return nil
}

// WriteCSV writes a header row of column names followed by one line per row.
// Missing cells are empty.
func WriteCSV(w io.Writer, table *derive.Table) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	header := make([]string, 0, len(table.Columns)+1)
	header = append(header, "time")
	for _, c := range table.Columns {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range table.Rows {
		record[0] = row.Time.Format(CSVTimeLayout)
		for i, v := range row.Values {
			record[i+1] = ""
			if v.Valid {
				record[i+1] = strconv.FormatFloat(v.Value, 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return bw.Flush()
}

// Cell is one value of a parquet export. Tables are written in long form,
// one cell per row and column, so the schema does not depend on which
// columns were selected.
type Cell struct {
	Time    int64    `parquet:"name=time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Station string   `parquet:"name=station, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Column  string   `parquet:"name=column, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Unit    string   `parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Derived bool     `parquet:"name=derived, type=BOOLEAN"`
	Value   *float64 `parquet:"name=value, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// Cells flattens a table into parquet cells in row-major order.
func Cells(loc epw.Location, table *derive.Table) []Cell {
	station := loc.StationID()
	cells := make([]Cell, 0, len(table.Rows)*len(table.Columns))
	for _, row := range table.Rows {
		ms := row.Time.UnixMilli()
		for i, c := range table.Columns {
			cells = append(cells, Cell{
				Time:    ms,
				Station: station,
				Column:  c.Name,
				Unit:    c.Unit,
				Derived: c.Derived,
				Value:   row.Values[i].Ptr(),
			})
		}
	}
	return cells
}

// WriteParquet writes the table as a SNAPPY-compressed parquet file.
func WriteParquet(w io.Writer, loc epw.Location, table *derive.Table) error {
	cells := Cells(loc, table)

	pw, err := writer.NewParquetWriterFromWriter(w, new(Cell), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range cells {
		if err := pw.Write(cells[i]); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write parquet cell: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}
