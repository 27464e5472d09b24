// Package spreadsheet reads and writes the xlsx and csv files used by
// record import and export.
package spreadsheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Format is a spreadsheet file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat picks the format from a file name's extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// Sheet is the first worksheet of a file: the header row and the data rows
// below it. Rows are positional; trailing empty cells may be missing.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Cell returns row i, column j or "" when the row is shorter.
func (s *Sheet) Cell(i, j int) string {
	if i < 0 || i >= len(s.Rows) || j < 0 || j >= len(s.Rows[i]) {
		return ""
	}
	return s.Rows[i][j]
}

type readOptions struct {
	maxRows int
}

// ReadOption configures Read
type ReadOption func(*readOptions)

// WithMaxRows rejects files with more than n data rows. Zero means no limit.
func WithMaxRows(n int) ReadOption {
	return func(o *readOptions) {
		o.maxRows = n
	}
}

// Read parses r in format. The first row is the header and is skipped for
// data; fully blank rows are dropped.
func Read(r io.Reader, format Format, opts ...ReadOption) (*Sheet, error) {
	o := readOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}
	sheet := &Sheet{Header: trimAll(rows[0])}
	for _, row := range rows[1:] {
		row = trimAll(row)
		if isBlank(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	if len(sheet.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	if o.maxRows > 0 && len(sheet.Rows) > o.maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(sheet.Rows), o.maxRows)
	}
	return sheet, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if head, err := br.Peek(3); err == nil && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	const checkSize = 4096
	content, err := br.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(trimPartialRune(content)) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

// trimPartialRune drops a rune cut in half by the peek window.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
