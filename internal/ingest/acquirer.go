package ingest

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"descstats/internal/stats"
)

// Options controls how sources are turned into samples.
type Options struct {
	// HasHeader treats the first row of a table as column names.
	HasHeader bool
	// Sheet names the workbook sheet to read; empty means the first sheet.
	Sheet string
	// PreviewRows is the number of data rows copied into Extraction.Preview.
	PreviewRows int
}

func DefaultOptions() Options {
	return Options{
		HasHeader:   true,
		PreviewRows: 5,
	}
}

// Column is one numeric column of a tabular source.
type Column struct {
	Name   string
	Sample stats.Sample
}

// Extraction is everything the acquirer pulled out of one submission.
type Extraction struct {
	Source string
	Format Format
	// Sample is every numeric value, flattened row by row across the numeric columns.
	Sample  stats.Sample
	Columns []Column
	Skipped []string
	Preview [][]string
}

// Acquirer turns pasted text and uploaded files into numeric samples.
type Acquirer struct {
	opts Options
}

func NewAcquirer(opts Options) *Acquirer {
	if opts.PreviewRows < 0 {
		opts.PreviewRows = 0
	}
	return &Acquirer{opts: opts}
}

// FromText parses a free-text list of numbers separated by newlines, commas or both.
// Any token that is not a finite number fails the whole submission.
func (a *Acquirer) FromText(text string) (*Extraction, error) {
	sample := stats.Sample{}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	line := 0
	for scanner.Scan() {
		line++
		for _, token := range strings.Split(scanner.Text(), ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			v, ok := parseNumber(token)
			if !ok {
				return nil, &ParseError{Kind: KindInvalidToken, Token: token, Line: line}
			}
			sample = append(sample, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Kind: KindMalformedTable, Err: err}
	}

	log.Printf("[ingest] text input parsed (%d lines, %d values)", line, len(sample))

	return &Extraction{
		Source: "text",
		Format: FormatText,
		Sample: sample,
	}, nil
}

// FromFile reads an uploaded file, choosing the reader by the file extension.
func (a *Acquirer) FromFile(filename string, r io.Reader) (*Extraction, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatCSV, FormatTSV:
		rows, err = readDelimited(r, format.delimiter())
	case FormatXLSX:
		rows, err = readWorkbook(r, a.opts.Sheet)
	default:
		return nil, &ParseError{Kind: KindUnsupportedFormat, Filename: filename}
	}
	if err != nil {
		return nil, &ParseError{Kind: KindMalformedTable, Filename: filename, Err: err}
	}

	ext := a.fromRows(rows)
	ext.Source = filename
	ext.Format = format

	log.Printf("[ingest] %s parsed as %s (%d numeric columns, %d skipped, %d values)",
		filename, format, len(ext.Columns), len(ext.Skipped), len(ext.Sample))

	return ext, nil
}

func (a *Acquirer) fromRows(rows [][]string) *Extraction {
	ext := &Extraction{Sample: stats.Sample{}}
	if len(rows) == 0 {
		return ext
	}

	var header []string
	data := rows
	if a.opts.HasHeader {
		header, data = rows[0], rows[1:]
	}
	names := columnNames(header, data)

	numeric := make([]bool, len(names))
	for c := range names {
		numeric[c] = isNumericColumn(data, c)
		if !numeric[c] {
			ext.Skipped = append(ext.Skipped, names[c])
		}
	}

	index := make(map[int]int)
	for c, name := range names {
		if numeric[c] {
			index[c] = len(ext.Columns)
			ext.Columns = append(ext.Columns, Column{Name: name, Sample: stats.Sample{}})
		}
	}

	for _, row := range data {
		for c := range names {
			if !numeric[c] {
				continue
			}
			cell := cellAt(row, c)
			if cell == "" {
				continue
			}
			v, _ := parseNumber(cell)
			ext.Sample = append(ext.Sample, v)
			col := &ext.Columns[index[c]]
			col.Sample = append(col.Sample, v)
		}
	}

	ext.Preview = a.preview(names, data)
	return ext
}

func (a *Acquirer) preview(names []string, data [][]string) [][]string {
	n := min(a.opts.PreviewRows, len(data))
	out := make([][]string, 0, n+1)
	out = append(out, append([]string(nil), names...))
	for _, row := range data[:n] {
		cells := make([]string, len(names))
		for c := range names {
			cells[c] = cellAt(row, c)
		}
		out = append(out, cells)
	}
	return out
}

func columnNames(header []string, data [][]string) []string {
	width := len(header)
	for _, row := range data {
		width = max(width, len(row))
	}

	names := make([]string, width)
	for c := range names {
		names[c] = cellAt(header, c)
		if names[c] == "" {
			names[c] = fmt.Sprintf("column_%d", c+1)
		}
	}
	return names
}

// isNumericColumn reports whether column c has at least one value and every
// non-blank cell is a finite number.
func isNumericColumn(data [][]string, c int) bool {
	seen := false
	for _, row := range data {
		cell := cellAt(row, c)
		if cell == "" {
			continue
		}
		if _, ok := parseNumber(cell); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func cellAt(row []string, c int) string {
	if c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func parseNumber(token string) (float64, bool) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
