package ingest

import (
	"path/filepath"
	"strings"
)

// Format is the detected shape of an input source.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

var extensionFormats = map[string]Format{
	".csv":  FormatCSV,
	".tsv":  FormatTSV,
	".tab":  FormatTSV,
	".txt":  FormatTSV,
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
}

// FormatFromFilename picks the reader for an uploaded file by its extension.
func FormatFromFilename(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}
	return "", &ParseError{Kind: KindUnsupportedFormat, Filename: filename}
}

func (f Format) delimiter() rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}
