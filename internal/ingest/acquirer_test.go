package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"descstats/internal/stats"
)

func newTestAcquirer() *Acquirer {
	return NewAcquirer(DefaultOptions())
}

func requireParseError(t *testing.T, err error, kind ErrorKind) *ParseError {
	t.Helper()
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
	assert.Equal(t, kind, perr.Kind)
	return perr
}

func TestFromText_Separators(t *testing.T) {
	tests := []struct {
		name string
		text string
		want stats.Sample
	}{
		{"newline separated", "1\n2\n3", stats.Sample{1, 2, 3}},
		{"comma separated", "1,2,3", stats.Sample{1, 2, 3}},
		{"mixed separators", "1, 2\n3,4\n5", stats.Sample{1, 2, 3, 4, 5}},
		{"windows line endings", "1.5\r\n2.5\r\n", stats.Sample{1.5, 2.5}},
		{"blank lines and trailing comma", "\n10,\n\n20 ,, 30\n", stats.Sample{10, 20, 30}},
		{"scientific and negative", "-1e3, 2.5E-1, +4", stats.Sample{-1000, 0.25, 4}},
		{"empty text", "", stats.Sample{}},
		{"whitespace only", "  \n\t\n", stats.Sample{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := newTestAcquirer().FromText(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext.Sample)
			assert.Equal(t, FormatText, ext.Format)
			assert.Equal(t, "text", ext.Source)
		})
	}
}

func TestFromText_InvalidToken(t *testing.T) {
	ext, err := newTestAcquirer().FromText("1, 2\n3, abc\n4")
	assert.Nil(t, ext)

	perr := requireParseError(t, err, KindInvalidToken)
	assert.Equal(t, "abc", perr.Token)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, `line 2: "abc" is not a finite number`, perr.Error())
}

func TestFromText_RejectsNonFiniteTokens(t *testing.T) {
	for _, token := range []string{"NaN", "inf", "-Infinity", "1e400"} {
		t.Run(token, func(t *testing.T) {
			_, err := newTestAcquirer().FromText("1\n" + token)
			perr := requireParseError(t, err, KindInvalidToken)
			assert.Equal(t, token, perr.Token)
		})
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"data.csv", FormatCSV},
		{"DATA.CSV", FormatCSV},
		{"data.tsv", FormatTSV},
		{"data.tab", FormatTSV},
		{"notes.txt", FormatTSV},
		{"book.xlsx", FormatXLSX},
		{"macro.xlsm", FormatXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := FormatFromFilename(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"data.json", "archive.xls.zip", "noext", ""} {
		_, err := FormatFromFilename(bad)
		perr := requireParseError(t, err, KindUnsupportedFormat)
		assert.Equal(t, bad, perr.Filename)
	}
}

func TestFromFile_CSVSelectsNumericColumns(t *testing.T) {
	csv := "name,height,weight,note\n" +
		"ann,1.60,55,ok\n" +
		"bob,1.80,,late\n" +
		"cid,1.75,70,\n"

	ext, err := newTestAcquirer().FromFile("people.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, ext.Format)
	assert.Equal(t, "people.csv", ext.Source)
	assert.Equal(t, stats.Sample{1.60, 55, 1.80, 1.75, 70}, ext.Sample)
	assert.Equal(t, []string{"name", "note"}, ext.Skipped)

	require.Len(t, ext.Columns, 2)
	assert.Equal(t, "height", ext.Columns[0].Name)
	assert.Equal(t, stats.Sample{1.60, 1.80, 1.75}, ext.Columns[0].Sample)
	assert.Equal(t, "weight", ext.Columns[1].Name)
	assert.Equal(t, stats.Sample{55, 70}, ext.Columns[1].Sample)
}

func TestFromFile_TabSeparatedText(t *testing.T) {
	tsv := "a\tb\n1\t2\n3\t4\n"

	for _, name := range []string{"values.txt", "values.tsv"} {
		ext, err := newTestAcquirer().FromFile(name, strings.NewReader(tsv))
		require.NoError(t, err)
		assert.Equal(t, FormatTSV, ext.Format)
		assert.Equal(t, stats.Sample{1, 2, 3, 4}, ext.Sample)
		assert.Empty(t, ext.Skipped)
	}
}

func TestFromFile_RaggedRowsAndBOM(t *testing.T) {
	csv := "\ufeffx,y\n1\n2,3,4\n"

	ext, err := newTestAcquirer().FromFile("ragged.csv", strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, ext.Columns, 3)
	assert.Equal(t, "x", ext.Columns[0].Name)
	assert.Equal(t, "column_3", ext.Columns[2].Name)
	assert.Equal(t, stats.Sample{1, 2, 3, 4}, ext.Sample)
}

func TestFromFile_NoNumericColumnsYieldsEmptySample(t *testing.T) {
	ext, err := newTestAcquirer().FromFile("words.csv", strings.NewReader("city\nOslo\nLima\n"))
	require.NoError(t, err)

	assert.Empty(t, ext.Sample)
	assert.NotNil(t, ext.Sample)
	assert.Empty(t, ext.Columns)
	assert.Equal(t, []string{"city"}, ext.Skipped)
}

func TestFromFile_WithoutHeader(t *testing.T) {
	acq := NewAcquirer(Options{HasHeader: false, PreviewRows: 1})

	ext, err := acq.FromFile("raw.csv", strings.NewReader("1,2\n3,4\n"))
	require.NoError(t, err)

	assert.Equal(t, stats.Sample{1, 2, 3, 4}, ext.Sample)
	assert.Equal(t, "column_1", ext.Columns[0].Name)
	assert.Equal(t, [][]string{{"column_1", "column_2"}, {"1", "2"}}, ext.Preview)
}

func TestFromFile_Preview(t *testing.T) {
	var b strings.Builder
	b.WriteString("v\n")
	for i := 0; i < 10; i++ {
		b.WriteString("1\n")
	}

	ext, err := newTestAcquirer().FromFile("many.csv", strings.NewReader(b.String()))
	require.NoError(t, err)

	require.Len(t, ext.Preview, 6)
	assert.Equal(t, []string{"v"}, ext.Preview[0])
	assert.Len(t, ext.Sample, 10)
}

func TestFromFile_MalformedCSV(t *testing.T) {
	_, err := newTestAcquirer().FromFile("broken.csv", strings.NewReader("a,b\n\"1,2\n"))
	perr := requireParseError(t, err, KindMalformedTable)
	assert.Equal(t, "broken.csv", perr.Filename)
	assert.Contains(t, perr.Error(), "cannot read broken.csv")
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	_, err := newTestAcquirer().FromFile("data.json", strings.NewReader("[1,2]"))
	perr := requireParseError(t, err, KindUnsupportedFormat)
	assert.Contains(t, perr.Error(), "data.json")
}

func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestFromFile_Workbook(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]interface{}{
		{"region", "sales", "units"},
		{"north", 10.5, 3},
		{"south", 20, 4},
	})

	ext, err := newTestAcquirer().FromFile("report.xlsx", buf)
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, ext.Format)
	assert.Equal(t, stats.Sample{10.5, 3, 20, 4}, ext.Sample)
	assert.Equal(t, []string{"region"}, ext.Skipped)
	require.Len(t, ext.Columns, 2)
	assert.Equal(t, "sales", ext.Columns[0].Name)
}

func TestFromFile_WorkbookReadsStoredValuesOfFormattedCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"amount", "share"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1234.5, 0.25}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{0.25, 0.5}))

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A3", thousands))
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B3", percent))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ext, err := newTestAcquirer().FromFile("styled.xlsx", buf)
	require.NoError(t, err)

	assert.Empty(t, ext.Skipped)
	assert.Equal(t, stats.Sample{1234.5, 0.25, 0.25, 0.5}, ext.Sample)
	require.Len(t, ext.Columns, 2)
	assert.Equal(t, stats.Sample{1234.5, 0.25}, ext.Columns[0].Sample)
	assert.Equal(t, stats.Sample{0.25, 0.5}, ext.Columns[1].Sample)
}

func TestFromFile_WorkbookNamedSheet(t *testing.T) {
	buf := workbook(t, "Data", [][]interface{}{
		{"x"},
		{1},
		{2},
	})

	acq := NewAcquirer(Options{HasHeader: true, Sheet: "Data"})
	ext, err := acq.FromFile("named.xlsx", buf)
	require.NoError(t, err)
	assert.Equal(t, stats.Sample{1, 2}, ext.Sample)

	buf = workbook(t, "Data", [][]interface{}{{"x"}, {1}})
	_, err = NewAcquirer(Options{HasHeader: true, Sheet: "Missing"}).FromFile("named.xlsx", buf)
	requireParseError(t, err, KindMalformedTable)
}

func TestFromFile_CorruptWorkbook(t *testing.T) {
	_, err := newTestAcquirer().FromFile("corrupt.xlsx", strings.NewReader("not a zip archive"))
	perr := requireParseError(t, err, KindMalformedTable)
	assert.Error(t, errors.Unwrap(perr))
}

func TestFromFile_TabSeparatedBlankCellsKeepTheirColumn(t *testing.T) {
	ext, err := newTestAcquirer().FromFile("gaps.tsv", strings.NewReader("a\tb\tc\n1\t\tx\n\t4\ty\n"))
	require.NoError(t, err)

	require.Len(t, ext.Columns, 2)
	assert.Equal(t, stats.Sample{1}, ext.Columns[0].Sample)
	assert.Equal(t, stats.Sample{4}, ext.Columns[1].Sample)
	assert.Equal(t, []string{"c"}, ext.Skipped)
}
