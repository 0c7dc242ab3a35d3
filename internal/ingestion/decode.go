package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("file is empty")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// Decode turns an uploaded spreadsheet into raw rows. The first non-blank row is
// the header; every following row is returned, blank ones included, with its
// visual line number.
func Decode(fileName string, payload []byte) ([]RawRow, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyFile
	}

	var (
		records [][]string
		err     error
	)
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		records, err = readCSV(payload)
	case ".xlsx", ".xlsm":
		records, err = readExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return buildRows(records)
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = sniffDelimiter(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

// sniffDelimiter picks ';' for spreadsheets exported with a European list separator.
func sniffDelimiter(reader *bufio.Reader) rune {
	peek, _ := reader.Peek(4096)
	firstLine, _, _ := bytes.Cut(peek, []byte("\n"))
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

func readExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	// Raw values keep numbers and date serials free of display formatting.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func buildRows(records [][]string) ([]RawRow, error) {
	if len(records) == 0 {
		return nil, errors.New("no rows found in file")
	}

	headerIndex := -1
	for idx, record := range records {
		if !blankRecord(record) {
			headerIndex = idx
			break
		}
	}
	if headerIndex < 0 {
		return nil, errors.New("header row could not be detected")
	}

	headers := uniqueHeaders(records[headerIndex])
	data := records[headerIndex+1:]
	rows := make([]RawRow, 0, len(data))
	for rowIdx, record := range data {
		cells := make([]Cell, len(headers))
		for col, header := range headers {
			value := ""
			if col < len(record) {
				value = record[col]
			}
			cells[col] = Cell{Header: header, Value: value}
		}
		rows = append(rows, NewRawRow(headerIndex+rowIdx+2, cells...))
	}
	return rows, nil
}

// uniqueHeaders keeps header text as written, naming blank columns and
// suffixing repeats so every column stays addressable.
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for idx, value := range raw {
		name := value
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		count := seen[name]
		seen[name] = count + 1
		if count > 0 {
			name = fmt.Sprintf("%s_%d", name, count+1)
		}
		headers[idx] = name
	}
	return headers
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
