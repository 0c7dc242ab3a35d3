package ingestion

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cell is one header/value pair of a decoded row.
type Cell struct {
	Header string
	Value  any
}

// RawRow is one decoded data row. Cells keep the column order of the source
// sheet; Line is the 1-based row number in the file, or 0 when unknown.
type RawRow struct {
	Line  int
	cells []Cell
	index map[string]int
}

// NewRawRow builds a row from cells in column order. A repeated header keeps its first value.
func NewRawRow(line int, cells ...Cell) RawRow {
	row := RawRow{
		Line:  line,
		cells: make([]Cell, 0, len(cells)),
		index: make(map[string]int, len(cells)),
	}
	for _, cell := range cells {
		if _, exists := row.index[cell.Header]; exists {
			continue
		}
		row.index[cell.Header] = len(row.cells)
		row.cells = append(row.cells, cell)
	}
	return row
}

// RowFromMap builds a row from a header→value map. Columns are ordered by header name.
func RowFromMap(values map[string]any) RawRow {
	headers := make([]string, 0, len(values))
	for header := range values {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	cells := make([]Cell, 0, len(headers))
	for _, header := range headers {
		cells = append(cells, Cell{Header: header, Value: values[header]})
	}
	return NewRawRow(0, cells...)
}

// Lookup returns the value stored under the exact header.
func (r RawRow) Lookup(header string) (any, bool) {
	idx, ok := r.index[header]
	if !ok {
		return nil, false
	}
	return r.cells[idx].Value, true
}

// Cells returns the row's cells in column order.
func (r RawRow) Cells() []Cell {
	out := make([]Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// Headers returns the row's headers in column order.
func (r RawRow) Headers() []string {
	headers := make([]string, len(r.cells))
	for i, cell := range r.cells {
		headers[i] = cell.Header
	}
	return headers
}

// Len reports the number of cells.
func (r RawRow) Len() int {
	return len(r.cells)
}

// IsEmpty reports whether every cell is blank or the literal "undefined".
func (r RawRow) IsEmpty() bool {
	for _, cell := range r.cells {
		text := strings.TrimSpace(stringify(cell.Value))
		if text != "" && text != "undefined" {
			return false
		}
	}
	return true
}

// stringify renders a cell value the way it would read in a spreadsheet.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("2006-01-02")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func isBlank(value any) bool {
	return strings.TrimSpace(stringify(value)) == ""
}
