package output

import (
	"bytes"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table collects rows and renders them as an ASCII table.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row to the table. Missing cells are left blank and extra
// cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the table with a separator line after every row.
func (t *Table) Render() string {
	var buf bytes.Buffer
	t.write(&buf, true)
	return buf.String()
}

// RenderCompact returns the table with separators only around the header.
func (t *Table) RenderCompact() string {
	var buf bytes.Buffer
	t.write(&buf, false)
	return buf.String()
}

// WriteTo writes the compact rendering to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.RenderCompact())
	return int64(n), err
}

func (t *Table) write(w io.Writer, rowLines bool) {
	if len(t.headers) == 0 {
		return
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.headers)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetRowLine(rowLines)
	tw.AppendBulk(t.rows)
	tw.Render()
}
