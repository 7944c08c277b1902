package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Table is anything that can be written out as CSV.
type Table interface {
	Header() []string
	Len() int
	Row(i int) []string
}

// Frame is the assembled mill dataset.
type Frame struct {
	Records []Record
}

func (f *Frame) Header() []string { return ColumnNames() }

func (f *Frame) Len() int { return len(f.Records) }

func (f *Frame) Row(i int) []string {
	r := &f.Records[i]
	row := make([]string, len(Columns))
	for j, c := range Columns {
		row[j] = c.Format(r)
	}
	return row
}

func Write(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates or truncates path and writes t into it.
func WriteFile(path string, t Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	bw := bufio.NewWriter(file)
	if err := Write(bw, t); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return file.Close()
}
