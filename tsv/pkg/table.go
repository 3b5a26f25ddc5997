package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"github.com/jgbaldwinbrown/csvh"
)

var ErrMissingColumn = errors.New("missing column")
var ErrEmpty = errors.New("empty table")

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

func NewReader(r io.Reader, sep rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.ReuseRecord = true
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

func NewWriter(w io.Writer, sep rune) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	return cw
}

// A delimited table with a header row. Rows may be shorter than the header;
// missing cells read as "".
type Table struct {
	Header []string
	Rows [][]string
	cols map[string]int
}

func NewTable(header ...string) *Table {
	t := &Table{Header: append([]string{}, header...)}
	t.index()
	return t
}

func (t *Table) index() {
	t.cols = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, ok := t.cols[name]; !ok {
			t.cols[name] = i
		}
	}
}

func (t *Table) Col(name string) int {
	if i, ok := t.cols[name]; ok {
		return i
	}
	return -1
}

func (t *Table) Has(names ...string) error {
	for _, name := range names {
		if t.Col(name) < 0 {
			return fmt.Errorf("%w: %v", ErrMissingColumn, name)
		}
	}
	return nil
}

func (t *Table) Get(row int, name string) string {
	return Field(t.Rows[row], t.Col(name))
}

func Field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Reorder the table to the named columns, in the order given.
func (t *Table) Select(names ...string) (*Table, error) {
	h := handle("Select: %w")
	if e := t.Has(names...); e != nil {
		return nil, h(e)
	}
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.Col(name)
	}

	out := NewTable(names...)
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		orow := make([]string, len(idx))
		for i, j := range idx {
			orow[i] = Field(row, j)
		}
		out.Rows = append(out.Rows, orow)
	}
	return out, nil
}

func (t *Table) Rename(from, to string) {
	i := t.Col(from)
	if i < 0 {
		return
	}
	t.Header[i] = to
	t.index()
}

func (t *Table) SortStable(less func(a, b []string) bool) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return less(t.Rows[i], t.Rows[j])
	})
}

func ReadTable(r io.Reader, sep rune, required ...string) (*Table, error) {
	h := handle("ReadTable: %w")
	cr := NewReader(r, sep)

	header, e := cr.Read()
	if e == io.EOF {
		return nil, h(ErrEmpty)
	}
	if e != nil { return nil, h(e) }

	t := NewTable(header...)
	if e := t.Has(required...); e != nil {
		return nil, h(e)
	}

	for line, e := cr.Read(); e != io.EOF; line, e = cr.Read() {
		if e != nil { return nil, h(e) }
		row := make([]string, len(line))
		copy(row, line)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func ReadTablePath(path string, sep rune, required ...string) (t *Table, err error) {
	h := handle("ReadTablePath: %w")

	r, e := csvh.OpenMaybeGz(path)
	if e != nil { return nil, h(e) }
	defer r.Close()

	t, e = ReadTable(r, sep, required...)
	if e != nil { return nil, h(fmt.Errorf("%v: %w", path, e)) }
	return t, nil
}

func (t *Table) Write(w io.Writer, sep rune) error {
	h := handle("Table.Write: %w")
	cw := NewWriter(w, sep)

	if e := cw.Write(t.Header); e != nil { return h(e) }
	for _, row := range t.Rows {
		if e := cw.Write(row); e != nil { return h(e) }
	}
	cw.Flush()
	if e := cw.Error(); e != nil { return h(e) }
	return nil
}

func WriteTablePath(path string, t *Table, sep rune) (err error) {
	h := handle("WriteTablePath: %w")

	w, e := CreateMaybeGz(path)
	if e != nil { return h(e) }
	defer func() { csvh.DeferE(&err, w.Close()) }()

	if e := t.Write(w, sep); e != nil { return h(e) }
	return nil
}

// Chromosome name to a sortable number: "chr" is optional, X is 23, Y is 24
// and the mitochondrion is 25.
func ParseChrom(s string) (int, error) {
	c := strings.TrimPrefix(s, "chr")
	switch c {
	case "X": return 23, nil
	case "Y": return 24, nil
	case "M", "MT": return 25, nil
	}
	n, e := strconv.Atoi(c)
	if e != nil {
		return 0, fmt.Errorf("ParseChrom: bad chromosome %q", s)
	}
	return n, nil
}

// Compare two cells numerically when both parse as integers, otherwise as
// strings.
func CompareCells(a, b string) int {
	ai, e1 := strconv.ParseInt(a, 10, 64)
	bi, e2 := strconv.ParseInt(b, 10, 64)
	if e1 == nil && e2 == nil {
		switch {
		case ai < bi: return -1
		case ai > bi: return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
