package tsv

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jgbaldwinbrown/csvh"
)

const tableIn = `ID	Chrom	Pos
a	chr2	10
b	chr1	300
c	chr1	20
`

func TestReadTableSelect(t *testing.T) {
	tab, e := ReadTable(strings.NewReader(tableIn), '\t', "ID", "Pos")
	if e != nil { panic(e) }

	sel, e := tab.Select("Pos", "ID")
	if e != nil { panic(e) }
	sel.SortStable(func(a, b []string) bool {
		return CompareCells(a[0], b[0]) < 0
	})

	var b strings.Builder
	if e := sel.Write(&b, '\t'); e != nil { panic(e) }

	expect := "Pos\tID\n10\ta\n20\tc\n300\tb\n"
	if b.String() != expect {
		t.Errorf("out %q != expect %q", b.String(), expect)
	}
}

func TestReadTableMissing(t *testing.T) {
	_, e := ReadTable(strings.NewReader(tableIn), '\t', "ID", "rsid")
	if !errors.Is(e, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", e)
	}
	_, e = ReadTable(strings.NewReader(""), '\t')
	if !errors.Is(e, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", e)
	}
}

func TestGzRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.txt.gz")
	tab, e := ReadTable(strings.NewReader(tableIn), '\t')
	if e != nil { panic(e) }
	if e := WriteTablePath(path, tab, '\t'); e != nil { panic(e) }

	got, e := ReadTablePath(path, '\t')
	if e != nil { panic(e) }
	if !reflect.DeepEqual(got.Rows, tab.Rows) {
		t.Errorf("rows %v != %v", got.Rows, tab.Rows)
	}
}

func TestParseChrom(t *testing.T) {
	cases := []struct {
		in string
		out int
	}{
		{"chr1", 1},
		{"22", 22},
		{"chrX", 23},
		{"MT", 25},
	}
	for _, c := range cases {
		n, e := ParseChrom(c.in)
		if e != nil { panic(e) }
		if n != c.out {
			t.Errorf("ParseChrom(%v) = %v; want %v", c.in, n, c.out)
		}
	}
	if _, e := ParseChrom("chrUn"); e == nil {
		t.Errorf("expected error for chrUn")
	}
}

func TestCreateGzParallel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt.gz")
	var expect strings.Builder
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&expect, "chr1\t%v\tv%v\n", i, i)
	}

	w, e := CreateGz(path, GzOptions{Level: 1, BlockSize: 1 << 15, Blocks: 3})
	if e != nil { panic(e) }
	if _, e := io.WriteString(w, expect.String()); e != nil { panic(e) }
	if e := w.Close(); e != nil { panic(e) }

	r, e := csvh.OpenMaybeGz(path)
	if e != nil { panic(e) }
	defer r.Close()
	got, e := io.ReadAll(r)
	if e != nil { panic(e) }
	if string(got) != expect.String() {
		t.Errorf("len(out) %v != len(expect) %v", len(got), expect.Len())
	}

	if _, e := CreateGz(filepath.Join(t.TempDir(), "bad.gz"), GzOptions{Level: 1, BlockSize: 0, Blocks: 1}); e == nil {
		t.Errorf("expected error for zero block size")
	}
}
