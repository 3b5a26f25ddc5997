package gor

import (
	"fmt"
	"io"
	"strings"

	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

type Args struct {
	ChrCol string
	PosCol string
	Extra []string
	Sep rune
}

// Split a comma-separated column list, trimming spaces.
func ParseExtra(s string) []string {
	var out []string
	for _, col := range strings.Split(s, ",") {
		col = strings.TrimSpace(col)
		if col != "" {
			out = append(out, col)
		}
	}
	return out
}

func check(t *tsv.Table, kind, col string) error {
	if t.Col(col) < 0 {
		return fmt.Errorf("%w: %v column not found: %v", tsv.ErrMissingColumn, kind, col)
	}
	return nil
}

// Reduce a table to GOR layout: #Chrom, Pos, then the extra columns, sorted
// by position and with "chr" on every chromosome.
func ToGor(t *tsv.Table, args Args) (*tsv.Table, error) {
	h := handle("ToGor: %w")

	if e := check(t, "Chromosome", args.ChrCol); e != nil { return nil, h(e) }
	if e := check(t, "Position", args.PosCol); e != nil { return nil, h(e) }
	for _, col := range args.Extra {
		if e := check(t, "Additional", col); e != nil { return nil, h(e) }
	}

	out, e := t.Select(append([]string{args.ChrCol, args.PosCol}, args.Extra...)...)
	if e != nil { return nil, h(e) }
	out.Rename(args.ChrCol, "#Chrom")
	out.Rename(args.PosCol, "Pos")

	out.SortStable(func(a, b []string) bool {
		if c := tsv.CompareCells(a[0], b[0]); c != 0 {
			return c < 0
		}
		return tsv.CompareCells(a[1], b[1]) < 0
	})
	for _, row := range out.Rows {
		if !strings.HasPrefix(row[0], "chr") {
			row[0] = "chr" + row[0]
		}
	}
	return out, nil
}

func ConvertToGor(r io.Reader, w io.Writer, args Args) error {
	h := handle("ConvertToGor: %w")

	if args.Sep == 0 {
		args.Sep = '\t'
	}
	t, e := tsv.ReadTable(r, args.Sep)
	if e != nil { return h(e) }

	out, e := ToGor(t, args)
	if e != nil { return h(e) }

	if e := out.Write(w, '\t'); e != nil { return h(e) }
	return nil
}
