package regions

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/fastats/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

// Overlapping windows collapsed into one region. The list fields hold the
// distinct values of the merged windows, sorted as strings.
type Merged struct {
	fastats.ChrSpan
	LeadPos []string
	Pvals []string
	Phenotypes []string
	IDs []string
	Keys []string
}

type Merger interface {
	Merge(ctx context.Context, ws []Window) ([]Merged, error)
}

func distinct(vals []string) []string {
	set := map[string]struct{}{}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := set[v]; !ok {
			set[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (m *Merged) add(w Window) {
	m.LeadPos = append(m.LeadPos, strconv.Itoa(w.LeadPos))
	m.Pvals = append(m.Pvals, w.Pval)
	m.Phenotypes = append(m.Phenotypes, w.Phenotype)
	m.IDs = append(m.IDs, strconv.Itoa(w.Num))
	m.Keys = append(m.Keys, w.Key())
}

func (m *Merged) finish() {
	m.LeadPos = distinct(m.LeadPos)
	m.Pvals = distinct(m.Pvals)
	m.Phenotypes = distinct(m.Phenotypes)
	m.IDs = distinct(m.IDs)
	m.Keys = distinct(m.Keys)
}

// In-process equivalent of "bedtools merge -c 4,5,6,7,8 -o distinct":
// windows on the same chromosome merge when they overlap or touch.
type SweepMerger struct{}

func (SweepMerger) Merge(ctx context.Context, ws []Window) ([]Merged, error) {
	sorted := append([]Window{}, ws...)
	SortWindows(sorted)

	var out []Merged
	var cur *Merged
	curChrom := 0
	for _, w := range sorted {
		if cur != nil && w.Chrom == curChrom && int64(w.Start) <= cur.End {
			if int64(w.End) > cur.End {
				cur.End = int64(w.End)
			}
			cur.add(w)
			continue
		}
		if cur != nil {
			cur.finish()
			out = append(out, *cur)
		}
		cur = &Merged{ChrSpan: fastats.ChrSpan{Chr: strconv.Itoa(w.Chrom), Span: fastats.Span{Start: int64(w.Start), End: int64(w.End)}}}
		curChrom = w.Chrom
		cur.add(w)
	}
	if cur != nil {
		cur.finish()
		out = append(out, *cur)
	}
	return out, nil
}

type BedtoolsMerger struct {
	Bedtools extern.Bedtools
	Tmpdir string
}

const (
	step1Name = "variant_regions_step1.bed"
	step2Name = "variant_regions_step2.bed"
)

func WriteWindows(w io.Writer, ws []Window) error {
	t := tsv.NewTable(WindowColumns...)
	for _, win := range ws {
		t.Append(win.Row()...)
	}
	return t.Write(w, '\t')
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return distinct(strings.Split(s, ","))
}

// Parse the output of bedtools merge run on WindowColumns with
// "-c 4,5,6,7,8 -o distinct". A header line is skipped.
func ParseMerged(r io.Reader) ([]Merged, error) {
	h := handle("ParseMerged: %w")
	cr := tsv.NewReader(r, '\t')

	var out []Merged
	for line, e := cr.Read(); e != io.EOF; line, e = cr.Read() {
		if e != nil { return nil, h(e) }
		if len(line) < 8 {
			return nil, h(fmt.Errorf("len(line) %v < 8", len(line)))
		}
		start, e := strconv.ParseInt(line[1], 0, 64)
		if e != nil {
			if len(out) == 0 && line[0] == WindowColumns[0] {
				continue
			}
			return nil, h(e)
		}
		end, e := strconv.ParseInt(line[2], 0, 64)
		if e != nil { return nil, h(e) }

		out = append(out, Merged{
			ChrSpan: fastats.ChrSpan{Chr: line[0], Span: fastats.Span{Start: start, End: end}},
			LeadPos: splitList(line[3]),
			Pvals: splitList(line[4]),
			Phenotypes: splitList(line[5]),
			IDs: splitList(line[6]),
			Keys: splitList(line[7]),
		})
	}
	return out, nil
}

func (b BedtoolsMerger) Merge(ctx context.Context, ws []Window) (merged []Merged, err error) {
	h := handle("BedtoolsMerger.Merge: %w")

	step1 := filepath.Join(b.Tmpdir, step1Name)
	step2 := filepath.Join(b.Tmpdir, step2Name)
	defer os.Remove(step1)
	defer os.Remove(step2)

	sorted := append([]Window{}, ws...)
	SortWindows(sorted)
	if e := writeWindowsPath(step1, sorted); e != nil { return nil, h(e) }

	w, e := os.Create(step2)
	if e != nil { return nil, h(e) }
	e = b.Bedtools.Merge(ctx, step1, w, "-header", "-c", "4,5,6,7,8", "-o", "distinct")
	if ce := w.Close(); e == nil {
		e = ce
	}
	if e != nil { return nil, h(e) }

	r, e := os.Open(step2)
	if e != nil { return nil, h(e) }
	defer r.Close()

	merged, e = ParseMerged(r)
	if e != nil { return nil, h(e) }
	return merged, nil
}

func writeWindowsPath(path string, ws []Window) error {
	w, e := tsv.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	if e := WriteWindows(w, ws); e != nil {
		w.Close()
		return e
	}
	return w.Close()
}
