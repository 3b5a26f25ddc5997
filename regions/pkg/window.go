package regions

import (
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/jgbaldwinbrown/iter"
	"github.com/jgbaldwinbrown/gwaspipes/sumstats/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

const Flank = 1000000

// A 1Mb window to either side of one GWAS hit.
type Window struct {
	Num int
	Chrom int
	Start int
	End int
	LeadPos int
	Pval string
	Phenotype string
}

func NewWindow(chrom, pos int, pval, phenotype string) Window {
	start := pos - Flank
	if start < 2 {
		start = 2
	}
	return Window{Chrom: chrom, Start: start, End: pos + Flank, LeadPos: pos, Pval: pval, Phenotype: phenotype}
}

// Carries number, position, p-value and phenotype of the hit through the
// merge so the lead SNP can be recovered afterwards.
func (w Window) Key() string {
	return fmt.Sprintf("%v:%v:%v&%v&%v", w.Num, w.Chrom, w.LeadPos, w.Pval, w.Phenotype)
}

var WindowColumns = []string{"chrom", "chromStart", "chromEnd", "leadSnp_pos", "leadSnp_pval", "phenotypes", "ID", "id_pos_pval_pheno"}

func (w Window) Row() []string {
	return []string{
		strconv.Itoa(w.Chrom), strconv.Itoa(w.Start), strconv.Itoa(w.End),
		strconv.Itoa(w.LeadPos), w.Pval, w.Phenotype,
		strconv.Itoa(w.Num), w.Key(),
	}
}

func WindowsFromTable(t *tsv.Table) *iter.Iterator[Window] {
	return &iter.Iterator[Window]{Iteratef: func(yield func(Window) error) error {
		h := handle("WindowsFromTable: row %v: %w")
		pcol, ccol, poscol, phcol := t.Col("pval"), t.Col("chromosome"), t.Col("position"), t.Col("phenotype")

		for i, row := range t.Rows {
			chrom, e := tsv.ParseChrom(tsv.Field(row, ccol))
			if e != nil { return h(i, e) }
			pos, e := strconv.Atoi(tsv.Field(row, poscol))
			if e != nil { return h(i, e) }

			if e := yield(NewWindow(chrom, pos, tsv.Field(row, pcol), tsv.Field(row, phcol))); e != nil {
				return e
			}
		}
		return nil
	}}
}

func SortWindows(ws []Window) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Chrom != ws[j].Chrom {
			return ws[i].Chrom < ws[j].Chrom
		}
		return ws[i].Start < ws[j].Start
	})
}

// Windows around every hit in a folder of hit tables, sorted and numbered.
func ReadWindows(dir string) ([]Window, error) {
	h := handle("ReadWindows: %w")

	paths, e := sumstats.ListFiles(dir, ".txt", ".tsv")
	if e != nil { return nil, h(e) }

	var ws []Window
	for i, path := range paths {
		t, e := tsv.ReadTablePath(path, '\t', "pval", "chromosome", "position", "phenotype")
		if e != nil { return nil, h(e) }

		got, e := iter.Collect[Window](WindowsFromTable(t))
		if e != nil { return nil, h(fmt.Errorf("%v: %w", path, e)) }
		ws = append(ws, got...)

		if i % 10 == 0 {
			log.Printf("%3d%%", 100 * i / len(paths))
		}
	}

	SortWindows(ws)
	for i := range ws {
		ws[i].Num = i
	}
	return ws, nil
}
