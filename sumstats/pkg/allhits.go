package sumstats

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

type AllHitsArgs struct {
	Dir string
	Run string
	Pthresh string
	IncludeRepeats bool
	Outdir string
}

func AllHitsName(run, pthresh string, includeRepeats bool) string {
	pstr := ""
	if pthresh != "" {
		pstr = "_10E" + pthresh
	}
	if includeRepeats {
		return fmt.Sprintf("%v_hits_only%v_all_phenotypes_per_variant.txt", run, pstr)
	}
	return fmt.Sprintf("%v_hits_only%v_one_pheno_only_per_variant.txt", run, pstr)
}

// Keep only the most significant row of every variant. Ties go to the
// earlier row.
func BestPerVariant(t *tsv.Table) error {
	h := handle("BestPerVariant: %w")

	idcol := t.Col("ID")
	pcol := t.Col("pval")
	pvals := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		p, e := strconv.ParseFloat(tsv.Field(row, pcol), 64)
		if e != nil { return h(e) }
		pvals[i] = p
	}

	order := make([]int, len(t.Rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return pvals[order[i]] < pvals[order[j]]
	})

	seen := map[string]struct{}{}
	kept := make([][]string, 0, len(t.Rows))
	for _, i := range order {
		id := tsv.Field(t.Rows[i], idcol)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, t.Rows[i])
	}
	t.Rows = kept
	return nil
}

func CollectHitTables(dir string) (*tsv.Table, error) {
	h := handle("CollectHitTables: %w")

	paths, e := ListFiles(dir, ".tsv", ".txt")
	if e != nil { return nil, h(e) }

	all := tsv.NewTable(HitColumns...)
	for i, path := range paths {
		t, e := ReadHitTablePath(path)
		if e != nil { return nil, h(e) }
		if i % 10 == 0 {
			log.Printf("Table %v / %v", i, len(paths))
		}
		if t.Len() == 0 {
			continue
		}
		sel, e := t.Select(HitColumns...)
		if e != nil { return nil, h(e) }
		all.Rows = append(all.Rows, sel.Rows...)
	}
	return all, nil
}

// Combine every per-phenotype hit table in a folder into one table sorted by
// chromosome and position.
func AllHitsTable(args AllHitsArgs) (string, error) {
	h := handle("AllHitsTable: %w")

	if _, e := os.Stat(args.Dir); e != nil {
		return "", h(e)
	}

	all, e := CollectHitTables(args.Dir)
	if e != nil { return "", h(e) }

	if !args.IncludeRepeats {
		if e := BestPerVariant(all); e != nil { return "", h(e) }
	}
	all.SortStable(ChromPosLess(all.Col("chromosome"), all.Col("position")))

	if args.IncludeRepeats {
		log.Printf("Rows of the final table (same variant can be counted several times): %v", all.Len())
	} else {
		log.Printf("Rows of the final table (each variant counted once): %v", all.Len())
	}

	outpath := filepath.Join(args.Outdir, AllHitsName(args.Run, args.Pthresh, args.IncludeRepeats))
	if e := tsv.WriteTablePath(outpath, all, '\t'); e != nil { return "", h(e) }
	return outpath, nil
}
