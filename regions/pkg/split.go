package regions

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

var RegionBedColumns = []string{"chromosome", "position", "EA", "pval", "phenotype"}

type hitInterval struct {
	uid uintptr
	pos int
	row []string
}

func (h hitInterval) Overlap(b interval.IntRange) bool {
	return b.Start <= h.pos && b.End > h.pos
}
func (h hitInterval) ID() uintptr { return h.uid }
func (h hitInterval) Range() interval.IntRange {
	return interval.IntRange{Start: h.pos, End: h.pos + 1}
}

// Closed query [Start, End].
type posQuery struct {
	Start int
	End int
}

func (q posQuery) Overlap(b interval.IntRange) bool {
	return b.Start <= q.End && b.End > q.Start
}

// Hits of one phenotype, indexed by chromosome.
type HitIndex struct {
	trees map[int]*interval.IntTree
}

func IndexHits(t *tsv.Table) (*HitIndex, error) {
	h := handle("IndexHits: row %v: %w")

	idx := &HitIndex{trees: map[int]*interval.IntTree{}}
	ccol, pcol := t.Col("chromosome"), t.Col("position")
	for i, row := range t.Rows {
		chrom, e := tsv.ParseChrom(tsv.Field(row, ccol))
		if e != nil { return nil, h(i, e) }
		pos, e := strconv.Atoi(tsv.Field(row, pcol))
		if e != nil { return nil, h(i, e) }

		tree, ok := idx.trees[chrom]
		if !ok {
			tree = &interval.IntTree{}
			idx.trees[chrom] = tree
		}
		if e := tree.Insert(hitInterval{uid: uintptr(i + 1), pos: pos, row: row}, false); e != nil {
			return nil, h(i, e)
		}
	}
	return idx, nil
}

// Rows on chrom with start <= position <= end, in file order.
func (idx *HitIndex) Query(chrom, start, end int) [][]string {
	tree, ok := idx.trees[chrom]
	if !ok {
		return nil
	}
	got := tree.Get(posQuery{Start: start, End: end})
	sort.Slice(got, func(i, j int) bool {
		return got[i].ID() < got[j].ID()
	})
	out := make([][]string, 0, len(got))
	for _, g := range got {
		out = append(out, g.(hitInterval).row)
	}
	return out
}

func RegionBedName(n int, chrom string, start, end int) string {
	return fmt.Sprintf("region_%v_chr%v:%v-%v.bed", n, chrom, start, end)
}

type hitCache struct {
	dir string
	idx map[string]*HitIndex
}

func (c *hitCache) get(pheno string) (*HitIndex, error) {
	if idx, ok := c.idx[pheno]; ok {
		return idx, nil
	}
	t, e := tsv.ReadTablePath(filepath.Join(c.dir, pheno + ".txt"), '\t', RegionBedColumns...)
	if e != nil {
		return nil, e
	}
	sel, e := t.Select(RegionBedColumns...)
	if e != nil {
		return nil, e
	}
	idx, e := IndexHits(sel)
	if e != nil {
		return nil, e
	}
	c.idx[pheno] = idx
	return idx, nil
}

// Write one bed per region holding the hits of its phenotypes that fall
// inside it.
func RegionBeds(regionsFile, hitsDir, outdir string) ([]string, error) {
	h := handle("RegionBeds: %w")

	if _, e := os.Stat(regionsFile); e != nil { return nil, h(e) }
	if _, e := os.Stat(hitsDir); e != nil { return nil, h(e) }
	if e := os.MkdirAll(outdir, 0755); e != nil { return nil, h(e) }

	regions, e := tsv.ReadTablePath(regionsFile, '\t', "chrom", "chromStart", "chromEnd", "phenotypes")
	if e != nil { return nil, h(e) }

	cache := &hitCache{dir: hitsDir, idx: map[string]*HitIndex{}}
	var paths []string
	for i := range regions.Rows {
		chromStr := strings.TrimPrefix(regions.Get(i, "chrom"), "chr")
		chrom, e := tsv.ParseChrom(chromStr)
		if e != nil { return nil, h(e) }
		start, e := strconv.Atoi(regions.Get(i, "chromStart"))
		if e != nil { return nil, h(e) }
		end, e := strconv.Atoi(regions.Get(i, "chromEnd"))
		if e != nil { return nil, h(e) }

		out := tsv.NewTable(RegionBedColumns...)
		for _, pheno := range strings.Split(regions.Get(i, "phenotypes"), ",") {
			if pheno == "" {
				continue
			}
			idx, e := cache.get(pheno)
			if e != nil { return nil, h(e) }
			out.Rows = append(out.Rows, idx.Query(chrom, start, end)...)
		}

		path := filepath.Join(outdir, RegionBedName(i + 1, chromStr, start, end))
		if e := tsv.WriteTablePath(path, out, '\t'); e != nil { return nil, h(e) }
		paths = append(paths, path)
	}
	return paths, nil
}

