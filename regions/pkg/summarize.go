package regions

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

const RegionsName = "variant_regions.bed"

var RegionColumns = []string{"chrom", "chromStart", "chromEnd", "leadSnp_pos", "leadSnp_pval", "num_included_variants", "num_phenotypes", "phenotypes"}

type Region struct {
	Chrom string
	Start int64
	End int64
	LeadPos int
	LeadPval string
	NumVariants int
	NumPhenotypes int
	Phenotypes []string
}

func (r Region) Row() []string {
	return []string{
		r.Chrom,
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		strconv.Itoa(r.LeadPos),
		r.LeadPval,
		strconv.Itoa(r.NumVariants),
		strconv.Itoa(r.NumPhenotypes),
		strings.Join(r.Phenotypes, ","),
	}
}

type keyEntry struct {
	Pos int
	Pval float64
	PvalStr string
}

func parseKey(key string) (keyEntry, error) {
	parts := strings.Split(key, "&")
	if len(parts) < 3 {
		return keyEntry{}, fmt.Errorf("parseKey: key %q has %v parts", key, len(parts))
	}
	loc := strings.Split(parts[0], ":")
	if len(loc) != 3 {
		return keyEntry{}, fmt.Errorf("parseKey: bad location %q", parts[0])
	}
	pos, e := strconv.Atoi(loc[2])
	if e != nil {
		return keyEntry{}, fmt.Errorf("parseKey: %w", e)
	}
	pval, e := strconv.ParseFloat(parts[1], 64)
	if e != nil {
		return keyEntry{}, fmt.Errorf("parseKey: %w", e)
	}
	return keyEntry{Pos: pos, Pval: pval, PvalStr: parts[1]}, nil
}

// Reduce one merged region to its lead SNP and counts.
func Summarize(m Merged) (Region, error) {
	h := handle("Summarize: %w")

	if len(m.IDs) != len(m.Keys) {
		return Region{}, h(fmt.Errorf("%v IDs != %v keys in region %v:%v-%v", len(m.IDs), len(m.Keys), m.Chr, m.Start, m.End))
	}
	if len(m.Keys) == 0 {
		return Region{}, h(fmt.Errorf("empty region %v:%v-%v", m.Chr, m.Start, m.End))
	}

	entries := make([]keyEntry, 0, len(m.Keys))
	pvals := make(stats.Float64Data, 0, len(m.Keys))
	for _, k := range m.Keys {
		ke, e := parseKey(k)
		if e != nil { return Region{}, h(e) }
		entries = append(entries, ke)
		pvals = append(pvals, ke.Pval)
	}

	minp, e := stats.Min(pvals)
	if e != nil { return Region{}, h(e) }
	lead := entries[0]
	for _, ke := range entries {
		if ke.Pval == minp {
			lead = ke
			break
		}
	}

	return Region{
		Chrom: m.Chr,
		Start: m.Start,
		End: m.End,
		LeadPos: lead.Pos,
		LeadPval: lead.PvalStr,
		NumVariants: len(m.IDs),
		NumPhenotypes: len(distinct(m.Phenotypes)),
		Phenotypes: m.Phenotypes,
	}, nil
}

// Cluster the hits of every table in dir into regions and write
// variant_regions.bed to outdir.
func HitRegions(ctx context.Context, dir, outdir string, merger Merger) (string, error) {
	h := handle("HitRegions: %w")

	if e := os.MkdirAll(outdir, 0755); e != nil { return "", h(e) }

	ws, e := ReadWindows(dir)
	if e != nil { return "", h(e) }

	merged, e := merger.Merge(ctx, ws)
	if e != nil { return "", h(e) }

	out := tsv.NewTable(RegionColumns...)
	rs := make([]Region, 0, len(merged))
	for _, m := range merged {
		r, e := Summarize(m)
		if e != nil { return "", h(e) }
		rs = append(rs, r)
		out.Append(r.Row()...)
	}

	log.Printf("%v windows merged into %v regions", len(ws), len(rs))

	outpath := filepath.Join(outdir, RegionsName)
	if e := tsv.WriteTablePath(outpath, out, '\t'); e != nil { return "", h(e) }
	return outpath, nil
}
