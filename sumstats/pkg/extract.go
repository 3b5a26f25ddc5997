package sumstats

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"github.com/jgbaldwinbrown/csvh"
)

type ExtractArgs struct {
	VarInfo string
	Dir string
	Pexp float64
	Outdir string
	Threads int
}

// Read one .res file, keeping the rows for which keep(chi2) is true, and join
// them to the variant info.
func ExtractFile(path string, info map[string]VarInfo, keep func(float64) bool) (phenotype string, hits []Hit, err error) {
	h := handle("ExtractFile: %v: %w")

	phenotype, e := PhenotypeFromFilename(path)
	if e != nil { return "", nil, h(path, e) }

	r, e := csvh.OpenMaybeGz(path)
	if e != nil { return "", nil, h(path, e) }
	defer r.Close()

	e = ParseRes(r).Iterate(func(res ResEntry) error {
		if !keep(res.Chi2) {
			return nil
		}
		vi, ok := info[res.ID]
		if !ok {
			return fmt.Errorf("no variant info for %v", res.ID)
		}
		hit, e := NewHit(res, vi, phenotype)
		if e != nil { return e }
		hits = append(hits, hit)
		return nil
	})
	if e != nil { return "", nil, h(path, e) }

	SortHits(hits)
	return phenotype, hits, nil
}

func ListFiles(dir string, exts ...string) ([]string, error) {
	entries, e := os.ReadDir(dir)
	if e != nil {
		return nil, fmt.Errorf("ListFiles: %w", e)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, ext := range exts {
			if strings.HasSuffix(entry.Name(), ext) {
				out = append(out, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Filter every .res file in a folder by p-value and write one hit table per
// phenotype. Phenotypes without hits still get a header-only table.
func ExtractByPval(ctx context.Context, args ExtractArgs) error {
	h := handle("ExtractByPval: %w")

	info, e := ReadVarInfoPath(args.VarInfo)
	if e != nil { return h(e) }

	paths, e := ListFiles(args.Dir, ".res")
	if e != nil { return h(e) }

	seen := map[string]string{}
	for _, path := range paths {
		pheno, e := PhenotypeFromFilename(path)
		if e != nil { return h(e) }
		if prev, ok := seen[pheno]; ok {
			return h(fmt.Errorf("%v and %v share phenotype %v", prev, path, pheno))
		}
		seen[pheno] = path
	}

	thresh := Chi2Threshold(args.Pexp)
	keep := func(chi2 float64) bool { return chi2 > thresh }
	log.Printf("p < 1e-%v; chi2 threshold %v", args.Pexp, thresh)

	g, ctx := errgroup.WithContext(ctx)
	if args.Threads > 0 {
		g.SetLimit(args.Threads)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if e := ctx.Err(); e != nil {
				return e
			}
			log.Printf("File %v/%v: %v", i+1, len(paths), filepath.Base(path))

			pheno, hits, e := ExtractFile(path, info, keep)
			if e != nil { return e }
			return WriteHitsPath(filepath.Join(args.Outdir, pheno + ".txt"), hits)
		})
	}
	if e := g.Wait(); e != nil { return h(e) }
	return nil
}
