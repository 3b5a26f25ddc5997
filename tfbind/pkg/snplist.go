package tfbind

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

var SnplistColumns = []string{"ID", "Chrom", "Pos", "OA", "EA"}

type Snp struct {
	ID string
	Chrom string
	Pos int
	OA string
	EA string
}

func (s Snp) ChrPos() ChrPos {
	return ChrPos{Chr: strings.Replace(s.Chrom, "chr", "", 1), Pos: s.Pos}
}

// Snps of a table carrying SnplistColumns.
func SnpsFromTable(t *tsv.Table) ([]Snp, error) {
	h := handle("SnpsFromTable: row %v: %w")
	if e := t.Has(SnplistColumns...); e != nil { return nil, h(-1, e) }

	out := make([]Snp, 0, t.Len())
	for i := range t.Rows {
		pos, e := strconv.Atoi(t.Get(i, "Pos"))
		if e != nil { return nil, h(i, e) }
		out = append(out, Snp{
			ID: t.Get(i, "ID"),
			Chrom: t.Get(i, "Chrom"),
			Pos: pos,
			OA: t.Get(i, "OA"),
			EA: t.Get(i, "EA"),
		})
	}
	return out, nil
}

// Read a snplist whose header is exactly ID, Chrom, Pos, OA, EA.
func ReadSnplist(r io.Reader) ([]Snp, error) {
	h := handle("ReadSnplist: %w")

	t, e := tsv.ReadTable(r, '\t')
	if e != nil { return nil, h(e) }
	if strings.Join(t.Header, "\t") != strings.Join(SnplistColumns, "\t") {
		return nil, h(fmt.Errorf("header %v; the columns should be: %v", t.Header, strings.Join(SnplistColumns, ", ")))
	}

	snps, e := SnpsFromTable(t)
	if e != nil { return nil, h(e) }
	return snps, nil
}

func ReadSnplistPath(path string) ([]Snp, error) {
	r, e := os.Open(path)
	if e != nil {
		return nil, fmt.Errorf("ReadSnplistPath: %w", e)
	}
	defer r.Close()
	return ReadSnplist(r)
}

func RemapStudiesName(cp ChrPos) string {
	return fmt.Sprintf("remap_studies_%v.txt", cp)
}

// One ReMap lookup over a whole snplist.
type SnplistJob struct {
	Snplist string
	Remap string
	Tmpdir string
	Outdir string
	SkipMissing bool
}

func writeStudiesPath(path string, studies []RemapStudy) error {
	return tsv.WriteTablePath(path, StudyTable(studies), '\t')
}

// Write remap_studies_<chr>:<pos>.txt for every distinct position of the
// snplist.
func RemapLookupSnplist(ctx context.Context, tabix extern.Querier, job SnplistJob, threads int) error {
	h := handle("RemapLookupSnplist: %v: %w")

	if e := CheckRemapFile(job.Remap); e != nil { return h(job.Snplist, e) }
	if job.Tmpdir != "" {
		if fi, e := os.Stat(job.Tmpdir); e != nil || !fi.IsDir() {
			return h(job.Snplist, fmt.Errorf("temporary directory %v does not exist", job.Tmpdir))
		}
	}
	if e := os.MkdirAll(job.Outdir, 0755); e != nil { return h(job.Snplist, e) }

	snps, e := ReadSnplistPath(job.Snplist)
	if e != nil { return h(job.Snplist, e) }

	seen := map[ChrPos]struct{}{}
	var cps []ChrPos
	for _, s := range snps {
		cp := s.ChrPos()
		if _, ok := seen[cp]; ok {
			continue
		}
		seen[cp] = struct{}{}
		cps = append(cps, cp)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extern.QueryLimit(threads))
	for _, cp := range cps {
		cp := cp
		g.Go(func() error {
			studies, e := RemapLookup(ctx, tabix, job.Remap, cp, job.Tmpdir)
			if errors.Is(e, ErrNoRemapEntries) && job.SkipMissing {
				log.Printf("Skipping %v: %v", cp, ErrNoRemapEntries)
				return nil
			}
			if e != nil { return e }
			return writeStudiesPath(filepath.Join(job.Outdir, RemapStudiesName(cp)), studies)
		})
	}
	if e := g.Wait(); e != nil { return h(job.Snplist, e) }
	return nil
}

// A stream of JSON SnplistJob objects.
func ReadJobs(r io.Reader) ([]SnplistJob, error) {
	dec := json.NewDecoder(r)
	var jobs []SnplistJob
	for {
		var j SnplistJob
		e := dec.Decode(&j)
		if e == io.EOF {
			break
		}
		if e != nil {
			return nil, fmt.Errorf("ReadJobs: %w", e)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func RemapLookupMulti(ctx context.Context, tabix extern.Querier, threads int, jobs ...SnplistJob) error {
	for i, job := range jobs {
		log.Printf("Job %v/%v: %v", i+1, len(jobs), job.Snplist)
		if e := RemapLookupSnplist(ctx, tabix, job, threads); e != nil {
			return fmt.Errorf("RemapLookupMulti: %w", e)
		}
	}
	return nil
}
