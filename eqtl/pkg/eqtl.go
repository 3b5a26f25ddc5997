package eqtl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"github.com/jgbaldwinbrown/fasttsv"
	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/sumstats/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

// Column names of an eQTL summary statistics file.
type Columns struct {
	Rsid string
	Chr string
	Pos string
	Gene string
	Pval string
	Slope string
}

var ImmuNexUTColumns = Columns{
	Rsid: "Variant_ID",
	Chr: "Variant_CHR",
	Pos: "Variant_position_start",
	Gene: "Gene_name",
	Pval: "Forward_nominal_P",
	Slope: "Forward_slope",
}

func (c Columns) names() []string {
	return []string{c.Rsid, c.Chr, c.Pos, c.Gene, c.Pval, c.Slope}
}

var OutColumns = []string{"rsid", "chromosome", "position_hg38", "gene", "pval", "slope", "cell_type"}

type Entry struct {
	Rsid string
	Chromosome string
	Position int
	Gene string
	Pval string
	Slope string
	CellType string
}

func (e Entry) Row() []string {
	return []string{e.Rsid, e.Chromosome, strconv.Itoa(e.Position), e.Gene, e.Pval, e.Slope, e.CellType}
}

func ReadRsids(r io.Reader) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	s := bufio.NewScanner(r)
	for s.Scan() {
		id := strings.TrimSpace(s.Text())
		if id == "" {
			continue
		}
		out[id] = struct{}{}
	}
	if e := s.Err(); e != nil {
		return nil, fmt.Errorf("ReadRsids: %w", e)
	}
	return out, nil
}

func ReadRsidsPath(path string) (map[string]struct{}, error) {
	r, e := os.Open(path)
	if e != nil {
		return nil, fmt.Errorf("ReadRsidsPath: %w", e)
	}
	defer r.Close()
	return ReadRsids(r)
}

// CD16p_Mono_nominal_eQTL_hg38.txt -> CD16p_Mono
func CellTypeFromFilename(name string) string {
	fields := strings.Split(filepath.Base(name), "_")
	if len(fields) <= 3 {
		return ""
	}
	return strings.Join(fields[:len(fields)-3], "_")
}

func Lookup(r io.Reader, rsids map[string]struct{}, cols Columns) ([]Entry, error) {
	h := handle("Lookup: %w")

	s := fasttsv.NewScanner(r)
	if !s.Scan() {
		return nil, h(tsv.ErrEmpty)
	}
	header := tsv.NewTable(s.Line()...)
	if e := header.Has(cols.names()...); e != nil { return nil, h(e) }
	rc, cc, pc, gc, pvc, sc := header.Col(cols.Rsid), header.Col(cols.Chr), header.Col(cols.Pos), header.Col(cols.Gene), header.Col(cols.Pval), header.Col(cols.Slope)

	var out []Entry
	for s.Scan() {
		line := s.Line()
		if _, ok := rsids[tsv.Field(line, rc)]; !ok {
			continue
		}
		pos, e := strconv.Atoi(tsv.Field(line, pc))
		if e != nil { return nil, h(e) }
		out = append(out, Entry{
			Rsid: strings.Clone(tsv.Field(line, rc)),
			Chromosome: strings.Clone(tsv.Field(line, cc)),
			Position: pos,
			Gene: strings.Clone(tsv.Field(line, gc)),
			Pval: strings.Clone(tsv.Field(line, pvc)),
			Slope: strings.Clone(tsv.Field(line, sc)),
		})
	}
	return out, nil
}

func LookupFile(path string, rsids map[string]struct{}, cols Columns) ([]Entry, error) {
	h := handle("LookupFile: %v: %w")

	r, e := csvh.OpenMaybeGz(path)
	if e != nil { return nil, h(path, e) }
	defer r.Close()

	out, e := Lookup(r, rsids, cols)
	if e != nil { return nil, h(path, e) }
	return out, nil
}

func SortEntries(es []Entry) error {
	chroms := make(map[string]int, len(es))
	for _, e := range es {
		if _, ok := chroms[e.Chromosome]; ok {
			continue
		}
		c, err := tsv.ParseChrom(e.Chromosome)
		if err != nil {
			return fmt.Errorf("SortEntries: %w", err)
		}
		chroms[e.Chromosome] = c
	}
	sort.SliceStable(es, func(i, j int) bool {
		ci, cj := chroms[es[i].Chromosome], chroms[es[j].Chromosome]
		if ci != cj {
			return ci < cj
		}
		if es[i].Position != es[j].Position {
			return es[i].Position < es[j].Position
		}
		return es[i].Gene < es[j].Gene
	})
	return nil
}

// Look up the rsids in every cell type file of an ImmuNexUT folder.
func LookupFolder(ctx context.Context, dir string, rsids map[string]struct{}, threads int) ([]Entry, error) {
	h := handle("LookupFolder: %w")

	if fi, e := os.Stat(dir); e != nil {
		return nil, h(e)
	} else if !fi.IsDir() {
		return nil, h(fmt.Errorf("path to eQTL data folder %v is not a directory", dir))
	}

	paths, e := sumstats.ListFiles(dir, ".txt")
	if e != nil { return nil, h(e) }

	results := make([][]Entry, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if threads > 0 {
		g.SetLimit(threads)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if e := ctx.Err(); e != nil {
				return e
			}
			log.Printf("File %v/%v: %v", i+1, len(paths), filepath.Base(path))

			es, e := LookupFile(path, rsids, ImmuNexUTColumns)
			if e != nil { return e }
			ct := CellTypeFromFilename(path)
			for j := range es {
				es[j].CellType = ct
			}
			results[i] = es
			return nil
		})
	}
	if e := g.Wait(); e != nil { return nil, h(e) }

	var out []Entry
	for _, es := range results {
		out = append(out, es...)
	}
	if e := SortEntries(out); e != nil { return nil, h(e) }
	return out, nil
}

func EntryTable(es []Entry) *tsv.Table {
	t := tsv.NewTable(OutColumns...)
	for _, e := range es {
		t.Append(e.Row()...)
	}
	return t
}

func WriteEntries(w io.Writer, es []Entry) error {
	return EntryTable(es).Write(w, '\t')
}

func WriteEntriesPath(path string, es []Entry) error {
	return tsv.WriteTablePath(path, EntryTable(es), '\t')
}
