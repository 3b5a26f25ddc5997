package tfbind

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

var FinalRemapColumns = []string{"chr", "pos", "study_accession", "transcription_factor", "biotype", "distance_to_peak"}

var studiesRe = regexp.MustCompile(`^remap_studies_([^:]+):([0-9]+)\.txt$`)

type studiesFile struct {
	path string
	chr string
	chrNum int
	pos int
}

func listStudiesFiles(dir string) ([]studiesFile, error) {
	entries, e := os.ReadDir(dir)
	if e != nil {
		return nil, e
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("directory %v is empty", dir)
	}

	var out []studiesFile
	for _, entry := range entries {
		m := studiesRe.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		c, e := tsv.ParseChrom(m[1])
		if e != nil { return nil, e }
		pos, e := strconv.Atoi(m[2])
		if e != nil { return nil, e }
		out = append(out, studiesFile{path: filepath.Join(dir, entry.Name()), chr: m[1], chrNum: c, pos: pos})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].chrNum != out[j].chrNum {
			return out[i].chrNum < out[j].chrNum
		}
		return out[i].pos < out[j].pos
	})
	return out, nil
}

// Combine every remap_studies_<chr>:<pos>.txt in dir into one table.
func CombineRemapStudies(dir string) (*tsv.Table, error) {
	h := handle("CombineRemapStudies: %w")

	if fi, e := os.Stat(dir); e != nil || !fi.IsDir() {
		return nil, h(fmt.Errorf("directory %v does not exist", dir))
	}
	files, e := listStudiesFiles(dir)
	if e != nil { return nil, h(e) }

	out := tsv.NewTable(FinalRemapColumns...)
	for _, f := range files {
		t, e := tsv.ReadTablePath(f.path, '\t', RemapStudyColumns...)
		if e != nil { return nil, h(e) }
		sel, e := t.Select(RemapStudyColumns...)
		if e != nil { return nil, h(e) }
		for _, row := range sel.Rows {
			out.Append(append([]string{f.chr, strconv.Itoa(f.pos)}, row...)...)
		}
	}
	return out, nil
}

func ProduceFinalRemapOutput(dir, outpath string) error {
	h := handle("ProduceFinalRemapOutput: %w")

	t, e := CombineRemapStudies(dir)
	if e != nil { return h(e) }
	if e := tsv.WriteTablePath(outpath, t, '\t'); e != nil { return h(e) }
	return nil
}

func FilterBiotypes(t *tsv.Table, biotypes []string) (*tsv.Table, error) {
	if e := t.Has("biotype"); e != nil {
		return nil, fmt.Errorf("FilterBiotypes: %w", e)
	}
	keep := map[string]struct{}{}
	for _, b := range biotypes {
		keep[b] = struct{}{}
	}
	out := tsv.NewTable(t.Header...)
	bcol := t.Col("biotype")
	for _, row := range t.Rows {
		if _, ok := keep[tsv.Field(row, bcol)]; ok {
			out.Append(row...)
		}
	}
	return out, nil
}

func copyFile(inpath, outpath string) (err error) {
	r, e := os.Open(inpath)
	if e != nil {
		return e
	}
	defer r.Close()

	w, e := os.Create(outpath)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()

	_, e = io.Copy(w, r)
	return e
}

// Keep the rows of a combined ReMap table whose biotype is listed. An empty
// list copies the table unchanged.
func FilterRemapByBiotype(full string, biotypes []string, outpath string) error {
	h := handle("FilterRemapByBiotype: %w")

	fi, e := os.Stat(full)
	if e != nil || fi.IsDir() {
		return h(fmt.Errorf("file %v does not exist", full))
	}
	if fi.Size() == 0 {
		return h(fmt.Errorf("file %v is empty", full))
	}

	if len(biotypes) == 0 {
		log.Printf("WARNING: No biotype filters were provided. Output file %v will be identical to full ReMap lookup file %v.", outpath, full)
		if e := copyFile(full, outpath); e != nil { return h(e) }
		return nil
	}

	t, e := tsv.ReadTablePath(full, '\t', "biotype")
	if e != nil { return h(e) }
	out, e := FilterBiotypes(t, biotypes)
	if e != nil { return h(e) }
	if e := tsv.WriteTablePath(outpath, out, '\t'); e != nil { return h(e) }
	return nil
}
