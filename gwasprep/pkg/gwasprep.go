package gwasprep

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

const invalidFilenameChars = ` <>:"/\|?*`

// Drop characters that are unsafe in file names and trim spaces and dots
// from both ends.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !strings.ContainsRune(invalidFilenameChars, r) {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " .")
}

var bgenRe = regexp.MustCompile(`chr(\d+)\.bgen`)

func ChromosomeFromBgen(path string) (chrom int, ok bool) {
	m := bgenRe.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	chrom, e := strconv.Atoi(m[1])
	return chrom, e == nil
}

// Sort by chromosome number. Paths without one go last, in their original
// order.
func SortBgens(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		ci, oki := ChromosomeFromBgen(paths[i])
		cj, okj := ChromosomeFromBgen(paths[j])
		if oki != okj {
			return oki
		}
		return ci < cj
	})
}

func FindBgens(dir string) ([]string, error) {
	h := handle("FindBgens: %w")

	entries, e := os.ReadDir(dir)
	if e != nil {
		return nil, h(fmt.Errorf("BGEN folder %v does not exist or is empty: %w", dir, e))
	}
	var out []string
	for _, ent := range entries {
		if ent.Type().IsRegular() && strings.HasSuffix(ent.Name(), ".bgen") {
			out = append(out, filepath.Join(dir, ent.Name()))
		}
	}
	if len(out) < 1 {
		return nil, h(fmt.Errorf("BGEN folder %v contains no .bgen files", dir))
	}
	SortBgens(out)
	return out, nil
}

// BGEN files without a <path>.idx2 index directory.
func MissingIndexes(paths []string) []string {
	var out []string
	for _, p := range paths {
		if fi, e := os.Stat(p + ".idx2"); e != nil || !fi.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

var SampleColumns = []string{"ID_1", "ID_2", "missing", "sex"}

// Read a space-separated Oxford .sample file.
func ReadSampleFile(r io.Reader) (*tsv.Table, error) {
	t, e := tsv.ReadTable(r, ' ', SampleColumns...)
	if e != nil {
		return nil, fmt.Errorf("ReadSampleFile: check the sample format at https://www.cog-genomics.org/plink/2.0/formats#sample: %w", e)
	}
	return t, nil
}

// Read a tab-separated phenotype file with Sample_ID and at least one
// phenotype column. Returns the phenotype names in file order.
func ReadPhenoFile(r io.Reader) (*tsv.Table, []string, error) {
	h := handle("ReadPhenoFile: %w")

	t, e := tsv.ReadTable(r, '\t', "Sample_ID")
	if e != nil { return nil, nil, h(e) }
	if len(t.Header) < 2 {
		return nil, nil, h(fmt.Errorf("phenotype file does not contain any phenotypes"))
	}
	var phenos []string
	for _, c := range t.Header {
		if c != "Sample_ID" {
			phenos = append(phenos, c)
		}
	}
	return t, phenos, nil
}

type CovariateKind int

const (
	Sex CovariateKind = iota
	Ancestry
)

func (k CovariateKind) String() string {
	if k == Sex {
		return "sex"
	}
	return "ancestry"
}

// Sex covariates have exactly two columns, ancestry covariates at least two.
// Both must have Sample_ID.
func CheckCovariates(r io.Reader, kind CovariateKind) (*tsv.Table, error) {
	h := handle("CheckCovariates: %v: %w")

	t, e := tsv.ReadTable(r, '\t')
	if e != nil { return nil, h(kind, e) }
	switch {
	case kind == Sex && len(t.Header) != 2:
		return nil, h(kind, fmt.Errorf("covariate file must be a tab separated file with two columns, has %v", len(t.Header)))
	case kind == Ancestry && len(t.Header) < 2:
		return nil, h(kind, fmt.Errorf("covariate file must be a tab separated file with at least two columns, has %v", len(t.Header)))
	}
	if e := t.Has("Sample_ID"); e != nil { return nil, h(kind, e) }
	return t, nil
}

type Args struct {
	SampleFile string
	BgensDir string
	PhenoFile string
	SexCov string
	AncestryCov string
	OutputDir string
}

type Plan struct {
	Bgens []string
	MissingIndexes []string
	Phenotypes []string
	SharedSamples int
	Outputs map[string]string
	SexCov string `json:",omitempty"`
	AncestryCov string `json:",omitempty"`
}

func readPath[T any](path string, f func(io.Reader) (T, error)) (T, error) {
	var zero T
	if fi, e := os.Stat(path); e != nil || fi.IsDir() {
		return zero, fmt.Errorf("file %v does not exist", path)
	}
	r, e := csvh.OpenMaybeGz(path)
	if e != nil {
		return zero, e
	}
	defer r.Close()
	return f(r)
}

func SharedSamples(samples, phenos *tsv.Table) int {
	ids := map[string]struct{}{}
	for i := range samples.Rows {
		ids[samples.Get(i, "ID_1")] = struct{}{}
	}
	shared := map[string]struct{}{}
	for i := range phenos.Rows {
		id := phenos.Get(i, "Sample_ID")
		if _, ok := ids[id]; ok {
			shared[id] = struct{}{}
		}
	}
	return len(shared)
}

// Check every GWAS input and describe the run that would follow.
func MakePlan(args Args) (Plan, error) {
	h := handle("MakePlan: %w")
	var p Plan

	samples, e := readPath(args.SampleFile, ReadSampleFile)
	if e != nil { return p, h(e) }
	log.Printf("Sample file loaded successfully. It contains %v samples.", samples.Len())

	if p.Bgens, e = FindBgens(args.BgensDir); e != nil { return p, h(e) }
	p.MissingIndexes = MissingIndexes(p.Bgens)
	if len(p.MissingIndexes) > 0 {
		log.Printf("%v of %v bgen files are not indexed", len(p.MissingIndexes), len(p.Bgens))
	}

	type phenoFile struct {
		t *tsv.Table
		names []string
	}
	pf, e := readPath(args.PhenoFile, func(r io.Reader) (phenoFile, error) {
		t, names, e := ReadPhenoFile(r)
		return phenoFile{t, names}, e
	})
	if e != nil { return p, h(e) }
	p.Phenotypes = pf.names
	log.Printf("Phenotype file loaded successfully. It contains %v samples and %v phenotype(s).", pf.t.Len(), len(p.Phenotypes))

	p.SharedSamples = SharedSamples(samples, pf.t)
	if p.SharedSamples == 0 {
		return p, h(fmt.Errorf("no sample IDs are shared between the sample file and the phenotype file"))
	}
	log.Printf("%v sample IDs are shared between the sample file and the phenotype file.", p.SharedSamples)

	if args.SexCov != "" {
		if _, e := readPath(args.SexCov, func(r io.Reader) (*tsv.Table, error) { return CheckCovariates(r, Sex) }); e != nil {
			return p, h(e)
		}
		p.SexCov = args.SexCov
	}
	if args.AncestryCov != "" {
		if _, e := readPath(args.AncestryCov, func(r io.Reader) (*tsv.Table, error) { return CheckCovariates(r, Ancestry) }); e != nil {
			return p, h(e)
		}
		p.AncestryCov = args.AncestryCov
	}

	p.Outputs = make(map[string]string, len(p.Phenotypes))
	for _, ph := range p.Phenotypes {
		p.Outputs[ph] = filepath.Join(args.OutputDir, "GWAS_"+SanitizeFilename(ph)+".tsv")
	}
	return p, nil
}

func (p Plan) WriteJson(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(p)
}
