package tfbind

import (
	"errors"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/fastats/pkg"
	"github.com/jgbaldwinbrown/iter"
	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

var ErrNoRemapEntries = errors.New("no ReMap entries found for this SNP")

const RemapSliceName = "remap2022_all_macs2_hg38_v1_0"

type ChrPos struct {
	Chr string
	Pos int
}

// Parse <chr>:<pos>.
func ParseChrPos(s string) (ChrPos, error) {
	c, p, ok := strings.Cut(s, ":")
	if !ok || p == "" || strings.TrimLeft(p, "0123456789") != "" {
		return ChrPos{}, fmt.Errorf("ParseChrPos: SNP position %q must be in the format '<chr>:<position>'", s)
	}
	pos, e := strconv.Atoi(p)
	if e != nil {
		return ChrPos{}, fmt.Errorf("ParseChrPos: %w", e)
	}
	return ChrPos{Chr: c, Pos: pos}, nil
}

func (c ChrPos) String() string {
	return fmt.Sprintf("%v:%v", c.Chr, c.Pos)
}

// Tabix region of the single base, chr<c>:<p>-<p>.
func (c ChrPos) Region() string {
	return fmt.Sprintf("chr%v:%v-%v", c.Chr, c.Pos, c.Pos)
}

// A ReMap peak. Name is <study>.<tf>.<biotype>.
type RemapPeak struct {
	fastats.ChrSpan
	Name string
	ThickStart int64
	ThickEnd int64
}

type RemapStudy struct {
	StudyAccession string
	TF string
	Biotype string
	Distance int64
}

var RemapStudyColumns = []string{"study_accession", "transcription_factor", "biotype", "distance_to_peak"}

func (s RemapStudy) Row() []string {
	return []string{s.StudyAccession, s.TF, s.Biotype, strconv.FormatInt(s.Distance, 10)}
}

// The file must exist, be bgzipped and have a .tbi index next to it.
func CheckRemapFile(path string) error {
	h := handle("CheckRemapFile: %w")

	if fi, e := os.Stat(path); e != nil || fi.IsDir() {
		return h(fmt.Errorf("ReMap file %v does not exist", path))
	}
	if !strings.HasSuffix(path, ".gz") {
		return h(fmt.Errorf("ReMap file %v must be bgzipped", path))
	}

	f, e := os.Open(path)
	if e != nil { return h(e) }
	defer f.Close()
	ok, e := bgzf.HasEOF(f)
	if e != nil { return h(e) }
	if !ok {
		return h(fmt.Errorf("ReMap file %v has no bgzf EOF block", path))
	}

	if _, e := os.Stat(path + ".tbi"); e != nil {
		return h(fmt.Errorf("no tabix index file could be found for the ReMap file %v", path))
	}
	return nil
}

type remapFields struct {
	Name string
	ThickStart int64
	ThickEnd int64
}

// Columns after chrom, start and end: name, score, strand, thickStart,
// thickEnd, itemRgb.
func parseRemapFields(fields []string) (remapFields, error) {
	var f remapFields
	if len(fields) < 5 {
		return f, fmt.Errorf("len(fields) %v < 5 after chrom, start and end", len(fields))
	}
	var score, strand string
	_, e := csvh.Scan(fields, &f.Name, &score, &strand, &f.ThickStart, &f.ThickEnd)
	return f, e
}

// Parse the BED9 lines of a ReMap tabix slice.
func ParseRemapPeaks(r io.Reader) ([]RemapPeak, error) {
	bed, e := iter.Collect[fastats.BedEntry[remapFields]](fastats.ParseBed[remapFields](r, parseRemapFields))
	if e != nil {
		return nil, fmt.Errorf("ParseRemapPeaks: %w", e)
	}
	out := make([]RemapPeak, 0, len(bed))
	for _, b := range bed {
		out = append(out, RemapPeak{ChrSpan: b.ChrSpan, Name: b.Fields.Name, ThickStart: b.Fields.ThickStart, ThickEnd: b.Fields.ThickEnd})
	}
	return out, nil
}

func (p RemapPeak) ThickCenter() int64 {
	return (p.ThickStart + p.ThickEnd) / 2
}

// Studies of the peaks, nearest peak center to pos first.
func StudiesAt(peaks []RemapPeak, pos int) ([]RemapStudy, error) {
	out := make([]RemapStudy, 0, len(peaks))
	for _, p := range peaks {
		parts := strings.Split(p.Name, ".")
		if len(parts) < 3 {
			return nil, fmt.Errorf("StudiesAt: peak name %q not <study>.<tf>.<biotype>", p.Name)
		}
		dist := p.ThickCenter() - int64(pos)
		if dist < 0 {
			dist = -dist
		}
		out = append(out, RemapStudy{StudyAccession: parts[0], TF: parts[1], Biotype: parts[2], Distance: dist})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out, nil
}

func saveSlice(tmpdir string, cp ChrPos, lines []string) error {
	dir := filepath.Join(tmpdir, "tabix_slices")
	if e := os.MkdirAll(dir, 0755); e != nil {
		return e
	}
	path := filepath.Join(dir, fmt.Sprintf("%v.%v.bed", RemapSliceName, cp.Region()))
	return os.WriteFile(path, []byte(strings.Join(lines, "\n") + "\n"), 0644)
}

// ReMap studies with a peak over one SNP. tmpdir, when set, receives the raw
// tabix slice.
func RemapLookup(ctx context.Context, tabix extern.Querier, remap string, cp ChrPos, tmpdir string) ([]RemapStudy, error) {
	h := handle("RemapLookup: %v: %w")

	log.Printf("Requested position: <%v>", cp.Region())
	lines, e := tabix.Query(ctx, remap, cp.Region())
	if e != nil { return nil, h(cp, e) }
	if len(lines) == 0 {
		return nil, h(cp, ErrNoRemapEntries)
	}

	if tmpdir != "" {
		if e := saveSlice(tmpdir, cp, lines); e != nil { return nil, h(cp, e) }
	}

	peaks, e := ParseRemapPeaks(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	if e != nil { return nil, h(cp, e) }

	studies, e := StudiesAt(peaks, cp.Pos)
	if e != nil { return nil, h(cp, e) }
	return studies, nil
}

func StudyTable(studies []RemapStudy) *tsv.Table {
	t := tsv.NewTable(RemapStudyColumns...)
	for _, s := range studies {
		t.Append(s.Row()...)
	}
	return t
}

func WriteStudies(w io.Writer, studies []RemapStudy, sep rune) error {
	return StudyTable(studies).Write(w, sep)
}

type RemapArgs struct {
	ChrPos string
	Remap string
	Tmpdir string
	Output string
}

// Look up one SNP and write its studies as CSV. Returns the path written.
func RemapLookupCsv(ctx context.Context, tabix extern.Querier, args RemapArgs) (string, error) {
	h := handle("RemapLookupCsv: %w")

	cp, e := ParseChrPos(args.ChrPos)
	if e != nil { return "", h(e) }
	if e := CheckRemapFile(args.Remap); e != nil { return "", h(e) }

	out := args.Output
	if !strings.HasSuffix(out, ".csv") {
		log.Printf("WARNING: Output file must be a CSV file. Adding extension '.csv' to output file name.")
		out += ".csv"
	}

	tmpdir := args.Tmpdir
	if tmpdir == "" {
		if tmpdir, e = os.Getwd(); e != nil { return "", h(e) }
	}

	studies, e := RemapLookup(ctx, tabix, args.Remap, cp, tmpdir)
	if e != nil { return "", h(e) }

	if e := tsv.WriteTablePath(out, StudyTable(studies), ','); e != nil { return "", h(e) }
	return out, nil
}
