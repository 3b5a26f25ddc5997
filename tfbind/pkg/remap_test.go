package tfbind

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
)

type fakeTabix map[string][]string

func (f fakeTabix) Query(ctx context.Context, file, region string) ([]string, error) {
	return f[region], nil
}

var remapLines = fakeTabix{
	"chr1:100-100": {
		"chr1\t90\t200\tGSE1.CTCF.K562\t0\t.\t100\t120\t0,0,0",
		"chr1\t50\t150\tGSE2.FOXA1.HepG2\t0\t.\t98\t104\t0,0,0",
	},
}

func writeFile(path, contents string) {
	if e := os.WriteFile(path, []byte(contents), 0644); e != nil {
		panic(e)
	}
}

func writeBgzf(path string) {
	f, e := os.Create(path)
	if e != nil { panic(e) }
	w := bgzf.NewWriter(f, 1)
	if _, e := w.Write([]byte("chr1\t1\t2\tx.y.z\n")); e != nil { panic(e) }
	if e := w.Close(); e != nil { panic(e) }
	if e := f.Close(); e != nil { panic(e) }
}

func TestParseChrPos(t *testing.T) {
	cp, e := ParseChrPos("1:12345")
	if e != nil { panic(e) }
	if cp.Region() != "chr1:12345-12345" {
		t.Errorf("region %v", cp.Region())
	}
	for _, bad := range []string{"1-12345", "1:12a45", "1:"} {
		if _, e := ParseChrPos(bad); e == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestRemapLookup(t *testing.T) {
	tmp := t.TempDir()
	studies, e := RemapLookup(context.Background(), remapLines, "remap.bed.gz", ChrPos{"1", 100}, tmp)
	if e != nil { panic(e) }

	var b strings.Builder
	if e := WriteStudies(&b, studies, ','); e != nil { panic(e) }
	expect := `study_accession,transcription_factor,biotype,distance_to_peak
GSE2,FOXA1,HepG2,1
GSE1,CTCF,K562,10
`
	if b.String() != expect {
		t.Errorf("out %q != expect %q", b.String(), expect)
	}

	slice := filepath.Join(tmp, "tabix_slices", "remap2022_all_macs2_hg38_v1_0.chr1:100-100.bed")
	if _, e := os.Stat(slice); e != nil {
		t.Errorf("slice not saved: %v", e)
	}

	_, e = RemapLookup(context.Background(), remapLines, "remap.bed.gz", ChrPos{"2", 5}, "")
	if !errors.Is(e, ErrNoRemapEntries) {
		t.Errorf("expected ErrNoRemapEntries, got %v", e)
	}
}

func TestCheckRemapFile(t *testing.T) {
	dir := t.TempDir()
	remap := filepath.Join(dir, "remap.bed.gz")
	writeBgzf(remap)
	if e := CheckRemapFile(remap); e == nil {
		t.Errorf("expected error for missing index")
	}
	writeFile(remap + ".tbi", "")
	if e := CheckRemapFile(remap); e != nil {
		t.Errorf("unexpected error %v", e)
	}

	plain := filepath.Join(dir, "plain.gz")
	writeFile(plain, "not bgzf at all, just some text that is long enough\n")
	writeFile(plain + ".tbi", "")
	if e := CheckRemapFile(plain); e == nil {
		t.Errorf("expected error for non-bgzf file")
	}
}

const snplistIn = `ID	Chrom	Pos	OA	EA
chr1:100	chr1	100	A	G
chr2:5	chr2	5	C	T
chr1:100b	chr1	100	A	C
`

func TestRemapLookupSnplist(t *testing.T) {
	dir := t.TempDir()
	remap := filepath.Join(dir, "remap.bed.gz")
	writeBgzf(remap)
	writeFile(remap + ".tbi", "")
	snplist := filepath.Join(dir, "snplist.txt")
	writeFile(snplist, snplistIn)
	outdir := filepath.Join(dir, "out")

	job := SnplistJob{Snplist: snplist, Remap: remap, Outdir: outdir}
	if e := RemapLookupSnplist(context.Background(), remapLines, job, 2); !errors.Is(e, ErrNoRemapEntries) {
		t.Errorf("expected ErrNoRemapEntries, got %v", e)
	}

	jobs, e := ReadJobs(strings.NewReader(`{"Snplist": "` + snplist + `", "Remap": "` + remap + `", "Outdir": "` + outdir + `", "SkipMissing": true}`))
	if e != nil { panic(e) }
	if e := RemapLookupMulti(context.Background(), remapLines, 2, jobs...); e != nil { panic(e) }

	got, e := os.ReadFile(filepath.Join(outdir, "remap_studies_1:100.txt"))
	if e != nil { panic(e) }
	expect := "study_accession\ttranscription_factor\tbiotype\tdistance_to_peak\n" +
		"GSE2\tFOXA1\tHepG2\t1\n" +
		"GSE1\tCTCF\tK562\t10\n"
	if string(got) != expect {
		t.Errorf("out %q != expect %q", got, expect)
	}
	if _, e := os.Stat(filepath.Join(outdir, "remap_studies_2:5.txt")); e == nil {
		t.Errorf("missing SNP should not produce a file")
	}

	final := filepath.Join(dir, "final.txt")
	if e := ProduceFinalRemapOutput(outdir, final); e != nil { panic(e) }
	got, e = os.ReadFile(final)
	if e != nil { panic(e) }
	expect = "chr\tpos\tstudy_accession\ttranscription_factor\tbiotype\tdistance_to_peak\n" +
		"1\t100\tGSE2\tFOXA1\tHepG2\t1\n" +
		"1\t100\tGSE1\tCTCF\tK562\t10\n"
	if string(got) != expect {
		t.Errorf("out %q != expect %q", got, expect)
	}

	filtered := filepath.Join(dir, "filtered.txt")
	if e := FilterRemapByBiotype(final, []string{"K562"}, filtered); e != nil { panic(e) }
	got, e = os.ReadFile(filtered)
	if e != nil { panic(e) }
	expect = "chr\tpos\tstudy_accession\ttranscription_factor\tbiotype\tdistance_to_peak\n" +
		"1\t100\tGSE1\tCTCF\tK562\t10\n"
	if string(got) != expect {
		t.Errorf("out %q != expect %q", got, expect)
	}

	copied := filepath.Join(dir, "copied.txt")
	if e := FilterRemapByBiotype(final, nil, copied); e != nil { panic(e) }
	a, _ := os.ReadFile(final)
	b, _ := os.ReadFile(copied)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("empty biotype list should copy the file")
	}
}

func TestReadSnplistHeader(t *testing.T) {
	if _, e := ReadSnplist(strings.NewReader("ID\tChrom\tPos\tEA\tOA\n")); e == nil {
		t.Errorf("expected error for reordered header")
	}
}

func TestProduceFinalRemapOutputEmpty(t *testing.T) {
	if e := ProduceFinalRemapOutput(t.TempDir(), filepath.Join(t.TempDir(), "out.txt")); e == nil {
		t.Errorf("expected error for empty directory")
	}
}

func TestParseRemapPeaks(t *testing.T) {
	peaks, e := ParseRemapPeaks(strings.NewReader(strings.Join(remapLines["chr1:100-100"], "\n") + "\n"))
	if e != nil { panic(e) }
	if len(peaks) != 2 {
		t.Fatalf("len(peaks) %v != 2", len(peaks))
	}
	p := peaks[0]
	if p.Chr != "chr1" || p.Start != 90 || p.End != 200 || p.Name != "GSE1.CTCF.K562" || p.ThickCenter() != 110 {
		t.Errorf("peak %+v", p)
	}
	if _, e := ParseRemapPeaks(strings.NewReader("chr1\t1\t2\tx.y.z\n")); e == nil {
		t.Errorf("expected error for BED4 line")
	}
}

func TestRemapLookupCsv(t *testing.T) {
	dir := t.TempDir()
	remap := filepath.Join(dir, "remap.bed.gz")
	writeBgzf(remap)
	writeFile(remap + ".tbi", "")

	wd, e := os.Getwd()
	if e != nil { panic(e) }
	if e := os.Chdir(dir); e != nil { panic(e) }
	defer os.Chdir(wd)

	out, e := RemapLookupCsv(context.Background(), remapLines, RemapArgs{
		ChrPos: "1:100",
		Remap: remap,
		Output: filepath.Join(dir, "studies"),
	})
	if e != nil { panic(e) }
	if out != filepath.Join(dir, "studies.csv") {
		t.Errorf("out path %v != studies.csv", out)
	}
	got, e := os.ReadFile(out)
	if e != nil { panic(e) }
	expect := "study_accession,transcription_factor,biotype,distance_to_peak\n" +
		"GSE2,FOXA1,HepG2,1\n" +
		"GSE1,CTCF,K562,10\n"
	if string(got) != expect {
		t.Errorf("out %q != expect %q", got, expect)
	}

	slice := filepath.Join(dir, "tabix_slices", "remap2022_all_macs2_hg38_v1_0.chr1:100-100.bed")
	if _, e := os.Stat(slice); e != nil {
		t.Errorf("slice not saved in working directory: %v", e)
	}

	if _, e := RemapLookupCsv(context.Background(), remapLines, RemapArgs{ChrPos: "1-100", Remap: remap, Output: "x.csv"}); e == nil {
		t.Errorf("expected error for bad position")
	}
}
