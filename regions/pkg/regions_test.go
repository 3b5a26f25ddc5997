package regions

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const cd4Hits = `ID	pval	chromosome	position	EA	phenotype
v1	1e-09	1	5000000	A	CD4
v2	1e-08	1	5500000	G	CD4
v3	1e-07	2	100	T	CD4
`

const cd8Hits = `ID	pval	chromosome	position	EA	phenotype
v4	1e-10	chr1	8000000	C	CD8
`

func writeFile(path, contents string) {
	if e := os.WriteFile(path, []byte(contents), 0644); e != nil {
		panic(e)
	}
}

func hitDir(t *testing.T) string {
	dir := filepath.Join(t.TempDir(), "hits")
	if e := os.Mkdir(dir, 0755); e != nil { panic(e) }
	writeFile(filepath.Join(dir, "CD4.txt"), cd4Hits)
	writeFile(filepath.Join(dir, "CD8.txt"), cd8Hits)
	return dir
}

func TestNewWindow(t *testing.T) {
	w := NewWindow(1, 500, "0.1", "CD4")
	if w.Start != 2 || w.End != 1000500 {
		t.Errorf("window %v", w)
	}
	w.Num = 3
	if w.Key() != "3:1:500&0.1&CD4" {
		t.Errorf("key %v", w.Key())
	}
}

func TestSweepMerger(t *testing.T) {
	ws := []Window{
		{Num: 0, Chrom: 1, Start: 10, End: 20, LeadPos: 15, Pval: "0.1", Phenotype: "B"},
		{Num: 1, Chrom: 1, Start: 20, End: 30, LeadPos: 25, Pval: "0.2", Phenotype: "A"},
		{Num: 2, Chrom: 1, Start: 31, End: 40, LeadPos: 35, Pval: "0.3", Phenotype: "A"},
		{Num: 3, Chrom: 2, Start: 10, End: 20, LeadPos: 15, Pval: "0.4", Phenotype: "A"},
	}
	m, e := SweepMerger{}.Merge(context.Background(), ws)
	if e != nil { panic(e) }
	if len(m) != 3 {
		t.Fatalf("len(m) %v != 3", len(m))
	}
	if m[0].Chr != "1" || m[0].Start != 10 || m[0].End != 30 {
		t.Errorf("first region %v", m[0].ChrSpan)
	}
	if !reflect.DeepEqual(m[0].Phenotypes, []string{"A", "B"}) {
		t.Errorf("phenotypes %v", m[0].Phenotypes)
	}
	if !reflect.DeepEqual(m[0].IDs, []string{"0", "1"}) {
		t.Errorf("ids %v", m[0].IDs)
	}
	if m[2].Chr != "2" {
		t.Errorf("last region %v", m[2].ChrSpan)
	}
}

const mergedIn = `chrom	chromStart	chromEnd	leadSnp_pos	leadSnp_pval	phenotypes	ID	id_pos_pval_pheno
1	100	200	5,3	1e-5,1e-6	B,A	1,0	1:1:5&1e-5&B,0:1:3&1e-6&A
`

func TestParseMerged(t *testing.T) {
	m, e := ParseMerged(strings.NewReader(mergedIn))
	if e != nil { panic(e) }
	if len(m) != 1 {
		t.Fatalf("len(m) %v != 1", len(m))
	}
	if !reflect.DeepEqual(m[0].Phenotypes, []string{"A", "B"}) || m[0].End != 200 {
		t.Errorf("merged %v", m[0])
	}

	r, e := Summarize(m[0])
	if e != nil { panic(e) }
	expect := []string{"1", "100", "200", "3", "1e-6", "2", "2", "A,B"}
	if !reflect.DeepEqual(r.Row(), expect) {
		t.Errorf("out %v != expect %v", r.Row(), expect)
	}
}

func TestSummarizeMismatch(t *testing.T) {
	m := Merged{IDs: []string{"0", "1"}, Keys: []string{"0:1:5&0.1&A"}}
	if _, e := Summarize(m); e == nil {
		t.Errorf("expected error for id/key mismatch")
	}
}

func TestHitRegions(t *testing.T) {
	dir := hitDir(t)
	outdir := filepath.Join(filepath.Dir(dir), "out")

	path, e := HitRegions(context.Background(), dir, outdir, SweepMerger{})
	if e != nil { panic(e) }

	got, e := os.ReadFile(path)
	if e != nil { panic(e) }
	expect := strings.Join(RegionColumns, "\t") + "\n" +
		"1\t4000000\t6500000\t5000000\t1e-09\t2\t1\tCD4\n" +
		"1\t7000000\t9000000\t8000000\t1e-10\t1\t1\tCD8\n" +
		"2\t2\t1000100\t100\t1e-07\t1\t1\tCD4\n"
	if string(got) != expect {
		t.Errorf("out %q != expect %q", got, expect)
	}

	paths, e := RegionBeds(path, dir, filepath.Join(outdir, "beds"))
	if e != nil { panic(e) }
	if len(paths) != 3 {
		t.Fatalf("len(paths) %v != 3", len(paths))
	}
	if filepath.Base(paths[0]) != "region_1_chr1:4000000-6500000.bed" {
		t.Errorf("bad name %v", paths[0])
	}
	bed, e := os.ReadFile(paths[0])
	if e != nil { panic(e) }
	bedExpect := strings.Join(RegionBedColumns, "\t") + "\n" +
		"1\t5000000\tA\t1e-09\tCD4\n" +
		"1\t5500000\tG\t1e-08\tCD4\n"
	if string(bed) != bedExpect {
		t.Errorf("out %q != expect %q", bed, bedExpect)
	}

	if _, e := RegionBeds(filepath.Join(outdir, "nope.bed"), dir, outdir); e == nil {
		t.Errorf("expected error for missing regions file")
	}
}
