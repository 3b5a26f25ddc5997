package gwasprep

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		" a<b>c:d.":       "abcd",
		"..IL-6 (pg/ml)?": "IL-6(pgml)",
		"plain":           "plain",
	}
	for in, expect := range cases {
		if out := SanitizeFilename(in); out != expect {
			t.Errorf("out %q != expect %q", out, expect)
		}
	}
}

func TestSortBgens(t *testing.T) {
	paths := []string{"/d/x_chr10.bgen", "/d/other.bgen", "/d/x_chr2.bgen", "/d/x_chr1.bgen"}
	SortBgens(paths)
	expect := []string{"/d/x_chr1.bgen", "/d/x_chr2.bgen", "/d/x_chr10.bgen", "/d/other.bgen"}
	if !reflect.DeepEqual(paths, expect) {
		t.Errorf("out %v != expect %v", paths, expect)
	}
}

func writeFile(path, contents string) {
	if e := os.WriteFile(path, []byte(contents), 0644); e != nil {
		panic(e)
	}
}

func TestFindBgens(t *testing.T) {
	dir := t.TempDir()
	if _, e := FindBgens(dir); e == nil {
		t.Errorf("expected error for empty directory")
	}
	writeFile(filepath.Join(dir, "g_chr2.bgen"), "")
	writeFile(filepath.Join(dir, "g_chr1.bgen"), "")
	writeFile(filepath.Join(dir, "notes.txt"), "")
	if e := os.Mkdir(filepath.Join(dir, "g_chr1.bgen.idx2"), 0755); e != nil { panic(e) }

	bgens, e := FindBgens(dir)
	if e != nil { panic(e) }
	expect := []string{filepath.Join(dir, "g_chr1.bgen"), filepath.Join(dir, "g_chr2.bgen")}
	if !reflect.DeepEqual(bgens, expect) {
		t.Errorf("out %v != expect %v", bgens, expect)
	}
	if missing := MissingIndexes(bgens); !reflect.DeepEqual(missing, expect[1:]) {
		t.Errorf("missing %v", missing)
	}
}

func TestCheckCovariates(t *testing.T) {
	if _, e := CheckCovariates(strings.NewReader("Sample_ID\tsex\tage\n"), Sex); e == nil {
		t.Errorf("expected error for 3 sex columns")
	}
	if _, e := CheckCovariates(strings.NewReader("Sample_ID\tPC1\tPC2\n"), Ancestry); e != nil {
		t.Errorf("unexpected error %v", e)
	}
	if _, e := CheckCovariates(strings.NewReader("ID\tsex\n"), Sex); e == nil {
		t.Errorf("expected error for missing Sample_ID")
	}
}

func TestReadPhenoFile(t *testing.T) {
	if _, _, e := ReadPhenoFile(strings.NewReader("Sample_ID\n")); e == nil {
		t.Errorf("expected error for no phenotypes")
	}
	_, phenos, e := ReadPhenoFile(strings.NewReader("CRP\tSample_ID\tIL 6\ns1\t1\t2\n"))
	if e != nil { panic(e) }
	if !reflect.DeepEqual(phenos, []string{"CRP", "IL 6"}) {
		t.Errorf("phenos %v", phenos)
	}
}

func TestMakePlan(t *testing.T) {
	dir := t.TempDir()
	bgens := filepath.Join(dir, "bgens")
	if e := os.Mkdir(bgens, 0755); e != nil { panic(e) }
	writeFile(filepath.Join(bgens, "g_chr1.bgen"), "")

	args := Args{
		SampleFile: filepath.Join(dir, "s.sample"),
		BgensDir: bgens,
		PhenoFile: filepath.Join(dir, "pheno.tsv"),
		SexCov: filepath.Join(dir, "sex.tsv"),
		OutputDir: "out",
	}
	writeFile(args.SampleFile, "ID_1 ID_2 missing sex\n0 0 0 D\ns1 s1 0 1\ns2 s2 0 2\n")
	writeFile(args.PhenoFile, "Sample_ID\tIL 6\ns2\t0.1\ns3\t0.4\n")
	writeFile(args.SexCov, "Sample_ID\tsex\ns2\t1\n")

	p, e := MakePlan(args)
	if e != nil { panic(e) }
	if p.SharedSamples != 1 {
		t.Errorf("shared %v != 1", p.SharedSamples)
	}
	if p.Outputs["IL 6"] != filepath.Join("out", "GWAS_IL6.tsv") {
		t.Errorf("outputs %v", p.Outputs)
	}
	if len(p.MissingIndexes) != 1 {
		t.Errorf("missing %v", p.MissingIndexes)
	}

	var b strings.Builder
	if e := p.WriteJson(&b); e != nil { panic(e) }
	if !strings.Contains(b.String(), `"SharedSamples": 1`) {
		t.Errorf("json %v", b.String())
	}

	writeFile(args.PhenoFile, "Sample_ID\tIL 6\ns9\t0.1\n")
	if _, e := MakePlan(args); e == nil {
		t.Errorf("expected error for no shared samples")
	}
}
