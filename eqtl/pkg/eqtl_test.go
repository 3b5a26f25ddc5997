package eqtl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const monoIn = `Gene_id	Gene_name	Variant_ID	Variant_CHR	Variant_position_start	Forward_nominal_P	Forward_slope
g1	GENEB	rs2	chr2	500	1e-5	0.3
g2	GENEA	rs1	chr10	100	1e-6	-0.2
g3	GENEC	rs9	chr1	100	1e-3	0.1
`

const nkIn = `Gene_id	Gene_name	Variant_ID	Variant_CHR	Variant_position_start	Forward_nominal_P	Forward_slope
g4	GENEA	rs2	chr2	500	1e-4	0.5
`

func TestCellTypeFromFilename(t *testing.T) {
	if c := CellTypeFromFilename("/x/CD16p_Mono_nominal_eQTL_hg38.txt"); c != "CD16p_Mono" {
		t.Errorf("cell type %v", c)
	}
	if c := CellTypeFromFilename("a_b_c.txt"); c != "" {
		t.Errorf("cell type %v", c)
	}
}

func TestReadRsids(t *testing.T) {
	ids, e := ReadRsids(strings.NewReader("rs1\n\nrs2\n"))
	if e != nil { panic(e) }
	if len(ids) != 2 {
		t.Errorf("ids %v", ids)
	}
}

func TestLookupFolder(t *testing.T) {
	dir := t.TempDir()
	if e := os.WriteFile(filepath.Join(dir, "Mono_nominal_eQTL_hg38.txt"), []byte(monoIn), 0644); e != nil { panic(e) }
	if e := os.WriteFile(filepath.Join(dir, "NK_nominal_eQTL_hg38.txt"), []byte(nkIn), 0644); e != nil { panic(e) }
	if e := os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip me"), 0644); e != nil { panic(e) }

	ids := map[string]struct{}{"rs1": {}, "rs2": {}}
	es, e := LookupFolder(context.Background(), dir, ids, 2)
	if e != nil { panic(e) }

	var b strings.Builder
	if e := WriteEntries(&b, es); e != nil { panic(e) }
	expect := strings.Join(OutColumns, "\t") + "\n" +
		"rs2\tchr2\t500\tGENEA\t1e-4\t0.5\tNK\n" +
		"rs2\tchr2\t500\tGENEB\t1e-5\t0.3\tMono\n" +
		"rs1\tchr10\t100\tGENEA\t1e-6\t-0.2\tMono\n"
	if b.String() != expect {
		t.Errorf("out %q != expect %q", b.String(), expect)
	}

	if _, e := LookupFolder(context.Background(), filepath.Join(dir, "README.md"), ids, 1); e == nil {
		t.Errorf("expected error for non-directory")
	}
}
