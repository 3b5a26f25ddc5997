package tfbind

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

const (
	FabianColumn = "Chrom:PosOA>EA"
	FabianChunk = 10000
	VcfHeader = "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA00001\n"
)

// chr1:1234A>G
func FabianVariant(chrom string, pos int, oa, ea string) string {
	return fmt.Sprintf("%v:%v%v>%v", chrom, pos, oa, ea)
}

func ParseFabianVariant(v string) (chrom string, pos int, oa, ea string, err error) {
	h := handle("ParseFabianVariant: %q: %w")

	chrom, rest, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return "", 0, "", "", h(v, fmt.Errorf("missing ':'"))
	}
	alleles := strings.TrimLeft(rest, "0123456789")
	pos, e := strconv.Atoi(rest[:len(rest)-len(alleles)])
	if e != nil { return "", 0, "", "", h(v, e) }
	oa, ea, ok = strings.Cut(alleles, ">")
	if !ok {
		return "", 0, "", "", h(v, fmt.Errorf("missing '>'"))
	}
	return chrom, pos, oa, ea, nil
}

// The snplist with a Chrom:PosOA>EA column added, used to map FABIAN results
// back to variant IDs.
func MapTable(t *tsv.Table) (*tsv.Table, error) {
	h := handle("MapTable: %w")

	snps, e := SnpsFromTable(t)
	if e != nil { return nil, h(e) }

	out := tsv.NewTable(append(append([]string{}, t.Header...), FabianColumn)...)
	for i, s := range snps {
		row := make([]string, len(t.Header), len(t.Header)+1)
		copy(row, t.Rows[i])
		out.Append(append(row, FabianVariant(s.Chrom, s.Pos, s.OA, s.EA))...)
	}
	return out, nil
}

func WriteMapFile(w io.Writer, t *tsv.Table) error {
	m, e := MapTable(t)
	if e != nil {
		return fmt.Errorf("WriteMapFile: %w", e)
	}
	return m.Write(w, '\t')
}

type VcfRow struct {
	Chrom int
	Pos int
	ID string
	Ref string
	Alt string
	Qual int
}

func (v VcfRow) String() string {
	return fmt.Sprintf("%v\t%v\t%v\t%v\t%v\t%v\t.\t.\tGT:DP\t0/1:154", v.Chrom, v.Pos, v.ID, v.Ref, v.Alt, v.Qual)
}

func SortVcfRows(rows []VcfRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Chrom != rows[j].Chrom {
			return rows[i].Chrom < rows[j].Chrom
		}
		return rows[i].Pos < rows[j].Pos
	})
}

func writeVcf(path string, rows []VcfRow) (err error) {
	w, e := os.Create(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()

	bw := bufio.NewWriter(w)
	defer func() { csvh.DeferE(&err, bw.Flush()) }()

	if _, e := io.WriteString(bw, VcfHeader); e != nil {
		return e
	}
	for _, r := range rows {
		if _, e := fmt.Fprintln(bw, r); e != nil {
			return e
		}
	}
	return nil
}

// Write FABIAN_INPUT_<i>.vcf files of at most chunk rows each.
func WriteFabianVcfs(outdir string, rows []VcfRow, chunk int) ([]string, error) {
	h := handle("WriteFabianVcfs: %w")

	if len(rows) > chunk {
		log.Printf("WARNING: FABIAN-Variant can only run %v variants at a time. You have %v variants. The output will be split into %v files.", chunk, len(rows), len(rows)/chunk+1)
	}

	var paths []string
	for i := 0; i == 0 || i*chunk < len(rows); i++ {
		end := (i + 1) * chunk
		if end > len(rows) {
			end = len(rows)
		}
		path := filepath.Join(outdir, fmt.Sprintf("FABIAN_INPUT_%v.vcf", i+1))
		if e := writeVcf(path, rows[i*chunk:end]); e != nil { return nil, h(e) }
		log.Printf("VCF file %v created at %v", filepath.Base(path), outdir)
		paths = append(paths, path)
	}
	return paths, nil
}

func nonEmptyFile(path string) error {
	fi, e := os.Stat(path)
	if e != nil || fi.IsDir() || fi.Size() == 0 {
		return fmt.Errorf("input file %v does not exist or is empty", path)
	}
	return nil
}

// Convert a snplist into FABIAN-Variant input VCFs plus the <basename>.map
// file.
func VariantListToFabianVcf(variantFile, outdir string) ([]string, error) {
	h := handle("VariantListToFabianVcf: %w")

	if e := nonEmptyFile(variantFile); e != nil { return nil, h(e) }
	t, e := tsv.ReadTablePath(variantFile, '\t', SnplistColumns...)
	if e != nil { return nil, h(e) }
	snps, e := SnpsFromTable(t)
	if e != nil { return nil, h(e) }

	m, e := MapTable(t)
	if e != nil { return nil, h(e) }
	if e := tsv.WriteTablePath(filepath.Join(outdir, filepath.Base(variantFile) + ".map"), m, '\t'); e != nil {
		return nil, h(e)
	}

	rows := make([]VcfRow, 0, len(snps))
	for _, s := range snps {
		c, e := strconv.Atoi(strings.Replace(s.Chrom, "chr", "", 1))
		if e != nil { return nil, h(e) }
		rows = append(rows, VcfRow{Chrom: c, Pos: s.Pos, ID: s.ID, Ref: s.OA, Alt: s.EA, Qual: 100})
	}
	SortVcfRows(rows)

	paths, e := WriteFabianVcfs(outdir, rows, FabianChunk)
	if e != nil { return nil, h(e) }
	return paths, nil
}

// Convert a list of chr:posOA>EA variants into FABIAN-Variant input VCFs.
func FabianListToVcf(r io.Reader, outdir string) ([]string, error) {
	h := handle("FabianListToVcf: %w")

	if fi, e := os.Stat(outdir); e != nil || !fi.IsDir() {
		return nil, h(fmt.Errorf("output directory %v does not exist", outdir))
	}

	var rows []VcfRow
	s := bufio.NewScanner(r)
	for s.Scan() {
		v := strings.TrimSpace(s.Text())
		if v == "" {
			continue
		}
		chrom, pos, oa, ea, e := ParseFabianVariant(v)
		if e != nil { return nil, h(e) }
		c, e := tsv.ParseChrom(chrom)
		if e != nil { return nil, h(e) }
		rows = append(rows, VcfRow{Chrom: c, Pos: pos, ID: v, Ref: oa, Alt: ea, Qual: 2000})
	}
	if e := s.Err(); e != nil { return nil, h(e) }

	paths, e := WriteFabianVcfs(outdir, rows, FabianChunk)
	if e != nil { return nil, h(e) }
	return paths, nil
}
