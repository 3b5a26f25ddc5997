package tfbind

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

const (
	FabianDataName = "fabian_output_data.processed"
	FabianTableName = "fabian_output_table.processed"
	DefaultScoreThreshold = 0.2
)

var FabianDataColumns = []string{
	"variant", "tf", "model_id", "database", "wt_score", "mt_score",
	"start_wt", "end_wt", "start_mt", "end_mt", "strand_wt", "strand_mt",
	"prediction", "score",
}

var FabianDataOutColumns = []string{"ID", "Chrom", "Pos", "OA", "EA", FabianColumn, "tf", "prediction", "score"}
var FabianTableOutColumns = []string{"ID", "Chrom", "Pos", "OA", "EA", FabianColumn, "TF", "score"}

// Headerless FABIAN-Variant data output. Every line must have the 14 columns.
func ReadFabianData(r io.Reader) (*tsv.Table, error) {
	h := handle("ReadFabianData: line %v: %w")
	cr := tsv.NewReader(r, '\t')

	t := tsv.NewTable(FabianDataColumns...)
	i := 1
	for line, e := cr.Read(); e != io.EOF; line, e = cr.Read() {
		if e != nil { return nil, h(i, e) }
		if len(line) != len(FabianDataColumns) {
			return nil, h(i, fmt.Errorf("the input file should have %v columns, but has %v instead", len(FabianDataColumns), len(line)))
		}
		t.Append(append([]string{}, line...)...)
		i++
	}
	return t, nil
}

// FABIAN appends .1, .2 ... to repeated variants.
func StripVariantSuffix(v string) string {
	before, _, _ := strings.Cut(v, ".")
	return before
}

// Parse a FABIAN score, dropping the "*" significance mark. "" and "NA" are
// missing.
func ParseScore(s string) (score float64, ok bool, err error) {
	s = strings.ReplaceAll(s, "*", "")
	if s == "" || s == "NA" {
		return 0, false, nil
	}
	score, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("ParseScore: %w", err)
	}
	return score, true, nil
}

func FormatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Rows of the map file keyed by Chrom:PosOA>EA.
type VariantMap struct {
	*tsv.Table
	index map[string][]int
}

func NewVariantMap(t *tsv.Table) (*VariantMap, error) {
	if e := t.Has(append(append([]string{}, SnplistColumns...), FabianColumn)...); e != nil {
		return nil, fmt.Errorf("NewVariantMap: %w", e)
	}
	m := &VariantMap{Table: t, index: map[string][]int{}}
	vcol := t.Col(FabianColumn)
	for i, row := range t.Rows {
		v := tsv.Field(row, vcol)
		m.index[v] = append(m.index[v], i)
	}
	return m, nil
}

func ReadVariantMapPath(path string) (*VariantMap, error) {
	h := handle("ReadVariantMapPath: %w")
	if e := nonEmptyFile(path); e != nil { return nil, h(e) }
	t, e := tsv.ReadTablePath(path, '\t')
	if e != nil { return nil, h(e) }
	m, e := NewVariantMap(t)
	if e != nil { return nil, h(e) }
	return m, nil
}

// Map rows matching a variant, in map file order.
func (m *VariantMap) Lookup(variant string) [][]string {
	idx := m.index[variant]
	out := make([][]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.Rows[i])
	}
	return out
}

func (m *VariantMap) snpFields(row []string) []string {
	out := make([]string, 0, len(SnplistColumns))
	for _, c := range SnplistColumns {
		out = append(out, tsv.Field(row, m.Col(c)))
	}
	return out
}

// Join FABIAN data rows to the map and keep |score| >= threshold.
func ProcessFabianData(data *tsv.Table, m *VariantMap, threshold float64) (*tsv.Table, error) {
	h := handle("ProcessFabianData: %w")

	if e := data.Has("variant", "tf", "prediction", "score"); e != nil { return nil, h(e) }
	vcol, tcol, pcol, scol := data.Col("variant"), data.Col("tf"), data.Col("prediction"), data.Col("score")

	out := tsv.NewTable(FabianDataOutColumns...)
	for _, row := range data.Rows {
		score, ok, e := ParseScore(tsv.Field(row, scol))
		if e != nil { return nil, h(e) }
		if !ok || math.Abs(score) < threshold {
			continue
		}
		variant := StripVariantSuffix(tsv.Field(row, vcol))
		for _, mrow := range m.Lookup(variant) {
			orow := append(m.snpFields(mrow), variant, tsv.Field(row, tcol), tsv.Field(row, pcol), FormatScore(score))
			out.Append(orow...)
		}
	}
	return out, nil
}

type FabianScore struct {
	Variant string
	TF string
	Score float64
}

// Melt the TF by variant matrix of the FABIAN table output into one score per
// (variant, TF).
func MeltFabianTable(r io.Reader) ([]FabianScore, error) {
	h := handle("MeltFabianTable: %w")

	t, e := tsv.ReadTable(r, '\t')
	if e != nil { return nil, h(e) }
	if len(t.Header) < 1 {
		return nil, h(fmt.Errorf("no columns"))
	}

	var out []FabianScore
	for _, row := range t.Rows {
		tf := tsv.Field(row, 0)
		for j := 1; j < len(t.Header); j++ {
			score, ok, e := ParseScore(tsv.Field(row, j))
			if e != nil { return nil, h(e) }
			if !ok {
				continue
			}
			out = append(out, FabianScore{Variant: StripVariantSuffix(t.Header[j]), TF: tf, Score: score})
		}
	}
	return out, nil
}

// Join the melted FABIAN table to the map and sort by chromosome and
// position.
func ProcessFabianTable(r io.Reader, m *VariantMap, threshold float64) (*tsv.Table, error) {
	h := handle("ProcessFabianTable: %w")

	scores, e := MeltFabianTable(r)
	if e != nil { return nil, h(e) }

	type keyed struct {
		chrom int
		pos int
		row []string
	}
	var rows []keyed
	for _, s := range scores {
		if math.Abs(s.Score) < threshold {
			continue
		}
		for _, mrow := range m.Lookup(s.Variant) {
			snp := m.snpFields(mrow)
			chrom, e := strconv.Atoi(strings.Replace(snp[1], "chr", "", 1))
			if e != nil { return nil, h(e) }
			pos, e := strconv.Atoi(snp[2])
			if e != nil { return nil, h(e) }
			snp[1] = strconv.Itoa(chrom)
			rows = append(rows, keyed{chrom, pos, append(snp, s.Variant, s.TF, FormatScore(s.Score))})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].chrom != rows[j].chrom {
			return rows[i].chrom < rows[j].chrom
		}
		return rows[i].pos < rows[j].pos
	})

	out := tsv.NewTable(FabianTableOutColumns...)
	for _, k := range rows {
		out.Append(k.row...)
	}
	return out, nil
}

type FabianArgs struct {
	Data string
	Table string
	Map string
	Threshold float64
	Outdir string
}

// Process whichever FABIAN outputs are given. Returns the paths written.
func ProcessFabianOutputs(args FabianArgs) ([]string, error) {
	h := handle("ProcessFabianOutputs: %w")

	m, e := ReadVariantMapPath(args.Map)
	if e != nil { return nil, h(e) }
	if e := os.MkdirAll(args.Outdir, 0755); e != nil { return nil, h(e) }

	var paths []string
	if args.Table != "" {
		if e := nonEmptyFile(args.Table); e != nil { return nil, h(e) }
		r, e := csvh.OpenMaybeGz(args.Table)
		if e != nil { return nil, h(e) }
		out, e := ProcessFabianTable(r, m, args.Threshold)
		r.Close()
		if e != nil { return nil, h(e) }

		path := filepath.Join(args.Outdir, FabianTableName)
		if e := tsv.WriteTablePath(path, out, '\t'); e != nil { return nil, h(e) }
		paths = append(paths, path)
	}

	if args.Data != "" {
		if e := nonEmptyFile(args.Data); e != nil { return nil, h(e) }
		r, e := csvh.OpenMaybeGz(args.Data)
		if e != nil { return nil, h(e) }
		data, e := ReadFabianData(r)
		r.Close()
		if e != nil { return nil, h(e) }
		out, e := ProcessFabianData(data, m, args.Threshold)
		if e != nil { return nil, h(e) }

		path := filepath.Join(args.Outdir, FabianDataName)
		if e := tsv.WriteTablePath(path, out, '\t'); e != nil { return nil, h(e) }
		paths = append(paths, path)
	}
	return paths, nil
}
