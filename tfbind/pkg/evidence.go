package tfbind

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

var DoubleEvidenceColumns = []string{"ID", "OA", "EA", "TFs", "prediction", "score"}

// Read PERFECTOS-APE output. Leading "#" lines are comments; the last of them
// is the header.
func ReadPerfectos(r io.Reader) (*tsv.Table, error) {
	h := handle("ReadPerfectos: %w")

	var header []string
	var t *tsv.Table
	s := bufio.NewScanner(r)
	s.Buffer([]byte{}, 1e9)
	for s.Scan() {
		line := s.Text()
		if t == nil && strings.HasPrefix(line, "#") {
			header = strings.Split(strings.TrimLeft(line, "# "), "\t")
			continue
		}
		if t == nil {
			if header == nil {
				header = strings.Split(line, "\t")
				t = tsv.NewTable(header...)
				continue
			}
			t = tsv.NewTable(header...)
		}
		if line == "" {
			continue
		}
		t.Append(strings.Split(line, "\t")...)
	}
	if e := s.Err(); e != nil { return nil, h(e) }
	if t == nil {
		if header == nil {
			return nil, h(tsv.ErrEmpty)
		}
		t = tsv.NewTable(header...)
	}
	return t, nil
}

func uniqueSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func RemapTFs(t *tsv.Table) (map[string]struct{}, error) {
	if e := t.Has("transcription_factor"); e != nil {
		return nil, fmt.Errorf("RemapTFs: %w", e)
	}
	out := map[string]struct{}{}
	for i := range t.Rows {
		out[t.Get(i, "transcription_factor")] = struct{}{}
	}
	return out, nil
}

// TF names of PERFECTOS-APE motifs, e.g. CTCF_HUMAN.H11MO.0.A -> CTCF.
func PerfectosTFs(t *tsv.Table) (map[string]struct{}, error) {
	if e := t.Has("motif"); e != nil {
		return nil, fmt.Errorf("PerfectosTFs: %w", e)
	}
	out := map[string]struct{}{}
	for i := range t.Rows {
		tf, _, _ := strings.Cut(t.Get(i, "motif"), "_")
		out[tf] = struct{}{}
	}
	return out, nil
}

func IntersectTFs(remap, perfectos map[string]struct{}) []string {
	both := map[string]struct{}{}
	for tf := range remap {
		if _, ok := perfectos[tf]; ok {
			both[tf] = struct{}{}
		}
	}
	return uniqueSorted(both)
}

func existingFile(kind, path string) error {
	if fi, e := os.Stat(path); e != nil || fi.IsDir() {
		return fmt.Errorf("%v file %v does not exist", kind, path)
	}
	return nil
}

// TFs seen both in the ReMap lookup (CSV) and in the PERFECTOS-APE output.
func FindDoubleEvidenceTfs(remapCsv, perfectosTsv string) ([]string, error) {
	h := handle("FindDoubleEvidenceTfs: %w")

	if e := existingFile("ReMap", remapCsv); e != nil { return nil, h(e) }
	if e := existingFile("perfectos-ape", perfectosTsv); e != nil { return nil, h(e) }

	rt, e := tsv.ReadTablePath(remapCsv, ',')
	if e != nil { return nil, h(e) }
	remap, e := RemapTFs(rt)
	if e != nil { return nil, h(e) }
	log.Printf("ReMap TFs: %v", uniqueSorted(remap))

	r, e := csvh.OpenMaybeGz(perfectosTsv)
	if e != nil { return nil, h(e) }
	defer r.Close()
	pt, e := ReadPerfectos(r)
	if e != nil { return nil, h(e) }
	perfectos, e := PerfectosTFs(pt)
	if e != nil { return nil, h(e) }
	log.Printf("Perfectos TFs: %v", uniqueSorted(perfectos))

	return IntersectTFs(remap, perfectos), nil
}

var allelesRe = regexp.MustCompile(`([ATCG]+>[ATCG])`)

type evidenceRow struct {
	id string
	variant string
	tf string
	prediction string
	score float64
}

func idChromPos(id string) (chrom, pos int, err error) {
	c, p, ok := strings.Cut(id, ":")
	if !ok {
		return 0, 0, fmt.Errorf("ID %q not in <chr>:<pos> format", id)
	}
	chrom, err = strconv.Atoi(strings.TrimLeft(c, "chr"))
	if err != nil {
		return 0, 0, err
	}
	digits := p[:len(p)-len(strings.TrimLeft(p, "0123456789"))]
	pos, err = strconv.Atoi(digits)
	return chrom, pos, err
}

// Explode the comma-separated TFs column of the double evidence table into
// (ID, TF) pairs.
func ExplodeTFs(de *tsv.Table) (map[[2]string]struct{}, error) {
	if e := de.Has("ID", "TFs"); e != nil {
		return nil, fmt.Errorf("ExplodeTFs: %w", e)
	}
	out := map[[2]string]struct{}{}
	for i := range de.Rows {
		for _, tf := range strings.Split(de.Get(i, "TFs"), ",") {
			if tf = strings.TrimSpace(tf); tf != "" {
				out[[2]string{de.Get(i, "ID"), tf}] = struct{}{}
			}
		}
	}
	return out, nil
}

// Attach the FABIAN gain/loss prediction to every TF of the double evidence
// table.
func FleshOutDoubleEvidence(de, fabian *tsv.Table, m *VariantMap) (*tsv.Table, error) {
	h := handle("FleshOutDoubleEvidence: %w")

	pairs, e := ExplodeTFs(de)
	if e != nil { return nil, h(e) }
	if e := fabian.Has("variant", "tf", "prediction", "score"); e != nil { return nil, h(e) }
	vcol, tcol, pcol, scol := fabian.Col("variant"), fabian.Col("tf"), fabian.Col("prediction"), fabian.Col("score")
	idcol := m.Col("ID")

	best := map[[3]string]evidenceRow{}
	var order [][3]string
	for _, row := range fabian.Rows {
		variant := StripVariantSuffix(tsv.Field(row, vcol))
		tf := tsv.Field(row, tcol)
		for _, mrow := range m.Lookup(variant) {
			id := tsv.Field(mrow, idcol)
			if _, ok := pairs[[2]string{id, tf}]; !ok {
				continue
			}
			score, ok, e := ParseScore(tsv.Field(row, scol))
			if e != nil { return nil, h(e) }
			if !ok {
				continue
			}
			key := [3]string{id, variant, tf}
			prev, seen := best[key]
			if !seen {
				order = append(order, key)
			}
			if !seen || math.Abs(score) > math.Abs(prev.score) {
				best[key] = evidenceRow{id: id, variant: variant, tf: tf, prediction: tsv.Field(row, pcol), score: score}
			}
		}
	}

	type keyed struct {
		chrom int
		pos int
		r evidenceRow
	}
	rows := make([]keyed, 0, len(order))
	for _, k := range order {
		r := best[k]
		chrom, pos, e := idChromPos(r.id)
		if e != nil { return nil, h(e) }
		rows = append(rows, keyed{chrom, pos, r})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].chrom != rows[j].chrom {
			return rows[i].chrom < rows[j].chrom
		}
		if rows[i].pos != rows[j].pos {
			return rows[i].pos < rows[j].pos
		}
		return rows[i].r.score > rows[j].r.score
	})

	out := tsv.NewTable(DoubleEvidenceColumns...)
	for _, k := range rows {
		oa, ea, _ := strings.Cut(allelesRe.FindString(k.r.variant), ">")
		out.Append(k.r.id, oa, ea, k.r.tf, k.r.prediction, FormatScore(k.r.score))
	}
	return out, nil
}

type FleshOutArgs struct {
	DoubleEvidence string
	Fabian string
	Map string
	Output string
}

func RunFleshOutDoubleEvidence(args FleshOutArgs) error {
	h := handle("RunFleshOutDoubleEvidence: %w")

	de, e := tsv.ReadTablePath(args.DoubleEvidence, '\t', "ID", "TFs")
	if e != nil { return h(e) }
	fabian, e := tsv.ReadTablePath(args.Fabian, '\t', "variant", "tf", "prediction", "score")
	if e != nil { return h(e) }
	m, e := ReadVariantMapPath(args.Map)
	if e != nil { return h(e) }

	out, e := FleshOutDoubleEvidence(de, fabian, m)
	if e != nil { return h(e) }
	if e := tsv.WriteTablePath(args.Output, out, '\t'); e != nil { return h(e) }
	return nil
}
