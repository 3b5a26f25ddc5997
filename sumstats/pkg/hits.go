package sumstats

import (
	"io"
	"sort"
	"strconv"

	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

var HitColumns = []string{"ID", "beta", "chi2", "pval", "Marker", "chromosome", "position", "OA", "EA", "EAF", "Info", "phenotype"}

// A summary statistics row joined with its variant info.
type Hit struct {
	ID string
	Beta string
	Chi2 string
	Pval float64
	Marker string
	Chromosome int
	Position int
	OA string
	EA string
	EAF string
	Info string
	Phenotype string
}

func (h Hit) Row() []string {
	return []string{
		h.ID, h.Beta, h.Chi2, FormatFloat(h.Pval), h.Marker,
		strconv.Itoa(h.Chromosome), strconv.Itoa(h.Position),
		h.OA, h.EA, h.EAF, h.Info, h.Phenotype,
	}
}

func NewHit(res ResEntry, info VarInfo, phenotype string) (Hit, error) {
	h := handle("NewHit: %v: %w")

	marker, chrom, pos, e := ParseMarker(info.Marker)
	if e != nil { return Hit{}, h(res.ID, e) }

	return Hit{
		ID: res.ID,
		Beta: res.Beta,
		Chi2: res.Chi2Str,
		Pval: PvalFromChi2(res.Chi2),
		Marker: marker,
		Chromosome: chrom,
		Position: pos,
		OA: info.OA,
		EA: info.EA,
		EAF: info.EAF,
		Info: info.Info,
		Phenotype: phenotype,
	}, nil
}

func SortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Chromosome != hits[j].Chromosome {
			return hits[i].Chromosome < hits[j].Chromosome
		}
		return hits[i].Position < hits[j].Position
	})
}

func WriteHits(w io.Writer, hits []Hit) error {
	h := handle("WriteHits: %w")
	cw := tsv.NewWriter(w, '\t')

	if e := cw.Write(HitColumns); e != nil { return h(e) }
	for _, hit := range hits {
		if e := cw.Write(hit.Row()); e != nil { return h(e) }
	}
	cw.Flush()
	if e := cw.Error(); e != nil { return h(e) }
	return nil
}

func WriteHitsPath(path string, hits []Hit) (err error) {
	h := handle("WriteHitsPath: %w")

	w, e := tsv.CreateMaybeGz(path)
	if e != nil { return h(e) }
	defer func() {
		if e := w.Close(); e != nil && err == nil {
			err = h(e)
		}
	}()

	return WriteHits(w, hits)
}

func ReadHitTablePath(path string) (*tsv.Table, error) {
	return tsv.ReadTablePath(path, '\t', HitColumns...)
}

// Compare two hit table rows by chromosome, then position.
func ChromPosLess(chromCol, posCol int) func(a, b []string) bool {
	return func(a, b []string) bool {
		if c := tsv.CompareCells(tsv.Field(a, chromCol), tsv.Field(b, chromCol)); c != 0 {
			return c < 0
		}
		return tsv.CompareCells(tsv.Field(a, posCol), tsv.Field(b, posCol)) < 0
	}
}
