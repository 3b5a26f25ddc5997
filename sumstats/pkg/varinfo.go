package sumstats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/fasttsv"
	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

var VarInfoColumns = []string{"ID", "Marker", "OA", "EA", "EAF", "Info"}

type VarInfo struct {
	ID string
	Marker string
	OA string
	EA string
	EAF string
	Info string
}

func ReadVarInfo(r io.Reader) (map[string]VarInfo, error) {
	h := handle("ReadVarInfo: %w")

	s := fasttsv.NewScanner(r)
	if !s.Scan() {
		return nil, h(tsv.ErrEmpty)
	}
	header := tsv.NewTable(s.Line()...)
	if e := header.Has(VarInfoColumns...); e != nil {
		return nil, h(e)
	}
	idx := make([]int, len(VarInfoColumns))
	for i, col := range VarInfoColumns {
		idx[i] = header.Col(col)
	}

	out := map[string]VarInfo{}
	for s.Scan() {
		line := s.Line()
		get := func(i int) string {
			return strings.Clone(tsv.Field(line, idx[i]))
		}
		v := VarInfo{ID: get(0), Marker: get(1), OA: get(2), EA: get(3), EAF: get(4), Info: get(5)}
		out[v.ID] = v
	}
	return out, nil
}

func ReadVarInfoPath(path string) (map[string]VarInfo, error) {
	h := handle("ReadVarInfoPath: %w")

	r, e := csvh.OpenMaybeGz(path)
	if e != nil { return nil, h(e) }
	defer r.Close()

	info, e := ReadVarInfo(r)
	if e != nil { return nil, h(e) }
	return info, nil
}

// Parse a chr<c>:<pos> marker. chrX is renamed chr23 so that chromosomes
// sort numerically.
func ParseMarker(marker string) (renamed string, chrom int, pos int, err error) {
	h := handle("ParseMarker: %w")

	renamed = marker
	if strings.HasPrefix(marker, "chrX") {
		renamed = "chr23" + marker[4:]
	}
	c, p, ok := strings.Cut(renamed, ":")
	if !ok || !strings.HasPrefix(c, "chr") {
		return "", 0, 0, h(fmt.Errorf("marker %q not in chr<c>:<pos> format", marker))
	}

	chrom, e := strconv.Atoi(c[3:])
	if e != nil { return "", 0, 0, h(e) }
	pos, e = strconv.Atoi(p)
	if e != nil { return "", 0, 0, h(e) }
	return renamed, chrom, pos, nil
}
