package sumstats

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/iter"
	"github.com/jgbaldwinbrown/lscan/pkg"
)

// One row of a DeCODE .res file: variant ID, effect size and chi-square
// statistic, separated by spaces, no header.
type ResEntry struct {
	ID string
	Beta string
	Chi2 float64
	Chi2Str string
}

func dropEmpty(fields []string) []string {
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func ParseRes(r io.Reader) *iter.Iterator[ResEntry] {
	return &iter.Iterator[ResEntry]{Iteratef: func(yield func(ResEntry) error) error {
		h := handle("ParseRes: line %v: %w")
		s := bufio.NewScanner(r)
		s.Buffer([]byte{}, 1e9)
		split := lscan.ByByte(' ')
		var line []string

		for i := 1; s.Scan(); i++ {
			if strings.TrimSpace(s.Text()) == "" {
				continue
			}
			line = dropEmpty(lscan.SplitByFunc(line, strings.TrimSpace(s.Text()), split))
			if len(line) < 3 {
				return h(i, fmt.Errorf("len(line) %v < 3", len(line)))
			}

			chi2, e := strconv.ParseFloat(line[2], 64)
			if e != nil { return h(i, e) }

			if e := yield(ResEntry{ID: line[0], Beta: line[1], Chi2: chi2, Chi2Str: line[2]}); e != nil {
				return e
			}
		}
		if e := s.Err(); e != nil { return h(-1, e) }
		return nil
	}}
}

// The phenotype of a DeCODE result is only recorded in its file name, as the
// underscore-separated fields between the four-field prefix and the
// three-field suffix.
func PhenotypeFromFilename(name string) (string, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	fields := strings.Split(base, "_")
	if len(fields) < 8 {
		return "", fmt.Errorf("PhenotypeFromFilename: %v has %v fields, want at least 8", name, len(fields))
	}
	return strings.Join(fields[4:len(fields)-3], "_"), nil
}
