package sumstats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

const CombinedName = "combined_manhattan.txt"

type SwapArgs struct {
	Template string
	Hits string
	Aliases string
	Outdir string
}

// Read phenotype,alias lines. A line with only a phenotype maps it to
// "Other".
func ReadAliases(r io.Reader) (map[string]string, error) {
	h := handle("ReadAliases: line %v: %w")

	out := map[string]string{}
	s := bufio.NewScanner(r)
	for i := 1; s.Scan(); i++ {
		line := strings.TrimRight(s.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		key := strings.ReplaceAll(fields[0], " ", "")
		switch len(fields) {
		case 1:
			out[key] = "Other"
		case 2:
			out[key] = strings.TrimRightFunc(fields[1], func(r rune) bool {
				return r == ' ' || r == '\t'
			})
		default:
			return nil, h(i, fmt.Errorf("%v entries; each line must have 2 entries max", len(fields)))
		}
	}
	if e := s.Err(); e != nil { return nil, h(-1, e) }
	return out, nil
}

func ReadAliasesPath(path string) (map[string]string, error) {
	h := handle("ReadAliasesPath: %w")

	if fi, e := os.Stat(path); e != nil || fi.IsDir() {
		return nil, h(fmt.Errorf("the provided alias file %v does not exist", path))
	}
	r, e := os.Open(path)
	if e != nil { return nil, h(e) }
	defer r.Close()

	return ReadAliases(r)
}

func withAlias(t *tsv.Table, alias func(pheno string) (string, error)) (*tsv.Table, error) {
	sel, e := t.Select(HitColumns...)
	if e != nil {
		return nil, e
	}
	out := tsv.NewTable(append(append([]string{}, HitColumns...), "alias")...)
	pcol := sel.Col("phenotype")
	for _, row := range sel.Rows {
		a, e := alias(row[pcol])
		if e != nil {
			return nil, e
		}
		out.Append(append(row, a)...)
	}
	return out, nil
}

func samePheno(pheno string) (string, error) {
	return pheno, nil
}

// Put the hits of many traits on top of the full summary statistics of one
// trait, so that a single Manhattan plot shows all of them.
func SwapHits(template, hits *tsv.Table, aliases map[string]string) (*tsv.Table, error) {
	h := handle("SwapHits: %w")

	alias := samePheno
	if aliases != nil {
		alias = func(pheno string) (string, error) {
			a, ok := aliases[pheno]
			if !ok {
				return "", fmt.Errorf("no alias for phenotype %v", pheno)
			}
			return a, nil
		}
	}

	ta, e := withAlias(template, samePheno)
	if e != nil { return nil, h(e) }
	ha, e := withAlias(hits, alias)
	if e != nil { return nil, h(e) }

	out := tsv.NewTable(ta.Header...)
	ccol := out.Col("chromosome")
	seen := map[string]struct{}{}
	for _, rows := range [][][]string{ta.Rows, ha.Rows} {
		for _, row := range rows {
			row[ccol] = strings.TrimPrefix(row[ccol], "chr")
			key := strings.Join(row[:len(HitColumns)], "\t")
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out.Append(row...)
		}
	}

	out.SortStable(ChromPosLess(ccol, out.Col("position")))
	return out, nil
}

func RunSwapHits(args SwapArgs) (string, error) {
	h := handle("RunSwapHits: %w")

	hits, e := ReadHitTablePath(args.Hits)
	if e != nil { return "", h(e) }

	var aliases map[string]string
	if args.Aliases != "" {
		aliases, e = ReadAliasesPath(args.Aliases)
		if e != nil { return "", h(e) }
	}

	template, e := ReadHitTablePath(args.Template)
	if e != nil { return "", h(e) }

	out, e := SwapHits(template, hits, aliases)
	if e != nil { return "", h(e) }

	outpath := filepath.Join(args.Outdir, CombinedName)
	if e := tsv.WriteTablePath(outpath, out, '\t'); e != nil { return "", h(e) }
	return outpath, nil
}
