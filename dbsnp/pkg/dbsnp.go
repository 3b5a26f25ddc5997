package dbsnp

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"golang.org/x/sync/errgroup"
	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

// Chromosome to RefSeq accession, e.g. 6 -> NC_000006.12.
func ReadRefSeqMap(r io.Reader) (map[string]string, error) {
	h := handle("ReadRefSeqMap: %w")
	cr := tsv.NewReader(r, '\t')

	out := map[string]string{}
	for line, e := cr.Read(); e != io.EOF; line, e = cr.Read() {
		if e != nil { return nil, h(e) }
		if len(line) < 2 {
			return nil, h(fmt.Errorf("len(line) %v < 2", len(line)))
		}
		out[line[0]] = strings.TrimSpace(line[1])
	}
	return out, nil
}

func ReadRefSeqMapPath(path string) (map[string]string, error) {
	r, e := os.Open(path)
	if e != nil {
		return nil, fmt.Errorf("ReadRefSeqMapPath: %w", e)
	}
	defer r.Close()
	return ReadRefSeqMap(r)
}

// rsID of the dbSNP record at chr:pos. Chromosome X and positions without a
// record give "".
func Lookup(ctx context.Context, tabix extern.Querier, dbsnp string, refseq map[string]string, chr string, pos int) (string, error) {
	h := handle("Lookup: %w")

	if chr == "X" {
		return "", nil
	}
	acc, ok := refseq[chr]
	if !ok {
		return "", h(fmt.Errorf("no RefSeq accession for chromosome %v", chr))
	}

	region := fmt.Sprintf("%v:%v-%v", acc, pos, pos)
	lines, e := tabix.Query(ctx, dbsnp, region)
	if e != nil { return "", h(e) }
	if len(lines) == 0 {
		log.Printf("No matches for %v:%v-%v", chr, pos, pos)
		return "", nil
	}

	match := strings.Split(lines[0], "\t")
	if len(lines) > 1 {
		for _, line := range lines {
			fields := strings.Split(line, "\t")
			if len(fields) > 1 && fields[1] == strconv.Itoa(pos) {
				match = fields
				break
			}
		}
	}
	if len(match) < 3 {
		return "", h(fmt.Errorf("dbSNP line %q has too few fields", lines[0]))
	}
	return match[2], nil
}

type AnnotateArgs struct {
	VarInfo string
	Dbsnp string
	RefSeq string
	Out string
	Threads int
}

// chr1:1234 -> "1", 1234
func SplitMarker(marker string) (chr string, pos int, err error) {
	c, p, ok := strings.Cut(marker, ":")
	if !ok {
		return "", 0, fmt.Errorf("SplitMarker: marker %q not in chr<c>:<pos> format", marker)
	}
	pos, err = strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("SplitMarker: %w", err)
	}
	return strings.TrimPrefix(c, "chr"), pos, nil
}

func CheckBgzipped(path string) error {
	h := handle("CheckBgzipped: %v: %w")

	f, e := os.Open(path)
	if e != nil { return h(path, e) }
	defer f.Close()

	ok, e := bgzf.HasEOF(f)
	if e != nil { return h(path, e) }
	if !ok {
		return h(path, fmt.Errorf("missing bgzf EOF block; is the file bgzipped?"))
	}
	return nil
}

// Insert an rsid column at index 1, looking every Marker up in dbSNP.
func AnnotateTable(ctx context.Context, t *tsv.Table, tabix extern.Querier, dbsnp string, refseq map[string]string, threads int) (*tsv.Table, error) {
	h := handle("AnnotateTable: %w")

	if e := t.Has("Marker"); e != nil { return nil, h(e) }
	mcol := t.Col("Marker")

	rsids := make([]string, len(t.Rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extern.QueryLimit(threads))
	for i, row := range t.Rows {
		i, row := i, row
		g.Go(func() error {
			chr, pos, e := SplitMarker(tsv.Field(row, mcol))
			if e != nil { return e }
			rsid, e := Lookup(ctx, tabix, dbsnp, refseq, chr, pos)
			if e != nil { return e }
			rsids[i] = rsid
			return nil
		})
	}
	if e := g.Wait(); e != nil { return nil, h(e) }

	header := append([]string{t.Header[0], "rsid"}, t.Header[1:]...)
	out := tsv.NewTable(header...)
	for i, row := range t.Rows {
		orow := make([]string, 0, len(row)+1)
		orow = append(orow, tsv.Field(row, 0), rsids[i])
		if len(row) > 1 {
			orow = append(orow, row[1:]...)
		}
		out.Append(orow...)
	}
	return out, nil
}

func AnnotateRsids(ctx context.Context, tabix extern.Querier, args AnnotateArgs) error {
	h := handle("AnnotateRsids: %w")

	if e := CheckBgzipped(args.Dbsnp); e != nil { return h(e) }
	refseq, e := ReadRefSeqMapPath(args.RefSeq)
	if e != nil { return h(e) }

	t, e := tsv.ReadTablePath(args.VarInfo, '\t', "Marker")
	if e != nil { return h(e) }

	out, e := AnnotateTable(ctx, t, tabix, args.Dbsnp, refseq, args.Threads)
	if e != nil { return h(e) }

	if e := tsv.WriteTablePath(args.Out, out, '\t'); e != nil { return h(e) }
	return nil
}

// chr_to_RefSeq.txt in the folder of the dbSNP file.
func DefaultRefSeqPath(dbsnp string) string {
	return filepath.Join(filepath.Dir(dbsnp), "chr_to_RefSeq.txt")
}
