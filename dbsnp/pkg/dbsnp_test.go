package dbsnp

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

type fakeTabix map[string][]string

func (f fakeTabix) Query(ctx context.Context, file, region string) ([]string, error) {
	if region == "NC_BAD:1-1" {
		return nil, fmt.Errorf("tabix failed")
	}
	return f[region], nil
}

var dbsnpLines = fakeTabix{
	"NC_000001.11:100-100": {"NC_000001.11\t100\trs100\tA\tG\t.\t.\t."},
	"NC_000002.12:50-50": {
		"NC_000002.12\t49\trs49\tAC\tA\t.\t.\t.",
		"NC_000002.12\t50\trs50\tC\tT\t.\t.\t.",
	},
}

const refseqIn = "1\tNC_000001.11\n2\tNC_000002.12 \n"

func TestReadRefSeqMap(t *testing.T) {
	m, e := ReadRefSeqMap(strings.NewReader(refseqIn))
	if e != nil { panic(e) }
	expect := map[string]string{"1": "NC_000001.11", "2": "NC_000002.12"}
	if !reflect.DeepEqual(m, expect) {
		t.Errorf("out %v != expect %v", m, expect)
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	refseq, e := ReadRefSeqMap(strings.NewReader(refseqIn))
	if e != nil { panic(e) }

	cases := []struct {
		chr string
		pos int
		expect string
	}{
		{"1", 100, "rs100"},
		{"2", 50, "rs50"},
		{"1", 7, ""},
		{"X", 100, ""},
	}
	for _, c := range cases {
		got, e := Lookup(ctx, dbsnpLines, "dbsnp.gz", refseq, c.chr, c.pos)
		if e != nil { panic(e) }
		if got != c.expect {
			t.Errorf("Lookup(%v, %v) %v != expect %v", c.chr, c.pos, got, c.expect)
		}
	}
	if _, e := Lookup(ctx, dbsnpLines, "dbsnp.gz", refseq, "3", 1); e == nil {
		t.Errorf("expected error for chromosome without accession")
	}
}

const varInfoIn = `ID	Marker	OA	EA
v1	chr1:100	A	G
v2	chr2:50	C	T
v3	chrX:9	G	A
`

func TestAnnotateTable(t *testing.T) {
	refseq, e := ReadRefSeqMap(strings.NewReader(refseqIn))
	if e != nil { panic(e) }
	tab, e := tsv.ReadTable(strings.NewReader(varInfoIn), '\t')
	if e != nil { panic(e) }

	out, e := AnnotateTable(context.Background(), tab, dbsnpLines, "dbsnp.gz", refseq, 2)
	if e != nil { panic(e) }

	var b strings.Builder
	if e := out.Write(&b, '\t'); e != nil { panic(e) }
	expect := `ID	rsid	Marker	OA	EA
v1	rs100	chr1:100	A	G
v2	rs50	chr2:50	C	T
v3		chrX:9	G	A
`
	if b.String() != expect {
		t.Errorf("out %q != expect %q", b.String(), expect)
	}
}

type countingTabix struct {
	mu sync.Mutex
	cur int
	max int
}

func (c *countingTabix) Query(ctx context.Context, file, region string) ([]string, error) {
	c.mu.Lock()
	c.cur++
	if c.cur > c.max {
		c.max = c.cur
	}
	c.mu.Unlock()

	time.Sleep(time.Millisecond)

	c.mu.Lock()
	c.cur--
	c.mu.Unlock()
	return nil, nil
}

func manyMarkers(n int) *tsv.Table {
	t := tsv.NewTable("ID", "Marker")
	for i := 0; i < n; i++ {
		t.Append(fmt.Sprint("v", i), fmt.Sprintf("chr1:%v", i+1))
	}
	return t
}

func TestAnnotateTableLimit(t *testing.T) {
	refseq := map[string]string{"1": "NC_000001.11"}
	for _, threads := range []int{-1, 0, 3} {
		c := &countingTabix{}
		out, e := AnnotateTable(context.Background(), manyMarkers(300), c, "dbsnp.gz", refseq, threads)
		if e != nil { panic(e) }
		if out.Len() != 300 {
			t.Errorf("threads %v: len %v != 300", threads, out.Len())
		}

		limit := threads
		if limit < 1 {
			limit = runtime.NumCPU()
		}
		if c.max > limit {
			t.Errorf("threads %v: %v concurrent queries > limit %v", threads, c.max, limit)
		}
	}
}
