package gor

import (
	"errors"
	"strings"
	"testing"

	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

const gorIn = `pval,chr,pos,gene
0.1,10,5,A
0.2,2,30,B
0.3,chrX,1,C
0.4,2,4,D
`

func TestConvertToGor(t *testing.T) {
	var b strings.Builder
	e := ConvertToGor(strings.NewReader(gorIn), &b, Args{ChrCol: "chr", PosCol: "pos", Extra: ParseExtra(" gene, pval"), Sep: ','})
	if e != nil { panic(e) }

	expect := "#Chrom\tPos\tgene\tpval\n" +
		"chr2\t4\tD\t0.4\n" +
		"chr2\t30\tB\t0.2\n" +
		"chr10\t5\tA\t0.1\n" +
		"chrX\t1\tC\t0.3\n"
	if b.String() != expect {
		t.Errorf("out %q != expect %q", b.String(), expect)
	}
}

func TestConvertToGorMissing(t *testing.T) {
	var b strings.Builder
	e := ConvertToGor(strings.NewReader(gorIn), &b, Args{ChrCol: "chr", PosCol: "pos", Extra: []string{"beta"}, Sep: ','})
	if !errors.Is(e, tsv.ErrMissingColumn) || !strings.Contains(e.Error(), "beta") {
		t.Errorf("expected missing column error naming beta, got %v", e)
	}
}
