package tfbind

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/biogo/hts/fai"
	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
)

// Reference sequence of chrom from start to end, 1-based and inclusive.
type Faidx interface {
	Fetch(ctx context.Context, chrom string, start, end int) (string, error)
}

type SamtoolsFaidx struct {
	Samtools extern.Samtools
	Ref string
}

func (s SamtoolsFaidx) Fetch(ctx context.Context, chrom string, start, end int) (string, error) {
	return s.Samtools.Faidx(ctx, s.Ref, fmt.Sprintf("%v:%v-%v", chrom, start, end))
}

// A FASTA read through its .fai index without calling samtools. Not safe for
// concurrent use.
type FaiFasta struct {
	fp *os.File
	f *fai.File
}

func OpenFaiFasta(path string) (*FaiFasta, error) {
	h := handle("OpenFaiFasta: %w")

	ir, e := os.Open(path + ".fai")
	if e != nil { return nil, h(e) }
	defer ir.Close()
	idx, e := fai.ReadFrom(ir)
	if e != nil { return nil, h(e) }

	fp, e := os.Open(path)
	if e != nil { return nil, h(e) }
	return &FaiFasta{fp: fp, f: fai.NewFile(fp, idx)}, nil
}

func (f *FaiFasta) Close() error {
	return f.fp.Close()
}

func (f *FaiFasta) Fetch(ctx context.Context, chrom string, start, end int) (string, error) {
	h := handle("FaiFasta.Fetch: %v:%v-%v: %w")

	if e := ctx.Err(); e != nil { return "", h(chrom, start, end, e) }
	seq, e := f.f.SeqRange(chrom, start-1, end)
	if e != nil { return "", h(chrom, start, end, e) }
	b, e := io.ReadAll(seq)
	if e != nil { return "", h(chrom, start, end, e) }
	return string(b), nil
}

type ApeSnp struct {
	ID string
	Chrom string
	Pos int
	OA string
	EA string
}

// Bases taken on each side of the variant.
func Flank(ea string) int {
	return int(30 - float64(len(ea))/2 + 0.5)
}

// One PERFECTOS-APE input line: ID, then the flanked sequence with the
// variant written as [OA/EA].
func ApeLine(s ApeSnp, seq string) (string, error) {
	flank := Flank(s.EA)
	if len(seq) < flank+len(s.EA) {
		return "", fmt.Errorf("ApeLine: %v: sequence of length %v too short for flank %v", s.ID, len(seq), flank)
	}
	return s.ID + " " + seq[:flank] + "[" + s.OA + "/" + s.EA + "]" + seq[flank+len(s.EA):], nil
}

// Write PERFECTOS-APE input for a whitespace-separated "ID CHR POS OA EA"
// snplist. Indels are skipped and their IDs written to indels.
func CreateApeInput(ctx context.Context, snplist io.Reader, faidx Faidx, w io.Writer, indels io.Writer) error {
	h := handle("CreateApeInput: line %v: %w")

	s := bufio.NewScanner(snplist)
	s.Buffer([]byte{}, 1e9)
	bw := bufio.NewWriter(w)
	biw := bufio.NewWriter(indels)

	// header
	s.Scan()
	for i := 2; s.Scan(); i++ {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return h(i, fmt.Errorf("len(fields) %v < 5", len(fields)))
		}
		snp := ApeSnp{ID: fields[0], Chrom: fields[1], OA: fields[3], EA: fields[4]}
		var e error
		if snp.Pos, e = strconv.Atoi(fields[2]); e != nil { return h(i, e) }

		if len(snp.OA) > 1 || len(snp.EA) > 1 {
			log.Printf("Skipping indel %v", snp.ID)
			if _, e := fmt.Fprintln(biw, snp.ID); e != nil { return h(i, e) }
			continue
		}

		flank := Flank(snp.EA)
		seq, e := faidx.Fetch(ctx, snp.Chrom, snp.Pos-flank, snp.Pos+flank)
		if e != nil { return h(i, e) }
		line, e := ApeLine(snp, seq)
		if e != nil { return h(i, e) }
		if _, e := fmt.Fprintln(bw, line); e != nil { return h(i, e) }
	}
	if e := s.Err(); e != nil { return h(-1, e) }
	if e := bw.Flush(); e != nil { return h(-1, e) }
	if e := biw.Flush(); e != nil { return h(-1, e) }
	return nil
}

type ApeArgs struct {
	Snplist string
	Ref string
	InProcess bool
	Samtools string
	Java string
	Jar string
	Hocomoco string
	Tmpdir string
	Output string
}

func createApeInputPaths(ctx context.Context, snplist string, faidx Faidx, inputPath, indelPath string) (err error) {
	r, e := os.Open(snplist)
	if e != nil {
		return e
	}
	defer r.Close()

	w, e := os.Create(inputPath)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()

	iw, e := os.Create(indelPath)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, iw.Close()) }()

	return CreateApeInput(ctx, r, faidx, w, iw)
}

// java -jar ape.jar <hocomoco> <input> > output
func RunApe(ctx context.Context, java extern.Java, jar, hocomoco, input, output string) (err error) {
	h := handle("RunApe: %w")

	w, e := os.Create(output)
	if e != nil { return h(e) }
	defer func() { csvh.DeferE(&err, w.Close()) }()

	if e := java.Jar(ctx, jar, w, hocomoco, input); e != nil { return h(e) }
	return nil
}

// Build the PERFECTOS-APE input in Tmpdir (tmp.txt, indels.txt) and run APE
// on it.
func RunPerfectos(ctx context.Context, args ApeArgs) error {
	h := handle("RunPerfectos: %w")

	var faidx Faidx = SamtoolsFaidx{Samtools: extern.Samtools{Path: args.Samtools}, Ref: args.Ref}
	if args.InProcess {
		f, e := OpenFaiFasta(args.Ref)
		if e != nil { return h(e) }
		defer f.Close()
		faidx = f
	}

	if e := os.MkdirAll(args.Tmpdir, 0755); e != nil { return h(e) }
	input := filepath.Join(args.Tmpdir, "tmp.txt")
	if e := createApeInputPaths(ctx, args.Snplist, faidx, input, filepath.Join(args.Tmpdir, "indels.txt")); e != nil {
		return h(e)
	}

	log.Printf("Created perfectos-ape input file, running perfectos-ape... (this may take a while)\nOutput will be continuously written to %v", args.Output)
	if e := RunApe(ctx, extern.Java{Path: args.Java}, args.Jar, args.Hocomoco, input, args.Output); e != nil {
		return h(e)
	}
	log.Printf("Completed")
	return nil
}
