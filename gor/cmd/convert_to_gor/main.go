package main

import (
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/gwaspipes/gor/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tsv/pkg"
)

func run(inpath, outpath string, args gor.Args) (err error) {
	r, e := csvh.OpenMaybeGz(inpath)
	if e != nil {
		return e
	}
	defer r.Close()

	w, e := tsv.CreateMaybeGz(outpath)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()

	return gor.ConvertToGor(r, w, args)
}

func main() {
	inp := flag.String("i", "", "Input table")
	outp := flag.String("o", "", "Output GOR file")
	chrp := flag.String("chr_col", "chr", "Chromosome column")
	posp := flag.String("pos_col", "pos", "Position column")
	extrap := flag.String("additional_cols", "", "Comma-separated list of additional columns to include")
	sepp := flag.String("sep", "\t", "Input separator")
	flag.Parse()

	if *inp == "" || *outp == "" {
		log.Fatal(errors.New("Missing argument"))
	}
	if len([]rune(*sepp)) != 1 {
		log.Fatal(errors.New("separator must be a single character"))
	}

	args := gor.Args{ChrCol: *chrp, PosCol: *posp, Extra: gor.ParseExtra(*extrap), Sep: []rune(*sepp)[0]}
	if e := run(*inp, *outp, args); e != nil {
		log.Fatal(e)
	}
}
