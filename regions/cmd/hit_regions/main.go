package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/regions/pkg"
)

func main() {
	dirp := flag.String("i", "", "Directory containing the per-phenotype hit tables")
	outp := flag.String("o", "", "Output directory")
	bedtoolsp := flag.String("bedtools", "bedtools", "Path to bedtools")
	inprocessp := flag.Bool("inprocess", false, "Merge windows without calling bedtools")
	flag.Parse()

	if *dirp == "" || *outp == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	var merger regions.Merger = regions.BedtoolsMerger{
		Bedtools: extern.Bedtools{Path: *bedtoolsp},
		Tmpdir: *outp,
	}
	if *inprocessp {
		merger = regions.SweepMerger{}
	}

	out, e := regions.HitRegions(context.Background(), *dirp, *outp, merger)
	if e != nil {
		log.Fatal(e)
	}
	log.Printf("Wrote %v", out)
}
