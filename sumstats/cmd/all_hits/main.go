package main

import (
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/sumstats/pkg"
)

func main() {
	var f sumstats.AllHitsArgs
	flag.StringVar(&f.Dir, "i", "", "Directory containing the per-phenotype hit tables")
	flag.StringVar(&f.Run, "n", "", "Name of the GWAS run, used in the output file name")
	flag.StringVar(&f.Pthresh, "p", "", "P-value exponent used when filtering, used in the output file name")
	flag.BoolVar(&f.IncludeRepeats, "r", false, "Keep every significant association of a variant, not just the strongest")
	flag.StringVar(&f.Outdir, "o", "", "Directory to write the combined table to")
	flag.Parse()

	if f.Dir == "" || f.Run == "" || f.Outdir == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	out, e := sumstats.AllHitsTable(f)
	if e != nil {
		log.Fatal(e)
	}
	log.Printf("Wrote %v", out)
}
