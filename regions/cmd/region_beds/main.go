package main

import (
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/regions/pkg"
)

func main() {
	regp := flag.String("r", "", "variant_regions.bed file")
	hitp := flag.String("i", "", "Directory containing the per-phenotype hit tables")
	outp := flag.String("o", "", "Output directory")
	flag.Parse()

	if *regp == "" || *hitp == "" || *outp == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	paths, e := regions.RegionBeds(*regp, *hitp, *outp)
	if e != nil {
		log.Fatal(e)
	}
	log.Printf("Wrote %v region files", len(paths))
}
