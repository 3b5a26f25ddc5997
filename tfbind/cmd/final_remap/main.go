package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func main() {
	dirp := flag.String("i", "", "Directory of remap_studies_<chr:pos>.txt files")
	outp := flag.String("o", "", "Combined output file")
	biotypesp := flag.String("b", "", "Comma-separated biotypes to keep")
	filteredp := flag.String("f", "", "Biotype-filtered output file")
	flag.Parse()

	if *dirp == "" || *outp == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	if e := tfbind.ProduceFinalRemapOutput(*dirp, *outp); e != nil {
		log.Fatal(e)
	}
	if *filteredp == "" {
		return
	}

	var biotypes []string
	for _, b := range strings.Split(*biotypesp, ",") {
		if b = strings.TrimSpace(b); b != "" {
			biotypes = append(biotypes, b)
		}
	}
	if e := tfbind.FilterRemapByBiotype(*outp, biotypes, *filteredp); e != nil {
		log.Fatal(e)
	}
}
