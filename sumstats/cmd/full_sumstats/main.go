package main

import (
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/sumstats/pkg"
)

func main() {
	var f sumstats.FullArgs
	flag.StringVar(&f.VarInfo, "v", "", "Path to the variant info file")
	flag.StringVar(&f.Dir, "i", "", "Directory containing the GWAS .res files")
	flag.StringVar(&f.Trait, "trait", "", "Name of the .res file to use (default: first in the directory)")
	flag.StringVar(&f.Outdir, "o", "", "Directory to write template_manhattan.txt to")
	flag.Parse()

	if f.VarInfo == "" || f.Dir == "" || f.Outdir == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	if _, e := sumstats.FullSumstats(f); e != nil {
		log.Fatal(e)
	}
}
