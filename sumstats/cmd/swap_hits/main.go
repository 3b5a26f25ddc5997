package main

import (
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/sumstats/pkg"
)

func main() {
	var f sumstats.SwapArgs
	flag.StringVar(&f.Template, "t", "", "Full summary statistics file of one trait")
	flag.StringVar(&f.Hits, "h", "", "Combined hit table of all traits")
	flag.StringVar(&f.Aliases, "a", "", "CSV file of phenotype,alias lines")
	flag.StringVar(&f.Outdir, "o", "", "Directory to write combined_manhattan.txt to")
	flag.Parse()

	if f.Template == "" || f.Hits == "" || f.Outdir == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	out, e := sumstats.RunSwapHits(f)
	if e != nil {
		log.Fatal(e)
	}
	log.Printf("Wrote %v", out)
}
