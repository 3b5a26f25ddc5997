package main

import (
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func main() {
	var f tfbind.FleshOutArgs
	flag.StringVar(&f.DoubleEvidence, "d", "", "Double evidence file with ID and TFs columns")
	flag.StringVar(&f.Fabian, "f", "", "FABIAN-Variant output with a header")
	flag.StringVar(&f.Map, "m", "", "Map file between variant IDs and FABIAN input format")
	flag.StringVar(&f.Output, "o", "", "Output file")
	flag.Parse()

	if f.DoubleEvidence == "" || f.Fabian == "" || f.Map == "" || f.Output == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	if e := tfbind.RunFleshOutDoubleEvidence(f); e != nil {
		log.Fatal(e)
	}
}
