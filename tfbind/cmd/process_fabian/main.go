package main

import (
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func main() {
	var f tfbind.FabianArgs
	flag.StringVar(&f.Table, "t", "", "Raw FABIAN-Variant output TABLE file")
	flag.StringVar(&f.Data, "d", "", "Raw FABIAN-Variant output DATA file")
	flag.StringVar(&f.Map, "m", "", "Map file written alongside the FABIAN input VCF")
	flag.Float64Var(&f.Threshold, "s", tfbind.DefaultScoreThreshold, "Minimum absolute score")
	flag.StringVar(&f.Outdir, "o", "", "Output directory")
	flag.Parse()

	if f.Map == "" || f.Outdir == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	paths, e := tfbind.ProcessFabianOutputs(f)
	if e != nil {
		log.Fatal(e)
	}
	for _, p := range paths {
		log.Printf("Wrote %v", p)
	}
}
