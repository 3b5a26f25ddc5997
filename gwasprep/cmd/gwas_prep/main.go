package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/jgbaldwinbrown/gwaspipes/gwasprep/pkg"
)

func main() {
	var f gwasprep.Args
	flag.StringVar(&f.SampleFile, "s", "", "Oxford .sample file")
	flag.StringVar(&f.BgensDir, "b", "", "Directory containing the .bgen files")
	flag.StringVar(&f.PhenoFile, "p", "", "Tab-separated phenotype file with a Sample_ID column")
	flag.StringVar(&f.SexCov, "x", "", "Sex covariate file (Sample_ID and one column)")
	flag.StringVar(&f.AncestryCov, "a", "", "Ancestry covariate file (Sample_ID and PCs)")
	flag.StringVar(&f.OutputDir, "o", "", "Output directory")
	flag.Parse()

	if f.SampleFile == "" || f.BgensDir == "" || f.PhenoFile == "" || f.OutputDir == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	if e := os.MkdirAll(f.OutputDir, 0755); e != nil {
		log.Fatal(e)
	}
	p, e := gwasprep.MakePlan(f)
	if e != nil {
		log.Fatal(e)
	}
	if e := p.WriteJson(os.Stdout); e != nil {
		log.Fatal(e)
	}
}
