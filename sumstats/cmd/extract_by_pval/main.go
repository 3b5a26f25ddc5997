package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/sumstats/pkg"
)

func main() {
	var f sumstats.ExtractArgs
	flag.StringVar(&f.VarInfo, "v", "", "Path to the variant info file")
	flag.StringVar(&f.Dir, "i", "", "Directory containing the GWAS .res files")
	flag.Float64Var(&f.Pexp, "p", 6, "Negative log10 of the p-value threshold, e.g. 6 for p=1e-6")
	flag.StringVar(&f.Outdir, "o", "", "Directory to write the hit tables to")
	flag.IntVar(&f.Threads, "t", -1, "Threads to use (default infinite)")
	flag.Parse()

	if f.VarInfo == "" || f.Dir == "" || f.Outdir == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	if e := sumstats.ExtractByPval(context.Background(), f); e != nil {
		log.Fatal(e)
	}
}
