package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func main() {
	var f tfbind.RemapArgs
	flag.StringVar(&f.Remap, "r", "", "ReMap BED file, bgzipped with a tabix index")
	flag.StringVar(&f.Tmpdir, "t", "", "Directory for tabix slices (default: working directory)")
	flag.StringVar(&f.Output, "o", "", "Output CSV file")
	tabixp := flag.String("tabix", "tabix", "Path to tabix")
	flag.Parse()
	f.ChrPos = flag.Arg(0)

	if f.ChrPos == "" || f.Remap == "" || f.Output == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	out, e := tfbind.RemapLookupCsv(context.Background(), extern.Tabix{Path: *tabixp}, f)
	if e != nil {
		log.Fatal(e)
	}
	log.Printf("Wrote %v", out)
}
