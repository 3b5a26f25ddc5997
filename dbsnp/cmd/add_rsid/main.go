package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/dbsnp/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
)

func main() {
	var f dbsnp.AnnotateArgs
	flag.StringVar(&f.VarInfo, "i", "variant_info_extended.txt", "Variant info table with a Marker column")
	flag.StringVar(&f.Dbsnp, "d", "", "bgzipped, tabix-indexed dbSNP VCF")
	flag.StringVar(&f.RefSeq, "r", "", "chromosome to RefSeq accession file (default: chr_to_RefSeq.txt next to the dbSNP file)")
	flag.StringVar(&f.Out, "o", "variant_info_extended_with_rsid.txt", "Output file")
	flag.IntVar(&f.Threads, "t", 0, "Concurrent tabix queries (default one per CPU)")
	tabixp := flag.String("tabix", "tabix", "Path to tabix")
	flag.Parse()

	if f.Dbsnp == "" {
		log.Fatal(errors.New("Missing argument"))
	}
	if f.RefSeq == "" {
		f.RefSeq = dbsnp.DefaultRefSeqPath(f.Dbsnp)
	}

	if e := dbsnp.AnnotateRsids(context.Background(), extern.Tabix{Path: *tabixp}, f); e != nil {
		log.Fatal(e)
	}
}
