package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/eqtl/pkg"
)

func main() {
	dirp := flag.String("i", "", "Folder of ImmuNexUT eQTL files")
	rsidp := flag.String("r", "", "File with one rsID per line")
	outp := flag.String("o", "", "Output file")
	threadsp := flag.Int("t", -1, "Files to read at once")
	flag.Parse()

	if *dirp == "" || *rsidp == "" || *outp == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	rsids, e := eqtl.ReadRsidsPath(*rsidp)
	if e != nil {
		log.Fatal(e)
	}
	es, e := eqtl.LookupFolder(context.Background(), *dirp, rsids, *threadsp)
	if e != nil {
		log.Fatal(e)
	}
	if e := eqtl.WriteEntriesPath(*outp, es); e != nil {
		log.Fatal(e)
	}
}
