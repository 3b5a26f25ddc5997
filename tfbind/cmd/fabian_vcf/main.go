package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func fromList(path, outdir string) ([]string, error) {
	r, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	return tfbind.FabianListToVcf(r, outdir)
}

func main() {
	outp := flag.String("o", "", "Output directory for the VCF file(s)")
	listp := flag.Bool("list", false, "Input is a list of chr:posOA>EA variants instead of a snplist")
	flag.Parse()
	in := flag.Arg(0)

	if in == "" || *outp == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	var e error
	if *listp {
		_, e = fromList(in, *outp)
	} else {
		_, e = tfbind.VariantListToFabianVcf(in, *outp)
	}
	if e != nil {
		log.Fatal(e)
	}
}
