package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/jgbaldwinbrown/gwaspipes/extern/pkg"
	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func readJobs(path string) ([]tfbind.SnplistJob, error) {
	if path == "-" {
		return tfbind.ReadJobs(os.Stdin)
	}
	r, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	return tfbind.ReadJobs(r)
}

func main() {
	var j tfbind.SnplistJob
	flag.StringVar(&j.Snplist, "s", "", "Snplist with columns ID, Chrom, Pos, OA, EA")
	flag.StringVar(&j.Remap, "r", "", "ReMap BED file, bgzipped with a tabix index")
	flag.StringVar(&j.Tmpdir, "tmp", "", "Directory for tabix slices")
	flag.StringVar(&j.Outdir, "o", "", "Output directory for remap_studies_<chr:pos>.txt files")
	flag.BoolVar(&j.SkipMissing, "skip-missing", false, "Skip SNPs without ReMap entries instead of failing")
	configp := flag.String("c", "", "JSON job stream to run instead of -s/-r/-o ('-' for stdin)")
	threadsp := flag.Int("t", 0, "Concurrent tabix queries (default one per CPU)")
	tabixp := flag.String("tabix", "tabix", "Path to tabix")
	flag.Parse()

	jobs := []tfbind.SnplistJob{j}
	if *configp != "" {
		var e error
		jobs, e = readJobs(*configp)
		if e != nil {
			log.Fatal(e)
		}
	} else if j.Snplist == "" || j.Remap == "" || j.Outdir == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	if e := tfbind.RemapLookupMulti(context.Background(), extern.Tabix{Path: *tabixp}, *threadsp, jobs...); e != nil {
		log.Fatal(e)
	}
}
