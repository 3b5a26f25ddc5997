package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func main() {
	var f tfbind.ApeArgs
	flag.StringVar(&f.Snplist, "snplist", "", "Snplist, whitespace-separated ID CHR POS OA EA")
	flag.StringVar(&f.Ref, "ref", "./hg38.fa", "Reference FASTA indexed with samtools faidx")
	flag.BoolVar(&f.InProcess, "inprocess", false, "Read the reference through its .fai index instead of calling samtools")
	flag.StringVar(&f.Samtools, "samtools", "samtools", "Path to samtools")
	flag.StringVar(&f.Java, "java", "java", "Path to java")
	flag.StringVar(&f.Jar, "jar", "ape.jar", "Path to the perfectos-ape jar")
	flag.StringVar(&f.Hocomoco, "hocomoco", "./pwm/hocomoco_11_human", "Path to the HOCOMOCO motif collection")
	flag.StringVar(&f.Tmpdir, "tmp", "tmp", "Directory for the APE input and indel list")
	flag.StringVar(&f.Output, "o", "./results/results.txt", "Output file")
	flag.Parse()

	if f.Snplist == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	if e := tfbind.RunPerfectos(context.Background(), f); e != nil {
		log.Fatal(e)
	}
}
