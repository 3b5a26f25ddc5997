package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/jgbaldwinbrown/gwaspipes/tfbind/pkg"
)

func main() {
	remapp := flag.String("remap", "", "ReMap lookup CSV")
	perfectosp := flag.String("perfectos", "", "perfectos-ape output")
	flag.Parse()

	if *remapp == "" || *perfectosp == "" {
		log.Fatal(errors.New("Missing argument"))
	}

	tfs, e := tfbind.FindDoubleEvidenceTfs(*remapp, *perfectosp)
	if e != nil {
		log.Fatal(e)
	}
	fmt.Println(strings.Join(tfs, ","))
}
