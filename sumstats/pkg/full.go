package sumstats

import (
	"fmt"
	"log"
	"path/filepath"
)

type FullArgs struct {
	VarInfo string
	Dir string
	Trait string
	Outdir string
}

const TemplateName = "template_manhattan.txt"

// Pick the .res file to build a template from: the named trait if given,
// otherwise the first file in the folder.
func PickTraitFile(dir, trait string) (string, error) {
	if trait != "" {
		return filepath.Join(dir, trait), nil
	}
	paths, e := ListFiles(dir, ".res")
	if e != nil {
		return "", e
	}
	if len(paths) < 1 {
		return "", fmt.Errorf("PickTraitFile: no .res files in %v", dir)
	}
	return paths[0], nil
}

// Unfiltered summary statistics for a single trait, used as the background of
// a combined Manhattan plot.
func FullSumstats(args FullArgs) (string, error) {
	h := handle("FullSumstats: %w")

	info, e := ReadVarInfoPath(args.VarInfo)
	if e != nil { return "", h(e) }

	path, e := PickTraitFile(args.Dir, args.Trait)
	if e != nil { return "", h(e) }
	log.Printf("Generating full summary statistics from %v", filepath.Base(path))

	_, hits, e := ExtractFile(path, info, func(float64) bool { return true })
	if e != nil { return "", h(e) }

	outpath := filepath.Join(args.Outdir, TemplateName)
	if e := WriteHitsPath(outpath, hits); e != nil { return "", h(e) }
	log.Printf("Full summary statistics written to %v", outpath)
	return outpath, nil
}
