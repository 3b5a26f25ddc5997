package tsv

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/klauspost/pgzip"
)

// Parallel gzip settings for table output. Template and combined Manhattan
// tables run to several GB, so blocks are compressed on every CPU.
type GzOptions struct {
	Level int
	BlockSize int
	Blocks int
}

func DefaultGzOptions() GzOptions {
	return GzOptions{Level: pgzip.DefaultCompression, BlockSize: 1 << 20, Blocks: runtime.NumCPU()}
}

type gzFile struct {
	fp *os.File
	*pgzip.Writer
}

func (w *gzFile) Close() error {
	e := w.Writer.Close()
	if e2 := w.fp.Close(); e == nil {
		e = e2
	}
	return e
}

func CreateGz(path string, opt GzOptions) (io.WriteCloser, error) {
	h := handle("CreateGz: %w")

	fp, e := os.Create(path)
	if e != nil { return nil, h(e) }
	gw, e := pgzip.NewWriterLevel(fp, opt.Level)
	if e != nil {
		fp.Close()
		return nil, h(e)
	}
	if e := gw.SetConcurrency(opt.BlockSize, opt.Blocks); e != nil {
		fp.Close()
		return nil, h(e)
	}
	return &gzFile{fp, gw}, nil
}

// Paths ending in .gz are compressed in parallel with DefaultGzOptions. Others
// are plain files.
func CreateMaybeGz(path string) (io.WriteCloser, error) {
	if strings.HasSuffix(path, ".gz") {
		return CreateGz(path, DefaultGzOptions())
	}
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return nil, e
	}
	return w, nil
}
