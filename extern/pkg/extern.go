package extern

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

func orDefault(path, def string) string {
	if path == "" {
		return def
	}
	return path
}

// Returns the lines of a tabix-indexed file that overlap region.
type Querier interface {
	Query(ctx context.Context, file, region string) ([]string, error)
}

// Concurrent queries to run: threads, or one per CPU when threads < 1. Every
// query is a subprocess, so it is never unbounded.
func QueryLimit(threads int) int {
	if threads < 1 {
		return runtime.NumCPU()
	}
	return threads
}

type Tabix struct {
	Path string
}

// Lines returned by "tabix file region". No match gives an empty slice.
func (t Tabix) Query(ctx context.Context, file, region string) ([]string, error) {
	h := handle("Tabix.Query: %w")

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, orDefault(t.Path, "tabix"), file, region)
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr

	if e := cmd.Run(); e != nil { return nil, h(e) }

	var lines []string
	s := bufio.NewScanner(&out)
	s.Buffer([]byte{}, 1e9)
	for s.Scan() {
		if s.Text() == "" {
			continue
		}
		lines = append(lines, s.Text())
	}
	if e := s.Err(); e != nil { return nil, h(e) }
	return lines, nil
}

type Bedtools struct {
	Path string
}

func (b Bedtools) Merge(ctx context.Context, inpath string, w io.Writer, args ...string) error {
	h := handle("Bedtools.Merge: %w")

	bw := bufio.NewWriter(w)
	cmd := exec.CommandContext(ctx, orDefault(b.Path, "bedtools"), append([]string{"merge", "-i", inpath}, args...)...)
	cmd.Stdout = bw
	cmd.Stderr = os.Stderr

	if e := cmd.Run(); e != nil { return h(e) }
	if e := bw.Flush(); e != nil { return h(e) }
	return nil
}

type Samtools struct {
	Path string
}

// Sequence of "samtools faidx ref region" with the FASTA header removed and
// the lines joined.
func (s Samtools) Faidx(ctx context.Context, ref, region string) (string, error) {
	h := handle("Samtools.Faidx: %w")

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, orDefault(s.Path, "samtools"), "faidx", ref, region)
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr

	if e := cmd.Run(); e != nil { return "", h(e) }
	return JoinFasta(out.String()), nil
}

func JoinFasta(fa string) string {
	var b strings.Builder
	for _, line := range strings.Split(fa, "\n") {
		if strings.HasPrefix(line, ">") {
			continue
		}
		b.WriteString(strings.TrimSpace(line))
	}
	return b.String()
}

type Java struct {
	Path string
}

func (j Java) Jar(ctx context.Context, jar string, w io.Writer, args ...string) error {
	h := handle("Java.Jar: %w")

	bw := bufio.NewWriter(w)
	cmd := exec.CommandContext(ctx, orDefault(j.Path, "java"), append([]string{"-jar", jar}, args...)...)
	cmd.Stdout = bw
	cmd.Stderr = os.Stderr

	if e := cmd.Run(); e != nil { return h(e) }
	if e := bw.Flush(); e != nil { return h(e) }
	return nil
}
