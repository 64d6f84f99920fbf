package integrations

import (
	"fmt"
	"os"

	"github.com/nwatts/gbdl/pkg/data"
)

// Assembler converts one issue's ordered page images into a single
// output document. The image order is the reading order and must
// survive into the output.
type Assembler interface {
	Assemble(issue *data.Issue, images []data.PageImage, outline []*data.OutlineNode, dest string) error
	Extension() string
}

// ForFormats returns the assemblers for every format in flags, in a
// fixed dispatch order.
func ForFormats(flags data.FormatFlags) []Assembler {
	var out []Assembler
	if flags.Has(data.FormatPdf) {
		out = append(out, NewPDFAssembler())
	}
	if flags.Has(data.FormatCbz) {
		out = append(out, NewCBZAssembler())
	}
	if flags.Has(data.FormatEpub) {
		out = append(out, NewEPUBAssembler())
	}
	return out
}

// AssemblyError reports a failed document assembly. It fails one
// issue's output, never the whole run.
type AssemblyError struct {
	Format string
	Err    error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("failed to assemble %s: %v", e.Format, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// writeAtomic produces dest via a .partial sibling so a failed assembly
// never leaves a corrupt final file behind.
func writeAtomic(dest string, write func(path string) error) error {
	tmp := dest + ".partial"
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// flatten walks an outline tree depth-first, dropping nodes whose page
// index falls outside the image sequence. Children of a dropped node
// are kept at the dropped node's level.
type flatEntry struct {
	title string
	page  int
	level int
}

func flatten(nodes []*data.OutlineNode, pageCount int) []flatEntry {
	var out []flatEntry
	var walk func(ns []*data.OutlineNode, level int)
	walk = func(ns []*data.OutlineNode, level int) {
		for _, n := range ns {
			if n.Page < 0 || n.Page >= pageCount {
				walk(n.Children, level)
				continue
			}
			out = append(out, flatEntry{title: n.Title, page: n.Page, level: level})
			walk(n.Children, level+1)
		}
	}
	walk(nodes, 0)
	return out
}
