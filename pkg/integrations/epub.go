package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	epub "github.com/go-shiori/go-epub"

	"github.com/nwatts/gbdl/pkg/data"
)

// EPUBAssembler builds an EPUB with one section per outline chapter
// (or a single section when the source provides no table of contents).
type EPUBAssembler struct{}

// NewEPUBAssembler creates an EPUBAssembler.
func NewEPUBAssembler() *EPUBAssembler {
	return &EPUBAssembler{}
}

// Extension returns the file extension for EPUB output.
func (a *EPUBAssembler) Extension() string {
	return ".epub"
}

// Assemble writes the EPUB for one issue to dest.
func (a *EPUBAssembler) Assemble(issue *data.Issue, images []data.PageImage, outline []*data.OutlineNode, dest string) error {
	e, err := epub.NewEpub(issue.FullTitle())
	if err != nil {
		return &AssemblyError{Format: "epub", Err: err}
	}
	if issue.Author != "" {
		e.SetAuthor(issue.Author)
	}
	if issue.Description != "" {
		e.SetDescription(issue.Description)
	}
	e.SetLang("en")

	// go-epub reads images from the filesystem, so stage them in a
	// scratch directory for the duration of the build.
	tmpDir, err := os.MkdirTemp("", "gbdl-epub-*")
	if err != nil {
		return &AssemblyError{Format: "epub", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	// A new section starts at every page an outline entry targets.
	titles := make(map[int]string)
	for _, entry := range flatten(outline, len(images)) {
		if _, ok := titles[entry.page]; !ok {
			titles[entry.page] = entry.title
		}
	}

	var body strings.Builder
	sectionTitle := issue.Title()
	flush := func() error {
		if body.Len() == 0 {
			return nil
		}
		_, err := e.AddSection(body.String(), sectionTitle, "", "")
		body.Reset()
		return err
	}

	for i, img := range images {
		if title, ok := titles[i]; ok {
			if err := flush(); err != nil {
				return &AssemblyError{Format: "epub", Err: err}
			}
			sectionTitle = title
		}

		path := filepath.Join(tmpDir, img.Filename())
		if err := os.WriteFile(path, img.Data, 0644); err != nil {
			return &AssemblyError{Format: "epub", Err: err}
		}
		internalPath, err := e.AddImage(path, img.Filename())
		if err != nil {
			return &AssemblyError{Format: "epub", Err: fmt.Errorf("failed to add image %s: %w", img.Filename(), err)}
		}
		body.WriteString(fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			internalPath, img.Number, "\n",
		))
	}
	if err := flush(); err != nil {
		return &AssemblyError{Format: "epub", Err: err}
	}

	if err := writeAtomic(dest, e.Write); err != nil {
		return &AssemblyError{Format: "epub", Err: err}
	}
	return nil
}
