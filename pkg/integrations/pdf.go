package integrations

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/webp"

	"github.com/nwatts/gbdl/pkg/data"
)

// PDFAssembler writes one PDF page per image, sized to the image's
// pixel dimensions in points, with the issue outline as a bookmark
// tree.
type PDFAssembler struct{}

// NewPDFAssembler creates a PDFAssembler.
func NewPDFAssembler() *PDFAssembler {
	return &PDFAssembler{}
}

// Extension returns the file extension for PDF output.
func (a *PDFAssembler) Extension() string {
	return ".pdf"
}

// Assemble writes the PDF for one issue to dest.
func (a *PDFAssembler) Assemble(issue *data.Issue, images []data.PageImage, outline []*data.OutlineNode, dest string) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: 612, Ht: 792},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(issue.FullTitle(), true)
	if issue.Author != "" {
		pdf.SetAuthor(issue.Author, true)
	}

	// Bookmarks are emitted while the target page is current, grouped
	// by page index.
	bookmarks := make(map[int][]flatEntry)
	for _, entry := range flatten(outline, len(images)) {
		bookmarks[entry.page] = append(bookmarks[entry.page], entry)
	}

	for i, img := range images {
		w, h := float64(img.Width), float64(img.Height)
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

		payload, imgType, err := embeddable(img)
		if err != nil {
			return &AssemblyError{Format: "pdf", Err: err}
		}
		opts := gofpdf.ImageOptions{ImageType: imgType}
		pdf.RegisterImageOptionsReader(img.Filename(), opts, bytes.NewReader(payload))
		pdf.ImageOptions(img.Filename(), 0, 0, w, h, false, opts, 0, "")

		for _, bm := range bookmarks[i] {
			pdf.Bookmark(bm.title, bm.level, 0)
		}
	}

	if pdf.Err() {
		return &AssemblyError{Format: "pdf", Err: pdf.Error()}
	}
	if err := writeAtomic(dest, pdf.OutputFileAndClose); err != nil {
		return &AssemblyError{Format: "pdf", Err: err}
	}
	return nil
}

// embeddable returns image bytes in a form gofpdf can embed, together
// with the gofpdf image type tag. Formats gofpdf does not understand
// (webp) are transcoded to PNG.
func embeddable(img data.PageImage) ([]byte, string, error) {
	switch strings.ToLower(img.Ext) {
	case "jpg", "jpeg":
		return img.Data, "JPG", nil
	case "png":
		return img.Data, "PNG", nil
	case "gif":
		return img.Data, "GIF", nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "PNG", nil
}
