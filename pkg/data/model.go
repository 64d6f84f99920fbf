package data

import (
	"fmt"
	"strings"
)

// ContentType classifies the kind of publication an issue belongs to.
type ContentType int

const (
	Book ContentType = iota
	Magazine
	Newspaper
)

func (t ContentType) String() string {
	switch t {
	case Magazine:
		return "magazine"
	case Newspaper:
		return "newspaper"
	default:
		return "book"
	}
}

// Periodical reports whether this type names a series with multiple
// dated issues.
func (t ContentType) Periodical() bool {
	return t == Magazine || t == Newspaper
}

// Issue holds the metadata of one book or one issue of a periodical.
type Issue struct {
	ID            string
	URL           string
	SeriesName    string
	PublishDate   string
	Volume        string
	ISSN          string
	Publisher     string
	Description   string
	Author        string
	Length        int
	DateDigitized string
	OrigFrom      string
	Type          ContentType
}

// Title returns the shortest title identifying this issue.
func (i *Issue) Title() string {
	if i.Type.Periodical() {
		return i.PublishDate
	}
	return i.SeriesName
}

// FullTitle returns the full title, including the series name when the
// issue belongs to a periodical.
func (i *Issue) FullTitle() string {
	if i.Type.Periodical() {
		return fmt.Sprintf("%s - %s", i.SeriesName, i.PublishDate)
	}
	return i.SeriesName
}

// CombinedID is the on-disk name for this issue's outputs.
func (i *Issue) CombinedID() string {
	return SanitizeFilename(fmt.Sprintf("%s [%s]", i.FullTitle(), i.ID))
}

// Page is one entry of an issue's page listing. Number is the 1-based
// position in the listing, which defines the reading order.
type Page struct {
	Number int
	PID    string
}

// PageImage is a downloaded page: its listing entry plus the raw image
// bytes and decoded pixel dimensions.
type PageImage struct {
	Page
	Data   []byte
	Width  int
	Height int
	Ext    string
}

// Filename returns the zero-padded name used for staging files and
// archive entries, so lexical order matches reading order.
func (p PageImage) Filename() string {
	return fmt.Sprintf("%05d-%s.%s", p.Number, p.PID, p.Ext)
}

// OutlineNode is one entry of an issue's table of contents. Page is an
// index into the downloaded image sequence. Children are owned by their
// parent and keep insertion order.
type OutlineNode struct {
	Title    string
	Page     int
	Children []*OutlineNode
}

// DownloadMode selects how many issues a single input URL expands to.
type DownloadMode int

const (
	Single DownloadMode = iota
	Period
	Full
)

func (m DownloadMode) String() string {
	switch m {
	case Period:
		return "period"
	case Full:
		return "full"
	default:
		return "single"
	}
}

// ParseDownloadMode parses a mode name as given on the command line.
func ParseDownloadMode(s string) (DownloadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return Single, nil
	case "period":
		return Period, nil
	case "full":
		return Full, nil
	}
	return Single, fmt.Errorf("unknown download mode %q", s)
}

// FormatFlags is the set of output formats to assemble per issue.
type FormatFlags uint32

const (
	FormatNone FormatFlags = 0
	FormatPdf  FormatFlags = 1 << 0
	FormatCbz  FormatFlags = 1 << 1
	FormatEpub FormatFlags = 1 << 2

	// FormatAll covers the two formats every comic/document reader
	// understands. EPUB is opt-in only.
	FormatAll = FormatPdf | FormatCbz
)

// Has reports whether flag is part of the set.
func (f FormatFlags) Has(flag FormatFlags) bool {
	return flag != FormatNone && f&flag == flag
}

// ParseFormats parses a comma-separated format list.
func ParseFormats(names []string) (FormatFlags, error) {
	flags := FormatNone
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "", "none":
		case "pdf":
			flags |= FormatPdf
		case "cbz":
			flags |= FormatCbz
		case "epub":
			flags |= FormatEpub
		case "all":
			flags |= FormatAll
		default:
			return FormatNone, fmt.Errorf("unknown format %q", name)
		}
	}
	return flags, nil
}

// SanitizeFilename replaces characters that are invalid in filenames.
func SanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	return strings.Trim(result, ".")
}
