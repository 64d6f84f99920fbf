package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/nwatts/gbdl/pkg/data"
	"github.com/nwatts/gbdl/pkg/sources"
	"github.com/nwatts/gbdl/pkg/utils"
)

// Progress is one update emitted while an issue is processed. Consumers
// that fall behind lose updates rather than stalling the download.
type Progress struct {
	IssueID     string
	Title       string
	CurrentPage int
	TotalPages  int
	Status      string
	Err         error
}

const (
	StatusIdentifying = "identifying"
	StatusDownloading = "downloading"
	StatusAssembling  = "assembling"
	StatusComplete    = "complete"
	StatusError       = "error"
)

// Downloader fetches every available page image of an issue through
// the source, retrying page-level requests up to maxAttempts times.
type Downloader struct {
	source      sources.Source
	maxAttempts int
	progress    chan Progress
}

func NewDownloader(source sources.Source, maxAttempts int) *Downloader {
	return &Downloader{
		source:      source,
		maxAttempts: maxAttempts,
		progress:    make(chan Progress, 100),
	}
}

// Progress exposes the update stream. It is closed by Close once the
// owning pipeline finishes its run.
func (d *Downloader) Progress() <-chan Progress {
	return d.progress
}

func (d *Downloader) Close() {
	close(d.progress)
}

func (d *Downloader) publish(p Progress) {
	select {
	case d.progress <- p:
	default:
	}
}

// FetchPages downloads the issue's page images in listing order and
// builds the outline from toc, a pid to chapter title mapping. Pages
// the preview never serves are skipped; a page whose retries are
// exhausted fails the whole issue with a PageFetchError.
func (d *Downloader) FetchPages(issue *data.Issue, toc map[string]string) ([]data.PageImage, []*data.OutlineNode, error) {
	pages, srcs, err := d.source.GetPages(issue.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch page listing: %w", err)
	}
	if len(pages) == 0 {
		return nil, nil, fmt.Errorf("no pages listed for issue %s", issue.ID)
	}
	firstPID := pages[0].PID

	var images []data.PageImage
	var outline []*data.OutlineNode
	for _, page := range pages {
		d.publish(Progress{
			IssueID:     issue.ID,
			Title:       issue.FullTitle(),
			CurrentPage: page.Number,
			TotalPages:  len(pages),
			Status:      StatusDownloading,
		})

		src, ok := srcs[page.PID]
		if !ok {
			found, err := utils.WithRetry(d.maxAttempts, func() (map[string]string, error) {
				return d.source.GetPageSources(issue.ID, firstPID, page.PID)
			})
			if err != nil {
				return nil, nil, &PageFetchError{PageIndex: page.Number, Err: err}
			}
			// Listings answer with a window of pages around the one
			// asked for; cache them all to save round trips.
			for pid, s := range found {
				if _, seen := srcs[pid]; !seen {
					srcs[pid] = s
				}
			}
			src, ok = srcs[page.PID]
			if !ok {
				// Not part of the preview subset.
				continue
			}
		}

		img, err := utils.WithRetry(d.maxAttempts, func() (data.PageImage, error) {
			return d.fetchImage(page, src)
		})
		if err != nil {
			return nil, nil, &PageFetchError{PageIndex: page.Number, Err: err}
		}
		images = append(images, img)

		if title, ok := toc[page.PID]; ok {
			outline = append(outline, &data.OutlineNode{Title: title, Page: len(images) - 1})
		}
	}

	if len(images) == 0 {
		return nil, nil, fmt.Errorf("no preview pages available for issue %s", issue.ID)
	}
	return images, outline, nil
}

// fetchImage downloads and decodes one page image. A body that does
// not decode counts as a failed attempt so truncated responses are
// retried like transport errors.
func (d *Downloader) fetchImage(page data.Page, src string) (data.PageImage, error) {
	body, contentType, err := d.source.GetImage(src)
	if err != nil {
		return data.PageImage{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return data.PageImage{}, fmt.Errorf("failed to decode page image: %w", err)
	}
	return data.PageImage{
		Page:   page,
		Data:   body,
		Width:  cfg.Width,
		Height: cfg.Height,
		Ext:    extFromContentType(contentType),
	}, nil
}

func extFromContentType(contentType string) string {
	ext := contentType
	if i := strings.Index(ext, "/"); i >= 0 {
		ext = ext[i+1:]
	}
	if i := strings.Index(ext, ";"); i >= 0 {
		ext = ext[:i]
	}
	ext = strings.TrimSpace(ext)
	if ext == "" || ext == "jpeg" {
		return "jpg"
	}
	return ext
}
