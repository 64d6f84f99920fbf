package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nwatts/gbdl/pkg/archive"
	"github.com/nwatts/gbdl/pkg/data"
	"github.com/nwatts/gbdl/pkg/integrations"
	"github.com/nwatts/gbdl/pkg/sources"
)

// Options configure one pipeline run.
type Options struct {
	TargetDir   string
	KeepImages  bool
	Formats     data.FormatFlags
	MaxAttempts int
}

// IssueStatus is the terminal state of one issue within a run.
type IssueStatus int

const (
	StatusCompleted IssueStatus = iota
	StatusSkipped
	StatusFailed
)

func (s IssueStatus) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

type IssueResult struct {
	URL    string
	ID     string
	Title  string
	Status IssueStatus
	Err    error
}

// RunSummary aggregates the terminal state of every issue in a run.
type RunSummary struct {
	Results []IssueResult
}

func (s *RunSummary) count(status IssueStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

func (s *RunSummary) Completed() int { return s.count(StatusCompleted) }
func (s *RunSummary) Skipped() int   { return s.count(StatusSkipped) }
func (s *RunSummary) Failed() int    { return s.count(StatusFailed) }

// Pipeline drives a batch end to end: resolve the input URL into
// issues, then download, assemble, and record each one.
type Pipeline struct {
	source     sources.Source
	resolver   *Resolver
	downloader *Downloader
	ledger     *archive.Ledger
	catalog    *data.Catalog
	opts       Options
}

func NewPipeline(source sources.Source, ledger *archive.Ledger, catalog *data.Catalog, opts Options) *Pipeline {
	return &Pipeline{
		source:     source,
		resolver:   NewResolver(source),
		downloader: NewDownloader(source, opts.MaxAttempts),
		ledger:     ledger,
		catalog:    catalog,
		opts:       opts,
	}
}

// Progress exposes the downloader's update stream; it closes when Run
// returns.
func (p *Pipeline) Progress() <-chan Progress {
	return p.downloader.Progress()
}

// Run resolves url into issues and processes each to a terminal state.
// Only a resolution failure returns an error; a failed issue is logged,
// folded into the summary, and the batch moves on.
func (p *Pipeline) Run(url string, mode data.DownloadMode) (*RunSummary, error) {
	defer p.downloader.Close()

	urls, err := p.resolver.Resolve(url, mode)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{}
	for _, issueURL := range urls {
		result := p.processIssue(issueURL)
		if result.Status == StatusFailed {
			log.Printf("issue %s failed: %v", issueURL, result.Err)
		}
		summary.Results = append(summary.Results, result)
	}
	return summary, nil
}

func (p *Pipeline) processIssue(issueURL string) IssueResult {
	result := IssueResult{URL: issueURL}

	id, err := p.source.ResolveID(issueURL)
	if err != nil {
		return p.failed(result, err)
	}
	result.ID = id

	if p.ledger.Contains(id) {
		result.Status = StatusSkipped
		return result
	}

	p.downloader.publish(Progress{IssueID: id, Status: StatusIdentifying})

	issue, toc, err := p.source.GetIssue(id)
	if err != nil {
		return p.failed(result, fmt.Errorf("failed to identify issue: %w", err))
	}
	result.Title = issue.FullTitle()

	// Periodicals group under a per-series directory.
	destDir := p.opts.TargetDir
	if issue.Type.Periodical() {
		destDir = filepath.Join(destDir, data.SanitizeFilename(issue.SeriesName))
	}
	stagingDir := filepath.Join(destDir, issue.CombinedID())

	// Outputs already on disk are not rebuilt.
	var pending []pendingOutput
	for _, asm := range integrations.ForFormats(p.opts.Formats) {
		dest := filepath.Join(destDir, issue.CombinedID()+asm.Extension())
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		pending = append(pending, pendingOutput{assembler: asm, dest: dest})
	}

	stagingExists := false
	if fi, err := os.Stat(stagingDir); err == nil && fi.IsDir() {
		stagingExists = true
	}

	if len(pending) == 0 && !(p.opts.KeepImages && !stagingExists) {
		result.Status = StatusSkipped
		return result
	}

	images, outline, err := p.downloader.FetchPages(issue, toc)
	if err != nil {
		return p.failed(result, err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return p.failed(result, fmt.Errorf("failed to create target directory: %w", err))
	}

	if p.opts.KeepImages {
		if err := os.MkdirAll(stagingDir, 0755); err != nil {
			return p.failed(result, fmt.Errorf("failed to create staging directory: %w", err))
		}
		for _, img := range images {
			path := filepath.Join(stagingDir, img.Filename())
			if err := os.WriteFile(path, img.Data, 0644); err != nil {
				return p.failed(result, fmt.Errorf("failed to stage page image: %w", err))
			}
		}
	}

	p.downloader.publish(Progress{
		IssueID:    id,
		Title:      issue.FullTitle(),
		TotalPages: len(images),
		Status:     StatusAssembling,
	})

	for _, out := range pending {
		if err := out.assembler.Assemble(issue, images, outline, out.dest); err != nil {
			return p.failed(result, err)
		}
	}

	if err := p.ledger.Record(id); err != nil {
		return p.failed(result, fmt.Errorf("failed to record issue in archive: %w", err))
	}
	if p.catalog != nil {
		if err := p.catalog.Save(issue); err != nil {
			log.Printf("failed to catalog issue %s: %v", id, err)
		}
	}

	p.downloader.publish(Progress{IssueID: id, Title: issue.FullTitle(), Status: StatusComplete})
	result.Status = StatusCompleted
	return result
}

func (p *Pipeline) failed(result IssueResult, err error) IssueResult {
	result.Status = StatusFailed
	result.Err = err
	p.downloader.publish(Progress{
		IssueID: result.ID,
		Title:   result.Title,
		Status:  StatusError,
		Err:     err,
	})
	return result
}

type pendingOutput struct {
	assembler integrations.Assembler
	dest      string
}
