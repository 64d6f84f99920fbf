package services

import (
	"errors"

	"github.com/nwatts/gbdl/pkg/data"
	"github.com/nwatts/gbdl/pkg/sources"
)

// Resolver expands an input URL into the list of issue URLs the
// selected download mode asks for.
type Resolver struct {
	source sources.Source
}

func NewResolver(source sources.Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns issue URLs in processing order. A full catalog walk
// keeps period buckets outer, issues within a bucket inner.
func (r *Resolver) Resolve(url string, mode data.DownloadMode) ([]string, error) {
	switch mode {
	case data.Single:
		if _, err := r.source.ResolveID(url); err != nil {
			return nil, &ResolutionError{URL: url, Err: err}
		}
		return []string{url}, nil

	case data.Period:
		urls, err := r.source.GetIssueURLs(url)
		if err != nil {
			return nil, &ResolutionError{URL: url, Err: err}
		}
		if len(urls) == 0 {
			return nil, &ResolutionError{URL: url, Err: errors.New("no issues listed for period")}
		}
		return urls, nil

	case data.Full:
		periods, err := r.source.GetPeriodURLs(url)
		if err != nil {
			return nil, &ResolutionError{URL: url, Err: err}
		}
		if len(periods) == 0 {
			return nil, &ResolutionError{URL: url, Err: errors.New("no periods listed in catalog")}
		}
		var all []string
		for _, period := range periods {
			urls, err := r.source.GetIssueURLs(period)
			if err != nil {
				return nil, &ResolutionError{URL: period, Err: err}
			}
			all = append(all, urls...)
		}
		if len(all) == 0 {
			return nil, &ResolutionError{URL: url, Err: errors.New("catalog periods list no issues")}
		}
		return all, nil
	}

	return nil, &ResolutionError{URL: url, Err: errors.New("unknown download mode")}
}
