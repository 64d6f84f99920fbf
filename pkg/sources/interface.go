package sources

import (
	"github.com/nwatts/gbdl/pkg/data"
)

// Source abstracts the remote document viewer. The pipeline processes
// issues strictly one at a time through it; a concurrent implementation
// can be substituted later without touching the pipeline or the
// assemblers, as long as page order is preserved.
type Source interface {
	// ResolveID derives the opaque issue ID from a user-supplied URL.
	ResolveID(url string) (string, error)

	// GetIssue fetches an issue's informational page and returns its
	// metadata plus the table of contents as a pid → title lookup.
	GetIssue(id string) (*data.Issue, map[string]string, error)

	// GetPages fetches the issue's page listing and returns the ordered
	// page sequence plus any image source URLs already included in the
	// listing, keyed by pid.
	GetPages(id string) ([]data.Page, map[string]string, error)

	// GetPageSources fetches the listing entry for one page and returns
	// every image source URL it carries (the requested page and usually
	// its neighbours), keyed by pid.
	GetPageSources(id, firstPID, pid string) (map[string]string, error)

	// GetImage downloads one page image at the highest available
	// resolution and returns the bytes and the response Content-Type.
	GetImage(src string) ([]byte, string, error)

	// GetPeriodURLs returns the catalog's period bucket URLs advertised
	// on the page at url, in catalog order.
	GetPeriodURLs(url string) ([]string, error)

	// GetIssueURLs returns the URLs of all issues in the period shown
	// at url, in display order.
	GetIssueURLs(url string) ([]string, error)
}
