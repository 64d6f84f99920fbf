package data

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS issues (
	id             VARCHAR PRIMARY KEY,
	url            VARCHAR,
	series_name    VARCHAR,
	publish_date   VARCHAR,
	volume         VARCHAR,
	issn           VARCHAR,
	publisher      VARCHAR,
	description    VARCHAR,
	author         VARCHAR,
	length         INTEGER,
	date_digitized VARCHAR,
	orig_from      VARCHAR,
	content_type   INTEGER
)`

// Catalog stores the metadata of completed issues in a DuckDB file, so
// past downloads can be listed without re-scraping anything.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) the catalog at path. An empty path
// opens an in-memory database.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Save upserts one issue's metadata.
func (c *Catalog) Save(issue *Issue) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO issues
		(id, url, series_name, publish_date, volume, issn, publisher,
		 description, author, length, date_digitized, orig_from, content_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.ID, issue.URL, issue.SeriesName, issue.PublishDate,
		issue.Volume, issue.ISSN, issue.Publisher, issue.Description,
		issue.Author, issue.Length, issue.DateDigitized, issue.OrigFrom,
		int(issue.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to save issue %s: %w", issue.ID, err)
	}
	return nil
}

// List returns all cataloged issues ordered by series and date.
func (c *Catalog) List() ([]*Issue, error) {
	rows, err := c.db.Query(`
		SELECT id, url, series_name, publish_date, volume, issn, publisher,
		       description, author, length, date_digitized, orig_from, content_type
		FROM issues ORDER BY series_name, publish_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*Issue
	for rows.Next() {
		var issue Issue
		var contentType int
		if err := rows.Scan(
			&issue.ID, &issue.URL, &issue.SeriesName, &issue.PublishDate,
			&issue.Volume, &issue.ISSN, &issue.Publisher, &issue.Description,
			&issue.Author, &issue.Length, &issue.DateDigitized, &issue.OrigFrom,
			&contentType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		issue.Type = ContentType(contentType)
		issues = append(issues, &issue)
	}
	return issues, rows.Err()
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}
