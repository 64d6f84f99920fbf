// Package archive tracks which issues have already been downloaded.
//
// The ledger is a plain text file with one issue ID per line. It is
// loaded once at startup and appended to after every completed issue,
// so an interrupted run only ever loses the in-flight issue.
package archive

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
)

// Ledger is the persisted set of completed issue IDs. A Ledger with an
// empty path keeps the set in memory only.
type Ledger struct {
	path string
	ids  map[string]struct{}
}

// Load reads the ledger file at path. A missing file yields an empty
// ledger. Lines that do not look like a single issue ID are skipped
// with a warning.
func Load(path string) (*Ledger, error) {
	l := &Ledger{path: path, ids: make(map[string]struct{})}
	if path == "" {
		return l, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.ContainsAny(line, " \t") {
			log.Printf("archive %s: skipping malformed line %d", path, lineNo)
			continue
		}
		l.ids[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}
	return l, nil
}

// Contains reports whether id has already been completed.
func (l *Ledger) Contains(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Len returns the number of completed issues.
func (l *Ledger) Len() int {
	return len(l.ids)
}

// Record marks id as completed and appends it durably to the backing
// file before returning, so the entry survives a crash during the next
// issue.
func (l *Ledger) Record(id string) error {
	if l.Contains(id) {
		return nil
	}
	if l.path != "" {
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open archive file: %w", err)
		}
		defer f.Close()
		if _, err := fmt.Fprintln(f, id); err != nil {
			return fmt.Errorf("failed to append to archive file: %w", err)
		}
		if err := f.Sync(); err != nil {
			return fmt.Errorf("failed to flush archive file: %w", err)
		}
	}
	l.ids[id] = struct{}{}
	return nil
}
