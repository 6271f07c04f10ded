// Package hashstore persists the domain to content-hash table used for
// change detection across reconcile ticks.
//
// The table lives in a single flat file on local storage private to the
// process. It does not survive a full restart unless that storage is
// externally persisted; a lost table only costs one full resync.
package hashstore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store maps serving domains to the content hash of the material most
// recently transferred for them. At most one record exists per domain.
//
// Store is not safe for concurrent use. The reconcile loop processes sources
// sequentially, so there is a single writer by construction.
type Store struct {
	path    string
	entries map[string]string
}

// Open loads the table at path, creating an empty table if the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]string),
	}

	f, err := os.Open(path) // #nosec G304 -- Path comes from controller configuration
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to open hash store %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			// Skip malformed lines rather than failing open; the affected
			// domain will simply be re-transferred.
			continue
		}
		s.entries[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hash store %s: %w", path, err)
	}

	return s, nil
}

// Lookup returns the stored hash for domain, if any.
func (s *Store) Lookup(domain string) (string, bool) {
	hash, ok := s.entries[domain]
	return hash, ok
}

// Commit records the hash for domain and rewrites the table on disk. The
// rewrite is crash-safe: the new table is written to a temporary file in the
// same directory and atomically renamed over the old one, so a partial write
// never corrupts existing records.
func (s *Store) Commit(domain, hash string) error {
	s.entries[domain] = hash

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create hash store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".hashes-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary hash store file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := s.write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary hash store file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set hash store permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace hash store %s: %w", s.path, err)
	}

	return nil
}

// Len returns the number of records in the table.
func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) write(f *os.File) error {
	domains := make([]string, 0, len(s.entries))
	for domain := range s.entries {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	w := bufio.NewWriter(f)
	for _, domain := range domains {
		if _, err := fmt.Fprintf(w, "%s %s\n", domain, s.entries[domain]); err != nil {
			return fmt.Errorf("failed to write hash store entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush hash store: %w", err)
	}
	return nil
}
