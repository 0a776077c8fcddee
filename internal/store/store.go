// Package store persists the matching corpus as plain JSON files under a
// single data directory. It is deliberately simple: one file per collection,
// rewritten atomically on every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Pedro004-dot/alicit/internal/matching"
)

const (
	companiesFile = "companies.json"
	bidsFile      = "bids.json"
	matchesFile   = "matches.json"
	processedFile = "processed.json"
)

// Bid processing statuses.
const (
	StatusCollected = "collected"
	StatusMatched   = "matched"
	StatusNoMatch   = "no_match"
	StatusFailed    = "failed"
)

// BidRecord wraps a bid with its collection metadata. The bid itself is
// immutable; only Status advances.
type BidRecord struct {
	matching.Bid

	Status      string    `json:"status"`
	CollectedAt time.Time `json:"collected_at"`
}

// matchRecord adds the emission timestamp to a persisted match.
type matchRecord struct {
	matching.Match

	MatchedAt time.Time `json:"matched_at"`
}

// FileStore is the JSON-file corpus store. All methods rewrite whole files;
// the corpus is small enough (hundreds of bids per day) that this is the
// simplest correct option.
type FileStore struct {
	dir    string
	logger *zap.Logger

	now func() time.Time
}

// New opens (and creates, if needed) a file store rooted at dir.
func New(dir string, log *zap.Logger) (*FileStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: log, now: time.Now}, nil
}

// Companies loads the registered company profiles. A missing file is an
// empty corpus, not an error.
func (s *FileStore) Companies() ([]matching.Company, error) {
	var companies []matching.Company
	if err := s.read(companiesFile, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// SaveCompanies replaces the company corpus.
func (s *FileStore) SaveCompanies(companies []matching.Company) error {
	return s.write(companiesFile, companies)
}

// Bids returns all stored bids, without their collection metadata.
func (s *FileStore) Bids() ([]matching.Bid, error) {
	records, err := s.BidRecords()
	if err != nil {
		return nil, err
	}
	bids := make([]matching.Bid, 0, len(records))
	for _, r := range records {
		bids = append(bids, r.Bid)
	}
	return bids, nil
}

// BidRecords returns stored bids with their status metadata.
func (s *FileStore) BidRecords() ([]BidRecord, error) {
	var records []BidRecord
	if err := s.read(bidsFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AppendBids stores newly collected bids with collected status. Bids whose
// ID is already present are ignored, so re-fetching a day is idempotent.
func (s *FileStore) AppendBids(bids []matching.Bid) error {
	records, err := s.BidRecords()
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(records))
	for _, r := range records {
		known[r.ID] = struct{}{}
	}

	added := 0
	for _, bid := range bids {
		if _, dup := known[bid.ID]; dup {
			continue
		}
		known[bid.ID] = struct{}{}
		records = append(records, BidRecord{
			Bid:         bid,
			Status:      StatusCollected,
			CollectedAt: s.now().UTC(),
		})
		added++
	}

	if added == 0 {
		return nil
	}

	s.logger.Debug("appending bids to store", zap.Int("added", added), zap.Int("total", len(records)))
	return s.write(bidsFile, records)
}

// SetBidStatus advances the status of one stored bid.
func (s *FileStore) SetBidStatus(bidID, status string) error {
	records, err := s.BidRecords()
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID == bidID {
			records[i].Status = status
			return s.write(bidsFile, records)
		}
	}

	return fmt.Errorf("bid %q not found in store", bidID)
}

// Matches returns all persisted matches.
func (s *FileStore) Matches() ([]matching.Match, error) {
	var records []matchRecord
	if err := s.read(matchesFile, &records); err != nil {
		return nil, err
	}
	matches := make([]matching.Match, 0, len(records))
	for _, r := range records {
		matches = append(matches, r.Match)
	}
	return matches, nil
}

// SaveMatches appends emitted matches to the store.
func (s *FileStore) SaveMatches(matches []matching.Match) error {
	var records []matchRecord
	if err := s.read(matchesFile, &records); err != nil {
		return err
	}

	at := s.now().UTC()
	for _, m := range matches {
		records = append(records, matchRecord{Match: m, MatchedAt: at})
	}

	return s.write(matchesFile, records)
}

// ClearMatches removes every persisted match in one step. The rewrite is
// atomic: either the old set survives intact or the file is empty.
func (s *FileStore) ClearMatches() error {
	return s.write(matchesFile, []matchRecord{})
}

// ProcessedIDs returns the set of bid IDs already evaluated in past runs.
func (s *FileStore) ProcessedIDs() (map[string]struct{}, error) {
	var ids []string
	if err := s.read(processedFile, &ids); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// MarkProcessed records bid IDs as evaluated. Already-recorded IDs are kept
// once.
func (s *FileStore) MarkProcessed(ids []string) error {
	var all []string
	if err := s.read(processedFile, &all); err != nil {
		return err
	}

	existing := make(map[string]struct{}, len(all))
	for _, id := range all {
		existing[id] = struct{}{}
	}

	for _, id := range ids {
		if _, dup := existing[id]; dup {
			continue
		}
		existing[id] = struct{}{}
		all = append(all, id)
	}

	return s.write(processedFile, all)
}

// SaveChecklist writes the participation checklist of one bid under
// checklists/<bid-id>.json.
func (s *FileStore) SaveChecklist(bidID string, checklist any) error {
	dir := filepath.Join(s.dir, "checklists")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating checklist directory: %w", err)
	}

	// Control numbers carry slashes ("...-1-000001/2025").
	name := strings.ReplaceAll(bidID, "/", "-") + ".json"
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating checklist file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(checklist); err != nil {
		return fmt.Errorf("encoding checklist: %w", err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) read(name string, out any) error {
	file, err := os.Open(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stating %s: %w", name, err)
	}
	if stat.Size() == 0 {
		return nil
	}

	if err := json.NewDecoder(file).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// write replaces a collection file via a temp-file rename so a crash never
// leaves a half-written corpus behind.
func (s *FileStore) write(name string, in any) error {
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
