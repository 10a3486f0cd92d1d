package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrNotFound is returned when no stored report matches an ID.
var ErrNotFound = errors.New("report not found")

// DiskStore writes reports as JSON files into one directory.
type DiskStore struct {
	fs afero.Fs

	mu    sync.Mutex
	dir   string
	ready bool
}

// NewDiskStore creates a DiskStore rooted at dir on fs. The directory is
// created on first use; an empty dir means a fresh temp directory.
func NewDiskStore(fs afero.Fs, dir string) *DiskStore {
	return &DiskStore{fs: fs, dir: dir}
}

// Save writes a report as a JSON file.
func (s *DiskStore) Save(r *Report) error {
	dir, err := s.ensureDir()
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("saving report: invalid id %q", r.ID)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling report %s: %w", r.ID, err)
	}
	path := filepath.Join(dir, r.ID+".json")
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", r.ID, err)
	}
	return nil
}

// Load reads a report by its full ID.
func (s *DiskStore) Load(id string) (*Report, error) {
	dir, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s.read(filepath.Join(dir, id+".json"))
}

// Find loads the single report whose ID starts with prefix.
func (s *DiskStore) Find(prefix string) (*Report, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	var match string
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if match != "" {
			return nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
		}
		match = id
	}
	if match == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	return s.Load(match)
}

// List returns every stored report, most recent first.
func (s *DiskStore) List() ([]*Report, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	reports := make([]*Report, 0, len(ids))
	for _, id := range ids {
		r, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	return reports, nil
}

// Dir returns the directory reports are written to, creating it if needed.
func (s *DiskStore) Dir() (string, error) {
	return s.ensureDir()
}

func (s *DiskStore) ids() ([]string, error) {
	dir, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

func (s *DiskStore) read(path string) (*Report, error) {
	id := strings.TrimSuffix(filepath.Base(path), ".json")
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading report %s: %w", id, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshalling report %s: %w", id, err)
	}
	// The file name is authoritative; hand-edited files may drop or change the id.
	r.ID = id
	return &r, nil
}

func (s *DiskStore) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return s.dir, nil
	}
	if s.dir == "" {
		dir, err := afero.TempDir(s.fs, "", "launcher-runs-")
		if err != nil {
			return "", fmt.Errorf("creating report directory: %w", err)
		}
		s.dir = dir
	} else if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	s.ready = true
	return s.dir, nil
}
