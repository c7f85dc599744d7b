package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/state-econ/internal/dataset"
)

// Storage handles persistence of dataset snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the resolved snapshot directory.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// snapshotPath returns the path to the snapshot file for a dataset name
func (s *Storage) snapshotPath(name string) string {
	safe := dataset.Slug(name)
	if safe == "" {
		safe = "dataset"
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", safe))
}

// LoadSnapshot loads a snapshot from disk. A dataset that was never saved
// yields an empty snapshot.
func (s *Storage) LoadSnapshot(name string) (*dataset.Snapshot, error) {
	path := s.snapshotPath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dataset.NewSnapshot(name), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot dataset.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Rows == nil {
		snapshot.Rows = make(map[string][]string)
	}
	if snapshot.KeyIndex == nil {
		snapshot.KeyIndex = make(map[string]string)
	}

	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk
func (s *Storage) SaveSnapshot(snapshot *dataset.Snapshot) error {
	path := s.snapshotPath(snapshot.Name)

	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// SaveDataset snapshots d and saves it under d.Name
func (s *Storage) SaveDataset(d *dataset.Dataset) error {
	snapshot := dataset.CreateSnapshot(d, time.Now().UTC().Format(time.RFC3339))
	return s.SaveSnapshot(snapshot)
}

// GetRow retrieves a row by its key from the named dataset's snapshot
func (s *Storage) GetRow(name, key string) ([]string, error) {
	snapshot, err := s.LoadSnapshot(name)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if id, ok := snapshot.KeyIndex[key]; ok {
		if row, ok := snapshot.Rows[id]; ok {
			return row, nil
		}
	}

	return nil, fmt.Errorf("row not found: %s", key)
}
