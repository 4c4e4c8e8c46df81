package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store manages run directories under a base data directory. Each run
// holds metadata.json plus samples.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Ts         float64            `json:"ts"`
	Duration   float64            `json:"duration"`
	Signal     string             `json:"signal"`
	Controller string             `json:"controller"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, data *Dataset) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().UnixNano())
	meta.ID = runID
	meta.Timestamp = time.Now()

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if data != nil {
		if err := data.SaveCSV(filepath.Join(runDir, "samples.csv")); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// List returns run metadata sorted newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Load reads the metadata for a run.
func (s *Store) Load(runID string) (RunMetadata, error) {
	var meta RunMetadata
	f, err := os.Open(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, fmt.Errorf("store: run %s: %w", runID, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return meta, fmt.Errorf("store: run %s: %w", runID, err)
	}
	return meta, nil
}

// LoadData reads the sampled data for a run.
func (s *Store) LoadData(runID string) (*Dataset, error) {
	return LoadCSV(filepath.Join(s.baseDir, runID, "samples.csv"))
}
