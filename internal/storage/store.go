// Package storage keeps completed runs on disk: one directory per run
// holding metadata.json, the aircraft configuration and samples.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/aerotwin/internal/config"
	"github.com/san-kum/aerotwin/internal/sim"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrAmbiguousRun = errors.New("storage: run reference is ambiguous")
)

const (
	metadataFile = "metadata.json"
	configFile   = "aircraft.yaml"
	samplesFile  = "samples.csv"
)

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
	ID          string             `json:"id"`
	Aircraft    string             `json:"aircraft"`
	Description string             `json:"description,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Channels    []string           `json:"channels"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its ID.
func (s *Store) Save(cfg *config.Aircraft, result *sim.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Aircraft:    cfg.Name,
		Description: cfg.Description,
		Timestamp:   time.Now(),
		Dt:          cfg.Dt.Seconds(),
		Duration:    cfg.Duration.Seconds(),
		Steps:       result.StepsTaken,
		Channels:    result.Channels,
		Metrics:     result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSamples(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, result.Channels...)); err != nil {
		return err
	}

	row := make([]string, len(result.Channels)+1)
	for i, sample := range result.Samples {
		row[0] = strconv.FormatFloat(result.Times[i].Seconds(), 'f', 6, 64)
		for j, v := range sample {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// Resolve expands a unique ID prefix to a full run ID.
func (s *Store) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", ErrRunNotFound
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRunNotFound, ref)
		}
		return "", err
	}

	var match string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ref) {
			continue
		}
		if entry.Name() == ref {
			return ref, nil
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousRun, ref)
		}
		match = entry.Name()
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, ref)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadConfig returns the aircraft configuration the run was made with.
func (s *Store) LoadConfig(runID string) (*config.Aircraft, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadResult reads samples back into a sim.Result carrying the stored
// metrics.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	result := &sim.Result{Metrics: meta.Metrics, StepsTaken: meta.Steps}
	if len(records) == 0 {
		return result, nil
	}
	result.Channels = records[0][1:]

	for line, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", samplesFile, line+2, err)
		}
		sample := make(sim.Sample, len(record)-1)
		for j, field := range record[1:] {
			if sample[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", samplesFile, line+2, err)
			}
		}
		result.Times = append(result.Times, time.Duration(t*float64(time.Second)).Round(time.Microsecond))
		result.Samples = append(result.Samples, sample)
	}

	return result, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}
