package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return errors.Wrap(os.MkdirAll(s.baseDir, 0755), "create data directory")
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Label       string             `json:"label,omitempty"`
	Model       string             `json:"model"`
	Method      string             `json:"method"`
	Timestamp   time.Time          `json:"timestamp"`
	T0          float64            `json:"t0"`
	T1          float64            `json:"t1"`
	Points      int                `json:"points"`
	Order       int                `json:"order"`
	InitState   []float64          `json:"init_state"`
	Params      map[string]float64 `json:"params,omitempty"`
	Steps       int                `json:"steps"`
	Evaluations int                `json:"evaluations"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewMetadata fills the fields derived from traj. Model, Method and Params
// are left to the caller. Non-finite metric values are dropped since JSON
// cannot represent them.
func NewMetadata(traj *dynamo.Trajectory) RunMetadata {
	meta := RunMetadata{
		Points:      traj.Len(),
		Order:       traj.Order,
		Steps:       traj.Stats.Steps,
		Evaluations: traj.Stats.Evaluations,
		Metrics:     make(map[string]float64, len(traj.Metrics)),
	}
	for name, v := range traj.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			meta.Metrics[name] = v
		}
	}
	if traj.Len() > 0 {
		meta.T0 = traj.Times[0]
		meta.T1 = traj.Times[traj.Len()-1]
		meta.InitState = traj.Row(0).Clone()
	}
	return meta
}

// Save writes meta and traj to a fresh run directory and returns the run ID.
func (s *Store) Save(meta RunMetadata, traj *dynamo.Trajectory) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	var runID, runDir string
	for stamp := now.UnixNano(); ; stamp++ {
		runID = fmt.Sprintf("%s_%d", meta.Model, stamp)
		runDir = filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", errors.Wrap(err, "create run directory")
		}
	}

	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", errors.Wrap(err, "create metadata")
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", errors.Wrap(err, "encode metadata")
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", errors.Wrap(err, "create states")
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, traj.Times, traj.States); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, errors.Wrap(err, "list runs")
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

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "load run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", runID)
	}

	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([]dynamo.State, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load states %s", runID)
	}
	defer file.Close()

	times, states, err := ReadCSV(file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "run %s", runID)
	}
	return states, times, nil
}

// LoadTrajectory rebuilds the stored trajectory of runID, statistics and
// metrics included.
func (s *Store) LoadTrajectory(runID string) (*RunMetadata, *dynamo.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	traj := &dynamo.Trajectory{
		Times:   times,
		States:  states,
		Order:   meta.Order,
		Stats:   dynamo.Statistics{Steps: meta.Steps, Evaluations: meta.Evaluations},
		Metrics: meta.Metrics,
	}
	return meta, traj, nil
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs stored")
	}
	return runs[len(runs)-1].ID, nil
}
