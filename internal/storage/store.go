package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
	"github.com/san-kum/coldsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	particlesFile = "particles.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Scenario      string             `json:"scenario"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	Steps         int                `json:"steps"`
	FinalPtcls    int                `json:"final_ptcls"`
	TotalInjected int                `json:"total_injected"`
	TotalAbsorbed int                `json:"total_absorbed"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Series is the per step record of a stored run.
type Series struct {
	Times    []float64
	Counts   []int
	Injected []int
	Absorbed []int
	Metrics  map[string][]float64
}

// Save writes a run directory holding the metadata, the per step series
// and the final particle state, and returns the run id.
func (s *Store) Save(meta RunMetadata, result *sim.Result, final *particles.Ensemble) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("%s_%d", sanitize(meta.Scenario), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.TotalInjected = result.TotalInjected
	meta.TotalAbsorbed = result.TotalAbsorbed
	meta.Metrics = result.Metrics
	if final != nil {
		meta.FinalPtcls = final.NumPtcls()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if final != nil {
		if err := writeParticles(filepath.Join(runDir, particlesFile), final); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func sanitize(name string) string {
	if name == "" {
		return "run"
	}
	out := []rune(name)
	for i, r := range out {
		if r == '/' || r == ' ' || r == filepath.Separator {
			out[i] = '-'
		}
	}
	return string(out)
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

func metricNames(result *sim.Result) []string {
	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := metricNames(result)
	header := append([]string{"time", "count", "injected", "absorbed"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.Times {
		row := []string{
			formatFloat(result.Times[i]),
			strconv.Itoa(result.Counts[i]),
			strconv.Itoa(result.Injected[i]),
			strconv.Itoa(result.Absorbed[i]),
		}
		for _, name := range names {
			vals := result.Series[name]
			if i < len(vals) {
				row = append(row, formatFloat(vals[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeParticles(path string, e *particles.Ensemble) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	x, v := e.Positions(), e.Velocities()
	for i := range x {
		row := []string{
			formatFloat(x[i].X), formatFloat(x[i].Y), formatFloat(x[i].Z),
			formatFloat(v[i].X), formatFloat(v[i].Y), formatFloat(v[i].Z),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

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

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}

	series := &Series{Metrics: make(map[string][]float64)}
	if len(records) < 2 {
		return series, nil
	}

	header := records[0]
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 {
			return nil, fmt.Errorf("%s line %d: want at least 4 fields, got %d", seriesFile, i+1, len(rec))
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", seriesFile, i+1, err)
		}
		ints := make([]int, 3)
		for j := range ints {
			if ints[j], err = strconv.Atoi(rec[j+1]); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", seriesFile, i+1, err)
			}
		}
		series.Times = append(series.Times, t)
		series.Counts = append(series.Counts, ints[0])
		series.Injected = append(series.Injected, ints[1])
		series.Absorbed = append(series.Absorbed, ints[2])

		for j := 4; j < len(rec) && j < len(header); j++ {
			val, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				continue
			}
			series.Metrics[header[j]] = append(series.Metrics[header[j]], val)
		}
	}
	return series, nil
}

// LoadParticles reads the final particle state of a run into a new
// ensemble.
func (s *Store) LoadParticles(runID string) (*particles.Ensemble, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return particles.NewEnsemble(0), nil
	}

	e := particles.NewEnsemble(len(records) - 1)
	x, v := e.Positions(), e.Velocities()
	for i, rec := range records[1:] {
		if len(rec) != 6 {
			return nil, fmt.Errorf("%s line %d: want 6 fields, got %d", particlesFile, i+2, len(rec))
		}
		var vals [6]float64
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", particlesFile, i+2, err)
			}
		}
		x[i] = r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}
		v[i] = r3.Vec{X: vals[3], Y: vals[4], Z: vals[5]}
	}
	return e, nil
}
