package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run      RunMetadata          `json:"run"`
	Times    []float64            `json:"times"`
	Counts   []int                `json:"counts"`
	Injected []int                `json:"injected"`
	Absorbed []int                `json:"absorbed"`
	Metrics  map[string][]float64 `json:"metrics"`
}

// ExportJSON writes the metadata and series of a stored run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:      *meta,
		Times:    series.Times,
		Counts:   series.Counts,
		Injected: series.Injected,
		Absorbed: series.Absorbed,
		Metrics:  series.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
