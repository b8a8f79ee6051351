// Package storage persists finished simulation runs: a metadata document
// per run plus the sampled waveforms as CSV, laid out one directory per
// run under a base directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
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
	ID         string             `json:"id"`
	Subject    string             `json:"subject"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	DurationMs float64            `json:"duration_ms"`
	Params     map[string]float64 `json:"params"`
	Summary    map[string]float64 `json:"summary"`
}

var auxNames = []string{"plv", "pla", "prv", "pra", "aop", "pap"}

// SaveRun writes one run directory: metadata.json plus outputs.csv with a
// time column, the twelve state columns, and the six sampled pressures.
func (s *Store) SaveRun(subject, preset string, params circ.Params, summary map[string]float64, records []sim.Record) (string, error) {
	runID := fmt.Sprintf("%s_%d", subject, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	durationMs := 0.0
	if len(records) > 0 {
		durationMs = records[len(records)-1].T - records[0].T
	}

	meta := RunMetadata{
		ID:         runID,
		Subject:    subject,
		Preset:     preset,
		Timestamp:  time.Now(),
		DurationMs: durationMs,
		Params:     params.Map(),
		Summary:    summary,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "outputs.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := append([]string{"time"}, circ.StateNames()...)
	header = append(header, auxNames...)
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(r.T, 'f', 6, 64))
		for _, v := range r.Y {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range []float64{r.Aux.Plv, r.Aux.Pla, r.Aux.Prv, r.Aux.Pra, r.Aux.AoP, r.Aux.PAP} {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadRecords reads a run's sampled waveforms back. Malformed rows are
// skipped rather than failing the whole load.
func (s *Store) LoadRecords(runID string) ([]sim.Record, error) {
	csvPath := filepath.Join(s.baseDir, runID, "outputs.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []sim.Record{}, nil
	}

	wantFields := 1 + circ.StateDim + len(auxNames)
	records := make([]sim.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != wantFields {
			continue
		}
		vals := make([]float64, 0, wantFields)
		ok := true
		for _, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals = append(vals, v)
		}
		if !ok {
			continue
		}

		rec := sim.Record{
			T: vals[0],
			Y: circ.State(vals[1 : 1+circ.StateDim]).Clone(),
		}
		aux := vals[1+circ.StateDim:]
		rec.Aux = circ.Aux{
			Plv: aux[0], Pla: aux[1], Prv: aux[2],
			Pra: aux[3], AoP: aux[4], PAP: aux[5],
		}
		records = append(records, rec)
	}

	return records, nil
}
