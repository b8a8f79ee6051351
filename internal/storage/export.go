package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

type exportRow struct {
	T   float64   `json:"t"`
	Y   []float64 `json:"y"`
	Plv float64   `json:"plv"`
	Pla float64   `json:"pla"`
	Prv float64   `json:"prv"`
	Pra float64   `json:"pra"`
	AoP float64   `json:"aop"`
	PAP float64   `json:"pap"`
}

type exportDoc struct {
	Meta    *RunMetadata `json:"metadata"`
	Columns []string     `json:"state_columns"`
	Rows    []exportRow  `json:"rows"`
}

// ExportJSON writes one run as a single indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, records []sim.Record) error {
	doc := exportDoc{
		Meta:    meta,
		Columns: circ.StateNames(),
		Rows:    make([]exportRow, 0, len(records)),
	}
	for _, r := range records {
		doc.Rows = append(doc.Rows, exportRow{
			T:   r.T,
			Y:   r.Y,
			Plv: r.Aux.Plv,
			Pla: r.Aux.Pla,
			Prv: r.Aux.Prv,
			Pra: r.Aux.Pra,
			AoP: r.Aux.AoP,
			PAP: r.Aux.PAP,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func ExportJSONStdout(meta *RunMetadata, records []sim.Record) error {
	return ExportJSON(os.Stdout, meta, records)
}
