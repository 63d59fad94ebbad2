package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// WriteCSV writes a header row "time,y0,...,yN" followed by one record per
// row. Values use the shortest representation that round-trips.
func WriteCSV(w io.Writer, times []float64, states []dynamo.State) error {
	if len(times) != len(states) {
		return fmt.Errorf("%d times for %d states", len(times), len(states))
	}

	cw := csv.NewWriter(w)

	order := 0
	if len(states) > 0 {
		order = len(states[0])
	}

	header := []string{"time"}
	for i := 0; i < order; i++ {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for i := range states {
		row := make([]string, 0, len(states[i])+1)
		row = append(row, strconv.FormatFloat(times[i], 'g', -1, 64))
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// ReadCSV parses the format produced by WriteCSV.
func ReadCSV(r io.Reader) ([]float64, []dynamo.State, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "read csv")
	}

	if len(records) < 2 {
		return []float64{}, []dynamo.State{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d: time", i+1)
		}
		times = append(times, t)

		state := make(dynamo.State, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "line %d: column %d", i+1, j)
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return times, states, nil
}

type jsonRun struct {
	Metadata *RunMetadata   `json:"metadata,omitempty"`
	Times    []float64      `json:"times"`
	States   []dynamo.State `json:"states"`
}

// ExportJSON writes meta and the trajectory rows as one indented document.
func ExportJSON(w io.Writer, meta *RunMetadata, times []float64, states []dynamo.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(jsonRun{Metadata: meta, Times: times, States: states}), "encode json")
}
