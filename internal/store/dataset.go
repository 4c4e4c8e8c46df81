package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Dataset holds sampled input/output records from a single-input,
// single-output experiment at a fixed sample period.
type Dataset struct {
	Times   []float64
	Inputs  []float64
	Outputs []float64
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Times)
}

// SamplePeriod infers the sample period from the first two time stamps.
func (d *Dataset) SamplePeriod() float64 {
	if len(d.Times) < 2 {
		return 0
	}
	return d.Times[1] - d.Times[0]
}

// Split partitions the dataset at the given fraction into identification
// and validation halves, preserving order.
func (d *Dataset) Split(frac float64) (idSet, valSet *Dataset) {
	n := int(float64(d.Len()) * frac)
	if n < 0 {
		n = 0
	}
	if n > d.Len() {
		n = d.Len()
	}
	idSet = &Dataset{
		Times:   d.Times[:n],
		Inputs:  d.Inputs[:n],
		Outputs: d.Outputs[:n],
	}
	valSet = &Dataset{
		Times:   d.Times[n:],
		Inputs:  d.Inputs[n:],
		Outputs: d.Outputs[n:],
	}
	return idSet, valSet
}

// WriteCSV writes time/input/output columns with a header row.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"time", "u", "y"}); err != nil {
		return err
	}
	for i := range d.Times {
		row := []string{
			strconv.FormatFloat(d.Times[i], 'g', -1, 64),
			strconv.FormatFloat(d.Inputs[i], 'g', -1, 64),
			strconv.FormatFloat(d.Outputs[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a dataset written by WriteCSV. A header row is required.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store: reading csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("store: csv has no data rows")
	}
	if len(records[0]) < 3 {
		return nil, fmt.Errorf("store: csv needs time,u,y columns, got %d", len(records[0]))
	}

	d := &Dataset{
		Times:   make([]float64, 0, len(records)-1),
		Inputs:  make([]float64, 0, len(records)-1),
		Outputs: make([]float64, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		vals := make([]float64, 3)
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("store: row %d column %d: %w", i+2, j, err)
			}
			vals[j] = v
		}
		d.Times = append(d.Times, vals[0])
		d.Inputs = append(d.Inputs, vals[1])
		d.Outputs = append(d.Outputs, vals[2])
	}
	return d, nil
}

// SaveCSV writes the dataset to a file.
func (d *Dataset) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.WriteCSV(f)
}

// LoadCSV reads a dataset from a file.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
