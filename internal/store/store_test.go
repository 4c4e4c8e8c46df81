package store

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"
)

func sampleDataset() *Dataset {
	d := &Dataset{}
	for i := 0; i < 100; i++ {
		t := float64(i) * 0.01
		d.Times = append(d.Times, t)
		d.Inputs = append(d.Inputs, 1.0)
		d.Outputs = append(d.Outputs, math.Sin(t))
	}
	return d
}

func TestCSVRoundTrip(t *testing.T) {
	d := sampleDataset()

	var buf bytes.Buffer
	if err := d.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Len() != d.Len() {
		t.Fatalf("expected %d samples, got %d", d.Len(), got.Len())
	}
	for i := range d.Times {
		if math.Abs(got.Times[i]-d.Times[i]) > 1e-12 {
			t.Fatalf("time %d: got %g want %g", i, got.Times[i], d.Times[i])
		}
		if math.Abs(got.Outputs[i]-d.Outputs[i]) > 1e-12 {
			t.Fatalf("output %d: got %g want %g", i, got.Outputs[i], d.Outputs[i])
		}
	}
}

func TestReadCSVRejectsGarbage(t *testing.T) {
	if _, err := ReadCSV(bytes.NewBufferString("time,u,y\nfoo,bar,baz\n")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := ReadCSV(bytes.NewBufferString("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestSplit(t *testing.T) {
	d := sampleDataset()
	idSet, valSet := d.Split(0.6)
	if idSet.Len() != 60 || valSet.Len() != 40 {
		t.Errorf("expected 60/40 split, got %d/%d", idSet.Len(), valSet.Len())
	}
	if valSet.Times[0] <= idSet.Times[idSet.Len()-1] {
		t.Error("validation set must follow identification set in time")
	}
}

func TestSamplePeriod(t *testing.T) {
	d := sampleDataset()
	if math.Abs(d.SamplePeriod()-0.01) > 1e-12 {
		t.Errorf("expected ts 0.01, got %g", d.SamplePeriod())
	}
}

func TestStoreSaveList(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	meta := RunMetadata{Model: "motor_speed", Ts: 0.01, Duration: 1.0, Signal: "prbs"}
	id, err := s.Save(meta, sampleDataset())
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Fatalf("expected saved run in listing, got %+v", runs)
	}

	data, err := s.LoadData(id)
	if err != nil {
		t.Fatal(err)
	}
	if data.Len() != 100 {
		t.Errorf("expected 100 samples, got %d", data.Len())
	}

	if _, err := filepath.Glob(filepath.Join(dir, id, "*.csv")); err != nil {
		t.Fatal(err)
	}
}
