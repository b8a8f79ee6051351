package analysis

import (
	"math"
	"testing"

	"github.com/g960059/hemosim/internal/sim"
)

func TestPowerSpectrumDegenerateInput(t *testing.T) {
	if s := PowerSpectrum(nil, 500); len(s.Freqs) != 0 {
		t.Error("nil samples should produce an empty spectrum")
	}
	if s := PowerSpectrum([]float64{1}, 500); len(s.Freqs) != 0 {
		t.Error("a single sample should produce an empty spectrum")
	}
	if s := PowerSpectrum([]float64{1, 2, 3}, 0); len(s.Freqs) != 0 {
		t.Error("zero sample rate should produce an empty spectrum")
	}
}

func TestPowerSpectrumFindsSineFrequency(t *testing.T) {
	// 16 full cycles of a 1 Hz sine, sampled at 500 Hz, on a large
	// offset. The frequency lands exactly on bin 16.
	samples := make([]float64, 8000)
	for i := range samples {
		tc := float64(i) * 2.0
		samples[i] = 90 + 20*math.Sin(2*math.Pi*tc/1000.0)
	}

	s := PowerSpectrum(samples, 500)
	if len(s.Freqs) != 4000 {
		t.Fatalf("expected 4000 single-sided bins, got %d", len(s.Freqs))
	}
	if hz := s.DominantHz(); math.Abs(hz-1.0) > 1e-9 {
		t.Errorf("dominant frequency %f, want 1.0", hz)
	}
}

func TestDominantHzSkipsDC(t *testing.T) {
	s := Spectrum{
		Freqs: []float64{0, 1, 2},
		Power: []float64{100, 5, 1},
	}
	if hz := s.DominantHz(); hz != 1 {
		t.Errorf("DC leaked through, got %f", hz)
	}
}

func TestEstimatedRateOfSyntheticPressure(t *testing.T) {
	// One synthetic beat per second in the aortic trace.
	var records []sim.Record
	for i := 0; i < 8000; i++ {
		tc := float64(i) * sim.StepMs
		aop := 90 + 20*math.Sin(2*math.Pi*tc/1000.0)
		records = append(records, record(tc, 0, aop, 0))
	}

	bpm, ok := EstimatedRate(records)
	if !ok {
		t.Fatal("expected an estimate from 16 s of samples")
	}
	if math.Abs(bpm-60) > 1e-6 {
		t.Errorf("estimated %f bpm, want 60", bpm)
	}
}

func TestEstimatedRateNeedsEnoughRecords(t *testing.T) {
	var records []sim.Record
	for i := 0; i < 1023; i++ {
		records = append(records, record(float64(i)*sim.StepMs, 0, 90, 0))
	}
	if _, ok := EstimatedRate(records); ok {
		t.Error("expected too-short input to be rejected")
	}
}
