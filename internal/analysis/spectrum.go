package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/g960059/hemosim/internal/sim"
)

// Spectrum is the single-sided amplitude spectrum of a uniformly sampled
// signal.
type Spectrum struct {
	Freqs []float64 // Hz
	Power []float64
}

// PowerSpectrum transforms the samples at the given sample rate. The mean
// is removed and a Hann window applied first, so baseline offsets do not
// mask the cardiac peaks.
func PowerSpectrum(samples []float64, sampleHz float64) Spectrum {
	n := len(samples)
	if n < 2 || sampleHz <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spec := fft.FFTReal(windowed)
	half := n / 2
	s := Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		s.Freqs[i] = float64(i) * sampleHz / float64(n)
		s.Power[i] = cmplx.Abs(spec[i])
	}
	return s
}

// DominantHz returns the frequency of the strongest non-DC component.
func (s Spectrum) DominantHz() float64 {
	best := 0.0
	bestPower := 0.0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > bestPower {
			bestPower = s.Power[i]
			best = s.Freqs[i]
		}
	}
	return best
}

// EstimatedRate reads the beat frequency out of the aortic pressure
// waveform and returns it in bpm. ok is false when the records are too
// short for a usable frequency resolution.
func EstimatedRate(records []sim.Record) (float64, bool) {
	if len(records) < 1024 {
		return 0, false
	}
	samples := make([]float64, len(records))
	for i, r := range records {
		samples[i] = r.Aux.AoP
	}
	hz := PowerSpectrum(samples, 1000.0/sim.StepMs).DominantHz()
	if hz <= 0 {
		return 0, false
	}
	return hz * 60, true
}
