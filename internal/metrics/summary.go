// Package metrics derives the bedside numbers from buffered simulation
// output: pressures averaged the way monitors average them, and
// volume-derived indices taken over the most recent complete beat.
package metrics

import (
	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

// Summary is one instance's recent hemodynamic profile.
type Summary struct {
	HeartRate float64 // bpm, as supplied by the caller's active set

	MAP     float64 // mean aortic root pressure, mmHg
	SysAoP  float64 // systolic aortic pressure, mmHg
	DiaAoP  float64 // diastolic aortic pressure, mmHg
	MeanPAP float64 // mean pulmonary artery pressure, mmHg
	CVP     float64 // mean right atrial pressure, mmHg
	PCWP    float64 // mean left atrial pressure, wedge surrogate, mmHg

	EDV          float64 // left ventricular end-diastolic volume, mL
	ESV          float64 // left ventricular end-systolic volume, mL
	StrokeVolume float64 // mL
	EF           float64 // ejection fraction, 0..1
	CO           float64 // cardiac output, L/min
}

// Compute aggregates the records of roughly the last beat at the given
// heart rate. Records older than one period before the newest are ignored,
// so means and extremes describe a single cardiac cycle. Returns false
// when there is nothing to aggregate.
func Compute(records []sim.Record, hr float64) (Summary, bool) {
	if len(records) == 0 || hr <= 0 {
		return Summary{}, false
	}

	period := 60000.0 / hr
	cutoff := records[len(records)-1].T - period
	lo := 0
	for lo < len(records)-1 && records[lo].T < cutoff {
		lo++
	}
	window := records[lo:]

	s := Summary{
		HeartRate: hr,
		SysAoP:    window[0].Aux.AoP,
		DiaAoP:    window[0].Aux.AoP,
		EDV:       window[0].Y[circ.LeftVentricle],
		ESV:       window[0].Y[circ.LeftVentricle],
	}

	var sumAoP, sumPAP, sumPra, sumPla float64
	for _, r := range window {
		sumAoP += r.Aux.AoP
		sumPAP += r.Aux.PAP
		sumPra += r.Aux.Pra
		sumPla += r.Aux.Pla

		if r.Aux.AoP > s.SysAoP {
			s.SysAoP = r.Aux.AoP
		}
		if r.Aux.AoP < s.DiaAoP {
			s.DiaAoP = r.Aux.AoP
		}
		v := r.Y[circ.LeftVentricle]
		if v > s.EDV {
			s.EDV = v
		}
		if v < s.ESV {
			s.ESV = v
		}
	}

	n := float64(len(window))
	s.MAP = sumAoP / n
	s.MeanPAP = sumPAP / n
	s.CVP = sumPra / n
	s.PCWP = sumPla / n

	s.StrokeVolume = s.EDV - s.ESV
	if s.EDV > 0 {
		s.EF = s.StrokeVolume / s.EDV
	}
	s.CO = s.StrokeVolume * hr / 1000.0

	return s, true
}

// Map flattens the summary into name/value pairs for export and metadata.
func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		"hr":       s.HeartRate,
		"map":      s.MAP,
		"sys_aop":  s.SysAoP,
		"dia_aop":  s.DiaAoP,
		"mean_pap": s.MeanPAP,
		"cvp":      s.CVP,
		"pcwp":     s.PCWP,
		"edv":      s.EDV,
		"esv":      s.ESV,
		"sv":       s.StrokeVolume,
		"ef":       s.EF,
		"co":       s.CO,
	}
}
