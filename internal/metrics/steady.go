package metrics

import (
	"math"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

// SettledBeat scans the records one cardiac cycle at a time and reports
// the first beat whose stroke volume differs from its predecessor's by at
// most tol mL. Beat windows are anchored to whole periods of the given
// heart rate, so the records must come from a stretch where the rate did
// not change. Returns false when fewer than two full beats are covered or
// the series never converges.
func SettledBeat(records []sim.Record, hr, tol float64) (int, bool) {
	if len(records) == 0 || hr <= 0 {
		return 0, false
	}

	period := 60000.0 / hr
	first := math.Ceil(records[0].T/period) * period
	beats := int((records[len(records)-1].T - first) / period)
	if beats < 2 {
		return 0, false
	}

	prev := math.NaN()
	idx := 0
	for b := 0; b < beats; b++ {
		lo := first + float64(b)*period
		hi := lo + period

		minV := math.Inf(1)
		maxV := math.Inf(-1)
		for idx < len(records) && records[idx].T < hi {
			if records[idx].T >= lo {
				v := records[idx].Y[circ.LeftVentricle]
				minV = math.Min(minV, v)
				maxV = math.Max(maxV, v)
			}
			idx++
		}
		if minV > maxV {
			prev = math.NaN()
			continue
		}

		sv := maxV - minV
		if !math.IsNaN(prev) && math.Abs(sv-prev) <= tol {
			return b + 1, true
		}
		prev = sv
	}
	return 0, false
}
