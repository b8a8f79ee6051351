package analysis

import (
	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

// PVLoop extracts the left ventricular pressure-volume trajectory of the
// last full cardiac cycle at the given heart rate, oldest sample first.
// ok is false when the records span less than one period.
func PVLoop(records []sim.Record, hr float64) (volumes, pressures []float64, ok bool) {
	if len(records) == 0 || hr <= 0 {
		return nil, nil, false
	}
	period := 60000.0 / hr
	cutoff := records[len(records)-1].T - period
	if records[0].T > cutoff {
		return nil, nil, false
	}
	lo := 0
	for lo < len(records)-1 && records[lo].T < cutoff {
		lo++
	}
	tail := records[lo:]
	volumes = make([]float64, len(tail))
	pressures = make([]float64, len(tail))
	for i, r := range tail {
		volumes[i] = r.Y[circ.LeftVentricle]
		pressures[i] = r.Aux.Plv
	}
	return volumes, pressures, true
}

// StrokeWork is the loop area of the last cardiac cycle, i.e. the
// external work of the left ventricle, in mmHg*mL. ok is false without a
// full cycle in the records.
func StrokeWork(records []sim.Record, hr float64) (float64, bool) {
	vs, ps, ok := PVLoop(records, hr)
	if !ok || len(vs) < 3 {
		return 0, false
	}
	area := 0.0
	n := len(vs)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += vs[i]*ps[j] - vs[j]*ps[i]
	}
	area *= 0.5
	if area < 0 {
		area = -area
	}
	return area, true
}
