package circ

import (
	"fmt"
	"sort"
)

// Chamber bundles the elastance-model parameters of one heart chamber.
type Chamber struct {
	Ees   float64 // end-systolic elastance, mmHg/mL
	V0    float64 // unstressed volume, mL
	Alpha float64 // exponential stiffness coefficient, 1/mL
	Beta  float64 // diastolic pressure scale, mmHg
	Tmax  float64 // time to end-systole, ms
	Tau   float64 // relaxation time constant, ms
	Delay float64 // atrioventricular activation delay, ms
}

// Valve bundles the resistive parameters of one cardiac valve.
type Valve struct {
	R  float64 // open forward resistance
	Rs float64 // stenosis term, quadratic coefficient of forward flow
	Rr float64 // regurgitation resistance; ClosedValve models a competent valve
}

// Params is the flat set of scalars governing one simulated circulation.
// Values are plain floats so a Params copies by assignment; the two-tier
// live/active protocol in the sim package relies on that.
type Params struct {
	HR float64 // heart rate, beats/min

	Aortic    Valve
	Mitral    Valve
	Tricuspid Valve
	Pulmonic  Valve

	// Vascular segment resistances, upstream to downstream.
	RaoProx float64 // aortic root -> distal aorta
	Rda     float64 // distal aorta -> systemic arteries
	Rcs     float64 // systemic arterioles and capillaries
	Rvs     float64 // systemic veins -> right atrium
	RpaProx float64 // pulmonary root -> pulmonary arteries
	Rcp     float64 // pulmonary capillaries
	Rvp     float64 // pulmonary veins -> left atrium

	// Compartment compliances, mL/mmHg.
	CaoProx float64
	Cda     float64
	Cas     float64
	Cvs     float64
	CpaProx float64
	Cap     float64
	Cvp     float64

	LV Chamber
	LA Chamber
	RV Chamber
	RA Chamber
}

// Defaults returns the canonical healthy-adult parameter set.
func Defaults() Params {
	return Params{
		HR: 60,

		Aortic:    Valve{R: 18, Rs: 0, Rr: ClosedValve},
		Mitral:    Valve{R: 25, Rs: 0, Rr: ClosedValve},
		Tricuspid: Valve{R: 25, Rs: 0, Rr: ClosedValve},
		Pulmonic:  Valve{R: 18, Rs: 0, Rr: ClosedValve},

		RaoProx: 30,
		Rda:     40,
		Rcs:     830,
		Rvs:     25,
		RpaProx: 15,
		Rcp:     40,
		Rvp:     15,

		CaoProx: 0.54,
		Cda:     0.4,
		Cas:     1.83,
		Cvs:     70,
		CpaProx: 0.9,
		Cap:     20,
		Cvp:     7,

		LV: Chamber{Ees: 2.21, V0: 5, Alpha: 0.029, Beta: 0.34, Tmax: 300, Tau: 25, Delay: 160},
		LA: Chamber{Ees: 0.48, V0: 10, Alpha: 0.058, Beta: 0.44, Tmax: 125, Tau: 20, Delay: 0},
		RV: Chamber{Ees: 0.74, V0: 5, Alpha: 0.028, Beta: 0.34, Tmax: 300, Tau: 25, Delay: 160},
		RA: Chamber{Ees: 0.38, V0: 10, Alpha: 0.046, Beta: 0.44, Tmax: 125, Tau: 20, Delay: 0},
	}
}

// fields maps the flat clinical parameter names onto struct storage. The
// same names appear in YAML overrides, TUI tuning, and websocket commands.
var fields = map[string]func(*Params) *float64{
	"HR": func(p *Params) *float64 { return &p.HR },

	"Rav":        func(p *Params) *float64 { return &p.Aortic.R },
	"Rav_sten":   func(p *Params) *float64 { return &p.Aortic.Rs },
	"Rav_regurg": func(p *Params) *float64 { return &p.Aortic.Rr },
	"Rmv":        func(p *Params) *float64 { return &p.Mitral.R },
	"Rmv_sten":   func(p *Params) *float64 { return &p.Mitral.Rs },
	"Rmv_regurg": func(p *Params) *float64 { return &p.Mitral.Rr },
	"Rtv":        func(p *Params) *float64 { return &p.Tricuspid.R },
	"Rtv_sten":   func(p *Params) *float64 { return &p.Tricuspid.Rs },
	"Rtv_regurg": func(p *Params) *float64 { return &p.Tricuspid.Rr },
	"Rpv":        func(p *Params) *float64 { return &p.Pulmonic.R },
	"Rpv_sten":   func(p *Params) *float64 { return &p.Pulmonic.Rs },
	"Rpv_regurg": func(p *Params) *float64 { return &p.Pulmonic.Rr },

	"Rao_prox": func(p *Params) *float64 { return &p.RaoProx },
	"Rda":      func(p *Params) *float64 { return &p.Rda },
	"Rcs":      func(p *Params) *float64 { return &p.Rcs },
	"Rvs":      func(p *Params) *float64 { return &p.Rvs },
	"Rpa_prox": func(p *Params) *float64 { return &p.RpaProx },
	"Rcp":      func(p *Params) *float64 { return &p.Rcp },
	"Rvp":      func(p *Params) *float64 { return &p.Rvp },

	"Cao_prox": func(p *Params) *float64 { return &p.CaoProx },
	"Cda":      func(p *Params) *float64 { return &p.Cda },
	"Cas":      func(p *Params) *float64 { return &p.Cas },
	"Cvs":      func(p *Params) *float64 { return &p.Cvs },
	"Cpa_prox": func(p *Params) *float64 { return &p.CpaProx },
	"Cap":      func(p *Params) *float64 { return &p.Cap },
	"Cvp":      func(p *Params) *float64 { return &p.Cvp },

	"LV_Ees":   func(p *Params) *float64 { return &p.LV.Ees },
	"LV_V0":    func(p *Params) *float64 { return &p.LV.V0 },
	"LV_alpha": func(p *Params) *float64 { return &p.LV.Alpha },
	"LV_beta":  func(p *Params) *float64 { return &p.LV.Beta },
	"LV_Tmax":  func(p *Params) *float64 { return &p.LV.Tmax },
	"LV_tau":   func(p *Params) *float64 { return &p.LV.Tau },
	"LV_delay": func(p *Params) *float64 { return &p.LV.Delay },

	"LA_Ees":   func(p *Params) *float64 { return &p.LA.Ees },
	"LA_V0":    func(p *Params) *float64 { return &p.LA.V0 },
	"LA_alpha": func(p *Params) *float64 { return &p.LA.Alpha },
	"LA_beta":  func(p *Params) *float64 { return &p.LA.Beta },
	"LA_Tmax":  func(p *Params) *float64 { return &p.LA.Tmax },
	"LA_tau":   func(p *Params) *float64 { return &p.LA.Tau },
	"LA_delay": func(p *Params) *float64 { return &p.LA.Delay },

	"RV_Ees":   func(p *Params) *float64 { return &p.RV.Ees },
	"RV_V0":    func(p *Params) *float64 { return &p.RV.V0 },
	"RV_alpha": func(p *Params) *float64 { return &p.RV.Alpha },
	"RV_beta":  func(p *Params) *float64 { return &p.RV.Beta },
	"RV_Tmax":  func(p *Params) *float64 { return &p.RV.Tmax },
	"RV_tau":   func(p *Params) *float64 { return &p.RV.Tau },
	"RV_delay": func(p *Params) *float64 { return &p.RV.Delay },

	"RA_Ees":   func(p *Params) *float64 { return &p.RA.Ees },
	"RA_V0":    func(p *Params) *float64 { return &p.RA.V0 },
	"RA_alpha": func(p *Params) *float64 { return &p.RA.Alpha },
	"RA_beta":  func(p *Params) *float64 { return &p.RA.Beta },
	"RA_Tmax":  func(p *Params) *float64 { return &p.RA.Tmax },
	"RA_tau":   func(p *Params) *float64 { return &p.RA.Tau },
	"RA_delay": func(p *Params) *float64 { return &p.RA.Delay },
}

// StructuralParams are committed at end-diastole: rate, every resistance
// (segment and valve leak alike), every compliance, and the linear elastance
// pair of each chamber.
var StructuralParams = []string{
	"HR",
	"Rav", "Rav_sten", "Rav_regurg",
	"Rmv", "Rmv_sten", "Rmv_regurg",
	"Rtv", "Rtv_sten", "Rtv_regurg",
	"Rpv", "Rpv_sten", "Rpv_regurg",
	"Rao_prox", "Rda", "Rcs", "Rvs", "Rpa_prox", "Rcp", "Rvp",
	"Cao_prox", "Cda", "Cas", "Cvs", "Cpa_prox", "Cap", "Cvp",
	"LV_Ees", "LV_V0", "LA_Ees", "LA_V0", "RV_Ees", "RV_V0", "RA_Ees", "RA_V0",
}

// TimingParams are committed at end-systole: the curve-shape and timing
// scalars of each chamber, including the AV activation delay.
var TimingParams = []string{
	"LV_alpha", "LV_beta", "LV_Tmax", "LV_tau", "LV_delay",
	"LA_alpha", "LA_beta", "LA_Tmax", "LA_tau", "LA_delay",
	"RV_alpha", "RV_beta", "RV_Tmax", "RV_tau", "RV_delay",
	"RA_alpha", "RA_beta", "RA_Tmax", "RA_tau", "RA_delay",
}

func (p *Params) copyGroup(src *Params, names []string) {
	for _, name := range names {
		f := fields[name]
		*f(p) = *f(src)
	}
}

// CommitStructural copies the structural group from src into p, leaving
// the timing group untouched.
func (p *Params) CommitStructural(src *Params) { p.copyGroup(src, StructuralParams) }

// CommitTiming copies the timing group from src into p, leaving the
// structural group untouched.
func (p *Params) CommitTiming(src *Params) { p.copyGroup(src, TimingParams) }

// Get returns the named parameter value.
func (p *Params) Get(name string) (float64, error) {
	f, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %s", name)
	}
	return *f(p), nil
}

// Set assigns the named parameter.
func (p *Params) Set(name string, value float64) error {
	f, ok := fields[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	*f(p) = value
	return nil
}

// Map flattens the parameter set into name/value pairs, e.g. for export.
func (p *Params) Map() map[string]float64 {
	out := make(map[string]float64, len(fields))
	for name, f := range fields {
		out[name] = *f(p)
	}
	return out
}

// Names lists all parameter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects parameter sets that would divide by zero or drive the
// valve quadratic discriminant negative inside the integration loop. All
// guards in this model are preventive; once a Params passes Validate the
// hot path cannot produce NaN from it.
func (p *Params) Validate() error {
	if p.HR <= 0 {
		return fmt.Errorf("HR must be positive, got %g", p.HR)
	}
	valves := []struct {
		name string
		v    Valve
	}{
		{"aortic", p.Aortic},
		{"mitral", p.Mitral},
		{"tricuspid", p.Tricuspid},
		{"pulmonic", p.Pulmonic},
	}
	for _, valve := range valves {
		if valve.v.R <= 0 {
			return fmt.Errorf("%s valve resistance must be positive, got %g", valve.name, valve.v.R)
		}
		if valve.v.Rs < 0 {
			return fmt.Errorf("%s valve stenosis term must be non-negative, got %g (negative values make the flow discriminant negative)", valve.name, valve.v.Rs)
		}
		if valve.v.Rr < 0 {
			return fmt.Errorf("%s valve regurgitation resistance must be non-negative, got %g (negative values make the flow discriminant negative)", valve.name, valve.v.Rr)
		}
	}
	resistances := map[string]float64{
		"Rao_prox": p.RaoProx, "Rda": p.Rda, "Rcs": p.Rcs, "Rvs": p.Rvs,
		"Rpa_prox": p.RpaProx, "Rcp": p.Rcp, "Rvp": p.Rvp,
	}
	for name, r := range resistances {
		if r <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, r)
		}
	}
	compliances := map[string]float64{
		"Cao_prox": p.CaoProx, "Cda": p.Cda, "Cas": p.Cas, "Cvs": p.Cvs,
		"Cpa_prox": p.CpaProx, "Cap": p.Cap, "Cvp": p.Cvp,
	}
	for name, c := range compliances {
		if c <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, c)
		}
	}
	chambers := map[string]Chamber{"LV": p.LV, "LA": p.LA, "RV": p.RV, "RA": p.RA}
	for name, ch := range chambers {
		switch {
		case ch.Ees <= 0:
			return fmt.Errorf("%s_Ees must be positive, got %g", name, ch.Ees)
		case ch.Tmax <= 0:
			return fmt.Errorf("%s_Tmax must be positive, got %g", name, ch.Tmax)
		case ch.Tau <= 0:
			return fmt.Errorf("%s_tau must be positive, got %g", name, ch.Tau)
		case ch.Alpha < 0:
			return fmt.Errorf("%s_alpha must be non-negative, got %g", name, ch.Alpha)
		case ch.Beta < 0:
			return fmt.Errorf("%s_beta must be non-negative, got %g", name, ch.Beta)
		case ch.V0 < 0:
			return fmt.Errorf("%s_V0 must be non-negative, got %g", name, ch.V0)
		case ch.Delay < 0:
			return fmt.Errorf("%s_delay must be non-negative, got %g", name, ch.Delay)
		}
	}
	return nil
}

// ScaleSystemicResistances rescales the systemic segment resistances
// proportionally so their sum equals target. Skipped when the current sum
// is zero.
func (p *Params) ScaleSystemicResistances(target float64) {
	total := p.RaoProx + p.Rda + p.Rcs + p.Rvs
	if total == 0 {
		return
	}
	ratio := target / total
	p.RaoProx *= ratio
	p.Rda *= ratio
	p.Rcs *= ratio
	p.Rvs *= ratio
}

// ScalePulmonaryResistances rescales the pulmonary segment resistances
// proportionally so their sum equals target. Skipped when the current sum
// is zero.
func (p *Params) ScalePulmonaryResistances(target float64) {
	total := p.RpaProx + p.Rcp + p.Rvp
	if total == 0 {
		return
	}
	ratio := target / total
	p.RpaProx *= ratio
	p.Rcp *= ratio
	p.Rvp *= ratio
}
