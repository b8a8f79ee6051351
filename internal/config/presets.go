package config

import (
	"sort"

	"github.com/g960059/hemosim/internal/circ"
)

// Preset is a named clinical condition expressed as overrides on the
// default parameter set. VolumeDelta shifts the circulating-volume target
// relative to the seeded volume, in mL.
type Preset struct {
	Description string
	Overrides   map[string]float64
	VolumeDelta float64
}

var Presets = map[string]Preset{
	"normal": {
		Description: "healthy adult at rest",
	},
	"hypertension": {
		Description: "elevated arteriolar resistance with stiffened arteries",
		Overrides: map[string]float64{
			"Rcs":      1300,
			"Cas":      1.2,
			"Cda":      0.28,
			"Cao_prox": 0.45,
		},
	},
	"heart-failure": {
		Description: "dilated left ventricle with reduced contractility and congestion",
		Overrides: map[string]float64{
			"LV_Ees":   0.9,
			"LV_V0":    15,
			"LV_alpha": 0.022,
			"HR":       80,
		},
		VolumeDelta: 400,
	},
	"aortic-stenosis": {
		Description: "calcific narrowing of the aortic valve",
		Overrides: map[string]float64{
			"Rav_sten": 250,
		},
	},
	"aortic-regurgitation": {
		Description: "incompetent aortic valve leaking in diastole",
		Overrides: map[string]float64{
			"Rav_regurg": 150,
		},
	},
	"mitral-stenosis": {
		Description: "narrowed mitral inflow",
		Overrides: map[string]float64{
			"Rmv_sten": 300,
		},
	},
	"mitral-regurgitation": {
		Description: "incompetent mitral valve leaking in systole",
		Overrides: map[string]float64{
			"Rmv_regurg": 120,
		},
	},
	"tachycardia": {
		Description: "rapid rate with shortened systolic intervals",
		Overrides: map[string]float64{
			"HR":      150,
			"LV_Tmax": 200,
			"RV_Tmax": 200,
			"LA_Tmax": 90,
			"RA_Tmax": 90,
		},
	},
	"hypovolemia": {
		Description: "acute volume loss with compensatory rate rise",
		Overrides: map[string]float64{
			"HR": 95,
		},
		VolumeDelta: -800,
	},
}

func GetPreset(name string) (Preset, bool) {
	p, ok := Presets[name]
	return p, ok
}

// ListPresets returns the preset names in sorted order for stable output.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params builds the preset's full parameter set on top of the defaults.
func (p Preset) Params() (circ.Params, error) {
	params := circ.Defaults()
	for name, value := range p.Overrides {
		if err := params.Set(name, value); err != nil {
			return circ.Params{}, err
		}
	}
	if err := params.Validate(); err != nil {
		return circ.Params{}, err
	}
	return params, nil
}
