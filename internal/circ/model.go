package circ

// Aux carries the pressures a caller usually wants alongside the state:
// the four chamber pressures plus the proximal aortic and pulmonary
// arterial pressures. They are derived quantities, recomputed from volume
// and time on every evaluation.
type Aux struct {
	Plv float64 // left ventricular pressure, mmHg
	Pla float64 // left atrial pressure, mmHg
	Prv float64 // right ventricular pressure, mmHg
	Pra float64 // right atrial pressure, mmHg
	AoP float64 // aortic root pressure, mmHg
	PAP float64 // pulmonary artery root pressure, mmHg
}

// Model couples a parameter set to the circulation equations. The zero
// value is not usable; construct with NewModel.
type Model struct {
	Params Params
}

func NewModel(p Params) *Model {
	return &Model{Params: p}
}

// Derive evaluates dy/dt at (t, y). Every flow appears once as an outflow
// and once as an inflow, so the derivatives sum to zero and total blood
// volume is conserved exactly; only valve operation and parameter changes
// redistribute it.
func (m *Model) Derive(t float64, y State) (State, Aux) {
	p := &m.Params
	hr := p.HR

	plv := p.LV.Pressure(y[LeftVentricle], t, hr)
	pla := p.LA.Pressure(y[LeftAtrium], t, hr)
	prv := p.RV.Pressure(y[RightVentricle], t, hr)
	pra := p.RA.Pressure(y[RightAtrium], t, hr)

	pao := y[AorticRoot] / p.CaoProx
	pda := y[DistalAorta] / p.Cda
	pas := y[SystemicArteries] / p.Cas
	pvs := y[SystemicVeins] / p.Cvs
	ppa := y[PulmonaryRoot] / p.CpaProx
	pap := y[PulmonaryArteries] / p.Cap
	pvp := y[PulmonaryVeins] / p.Cvp

	qao := p.Aortic.Flow(plv - pao)
	qda := (pao - pda) / p.RaoProx
	qas := (pda - pas) / p.Rda
	qcs := (pas - pvs) / p.Rcs
	qvs := (pvs - pra) / p.Rvs
	qtv := p.Tricuspid.Flow(pra - prv)
	qpv := p.Pulmonic.Flow(prv - ppa)
	qpa := (ppa - pap) / p.RpaProx
	qcp := (pap - pvp) / p.Rcp
	qvp := (pvp - pla) / p.Rvp
	qmv := p.Mitral.Flow(pla - plv)

	dydt := make(State, StateDim)
	dydt[LeftVentricle] = qmv - qao
	dydt[AorticRoot] = qao - qda
	dydt[DistalAorta] = qda - qas
	dydt[SystemicArteries] = qas - qcs
	dydt[SystemicVeins] = qcs - qvs
	dydt[RightAtrium] = qvs - qtv
	dydt[RightVentricle] = qtv - qpv
	dydt[PulmonaryRoot] = qpv - qpa
	dydt[PulmonaryArteries] = qpa - qcp
	dydt[PulmonaryVeins] = qcp - qvp
	dydt[LeftAtrium] = qvp - qmv
	dydt[Reservoir] = 0

	aux := Aux{Plv: plv, Pla: pla, Prv: prv, Pra: pra, AoP: pao, PAP: ppa}
	return dydt, aux
}
