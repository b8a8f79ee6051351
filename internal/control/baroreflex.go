package control

// Baroreflex closes the arterial-pressure loop the way the carotid
// baroreceptors do: it compares observed mean arterial pressure against a
// setpoint and trims the commanded heart rate around a resting baseline.
// The caller writes the command into an instance's live parameters, so the
// change lands at the next end-diastole like any other edit.
type Baroreflex struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64 // MAP setpoint, mmHg
	BaseHR float64 // resting rate the correction is applied around
	MinHR  float64
	MaxHR  float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

// NewBaroreflex returns a reflex with physiologically plausible gains:
// roughly one bpm per mmHg of proportional error, slow integral trim.
func NewBaroreflex(target, baseHR float64) *Baroreflex {
	return &Baroreflex{
		Kp:     1.2,
		Ki:     0.0001,
		Kd:     0,
		Target: target,
		BaseHR: baseHR,
		MinHR:  40,
		MaxHR:  180,
		first:  true,
	}
}

// Update ingests one MAP observation at simulation time t (ms) and returns
// the commanded heart rate in bpm, clamped to the reflex's range. The
// integral term freezes while the output is saturated.
func (b *Baroreflex) Update(meanArterial, t float64) float64 {
	err := b.Target - meanArterial

	if b.first {
		b.prevErr = err
		b.prevT = t
		b.first = false
		return b.clamp(b.BaseHR + b.Kp*err)
	}

	dt := t - b.prevT
	if dt <= 0 {
		return b.clamp(b.BaseHR + b.Kp*err)
	}

	derivative := (err - b.prevErr) / dt
	u := b.BaseHR + b.Kp*err + b.Ki*(b.integral+err*dt) + b.Kd*derivative

	if u >= b.MinHR && u <= b.MaxHR {
		b.integral += err * dt
	}

	b.prevErr = err
	b.prevT = t
	return b.clamp(u)
}

func (b *Baroreflex) clamp(hr float64) float64 {
	if hr < b.MinHR {
		return b.MinHR
	}
	if hr > b.MaxHR {
		return b.MaxHR
	}
	return hr
}

// Reset clears integral and derivative state
func (b *Baroreflex) Reset() {
	b.integral = 0
	b.prevErr = 0
	b.first = true
}

// GetParams returns tunable parameters for live adjustment
func (b *Baroreflex) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     b.Kp,
		"Ki":     b.Ki,
		"Kd":     b.Kd,
		"Target": b.Target,
		"BaseHR": b.BaseHR,
	}
}

// SetParam adjusts a reflex parameter
func (b *Baroreflex) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		b.Kp = value
	case "Ki":
		b.Ki = value
	case "Kd":
		b.Kd = value
	case "Target":
		b.Target = value
	case "BaseHR":
		b.BaseHR = value
	}
}
