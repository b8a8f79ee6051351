package server

// Request is one control message, arriving over the websocket or POSTed to
// /api/control. Unused fields stay zero for ops that do not need them.
type Request struct {
	Op     string  `json:"op"`
	ID     string  `json:"id,omitempty"`
	Preset string  `json:"preset,omitempty"`
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// Frame is the periodic broadcast: the shared clock plus, per instance, the
// samples produced since the previous frame.
type Frame struct {
	Type      string          `json:"type"`
	Time      float64         `json:"time"`
	Speed     float64         `json:"speed"`
	Paused    bool            `json:"paused"`
	Instances []InstanceFrame `json:"instances"`
}

// InstanceFrame carries the waveform tail of one instance. Series share the
// index space of T.
type InstanceFrame struct {
	ID    string    `json:"id"`
	Beats int       `json:"beats"`
	T     []float64 `json:"t"`
	Plv   []float64 `json:"plv"`
	Pla   []float64 `json:"pla"`
	Prv   []float64 `json:"prv"`
	Pra   []float64 `json:"pra"`
	AoP   []float64 `json:"aop"`
	PAP   []float64 `json:"pap"`
	Vlv   []float64 `json:"vlv"`
	Vrv   []float64 `json:"vrv"`
}

// Event reports the outcome of a control request to all clients.
type Event struct {
	Type   string `json:"type"`
	Op     string `json:"op,omitempty"`
	ID     string `json:"id,omitempty"`
	Detail string `json:"detail,omitempty"`
}
