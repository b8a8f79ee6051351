// Package server runs the simulation daemon: one goroutine owns the
// runtime and advances it on a wall-clock ticker, control messages arrive
// over a command queue, and frames stream out through a websocket hub.
// Readers never touch the runtime directly; HTTP handlers serve caches
// refreshed at each publish.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/config"
	"github.com/g960059/hemosim/internal/metrics"
	"github.com/g960059/hemosim/internal/sim"
	"github.com/g960059/hemosim/internal/storage"
)

// maxFrameSamples bounds one frame's series length. A client that joined
// late or stalled catches up from the tail instead of replaying the whole
// retention window.
const maxFrameSamples = 250

// InstanceInfo is the /api/instances row, refreshed at each publish.
type InstanceInfo struct {
	ID     string  `json:"id"`
	Preset string  `json:"preset"`
	Beats  int     `json:"beats"`
	Time   float64 `json:"time"`
}

type Server struct {
	cfg      Config
	rt       *sim.Runtime
	store    *storage.Store
	hub      *hub
	mx       *Metrics
	commands chan Request

	// owned by the simulation goroutine
	presets    map[string]string
	frameSince map[string]float64
	ticks      int

	// caches served by HTTP handlers
	mu          sync.RWMutex
	latestFrame []byte
	summaries   map[string]metrics.Summary
	instances   []InstanceInfo

	httpSrv *http.Server
}

func New(cfg Config) *Server {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s := &Server{
		cfg:        cfg,
		rt:         sim.NewRuntime(),
		store:      storage.New(cfg.DataDir),
		hub:        newHub(m),
		mx:         m,
		commands:   make(chan Request, 32),
		presets:    make(map[string]string),
		frameSince: make(map[string]float64),
		summaries:  make(map[string]metrics.Summary),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.hub.handle(s, w, r)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/instances", s.handleInstances)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/control", s.handleControl)
	s.httpSrv = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// Run blocks until the context is cancelled or the listener fails. All
// runtime mutation happens inside this loop.
func (s *Server) Run(ctx context.Context) error {
	if err := s.store.Init(); err != nil {
		return err
	}
	go s.hub.run()

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.Addr).Info("hemosim daemon listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	ticker := time.NewTicker(time.Duration(s.cfg.TickMs) * time.Millisecond)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return s.httpSrv.Shutdown(shutdownCtx)
		case err := <-errc:
			return err
		case req := <-s.commands:
			s.apply(req)
		case now := <-ticker.C:
			wallMs := now.Sub(last).Seconds() * 1000.0
			last = now
			s.tick(wallMs)
		}
	}
}

// queue hands a control request to the simulation goroutine without
// blocking the caller.
func (s *Server) queue(req Request) {
	select {
	case s.commands <- req:
	default:
		log.WithField("op", req.Op).Warn("command queue full, dropping request")
	}
}

func (s *Server) tick(wallMs float64) {
	started := time.Now()
	steps := s.rt.Tick(wallMs)
	s.mx.TickDuration.Observe(time.Since(started).Seconds())
	s.mx.Ticks.Inc()
	s.mx.Steps.Add(float64(steps * s.rt.Len()))
	if steps == sim.MaxStepsPerTick {
		s.mx.Saturated.Inc()
	}

	s.ticks++
	if s.ticks%s.cfg.PushEveryTicks == 0 {
		s.publish()
	}
}

// publish builds the outgoing frame, refreshes the HTTP caches, and hands
// the bytes to the hub.
func (s *Server) publish() {
	frame := Frame{
		Type:   "frame",
		Time:   s.rt.Time(),
		Speed:  s.rt.Speed(),
		Paused: s.rt.Paused(),
	}
	sums := make(map[string]metrics.Summary)
	info := make([]InstanceInfo, 0, s.rt.Len())

	for _, inst := range s.rt.List() {
		recs := inst.Buffer().Since(s.frameSince[inst.ID] + sim.StepMs/2)
		if len(recs) > maxFrameSamples {
			recs = recs[len(recs)-maxFrameSamples:]
		}
		if len(recs) > 0 {
			s.frameSince[inst.ID] = recs[len(recs)-1].T
		}
		frame.Instances = append(frame.Instances, buildInstanceFrame(inst, recs))

		hr := inst.Active().HR
		if latest, ok := inst.Buffer().Latest(); ok {
			lookback := 60000.0/hr + sim.StepMs
			if sum, ok := metrics.Compute(inst.Buffer().Since(latest.T-lookback), hr); ok {
				sums[inst.ID] = sum
			}
		}
		info = append(info, InstanceInfo{
			ID:     inst.ID,
			Preset: s.presets[inst.ID],
			Beats:  inst.Beats(),
			Time:   inst.Time(),
		})
	}

	data, err := json.Marshal(frame)
	if err != nil {
		log.WithField("err", err).Error("marshal frame")
		return
	}

	s.mu.Lock()
	s.latestFrame = data
	s.summaries = sums
	s.instances = info
	s.mu.Unlock()

	s.hub.broadcastBytes(data)
}

func buildInstanceFrame(inst *sim.Instance, recs []sim.Record) InstanceFrame {
	fr := InstanceFrame{
		ID:    inst.ID,
		Beats: inst.Beats(),
		T:     make([]float64, 0, len(recs)),
		Plv:   make([]float64, 0, len(recs)),
		Pla:   make([]float64, 0, len(recs)),
		Prv:   make([]float64, 0, len(recs)),
		Pra:   make([]float64, 0, len(recs)),
		AoP:   make([]float64, 0, len(recs)),
		PAP:   make([]float64, 0, len(recs)),
		Vlv:   make([]float64, 0, len(recs)),
		Vrv:   make([]float64, 0, len(recs)),
	}
	for _, r := range recs {
		fr.T = append(fr.T, r.T)
		fr.Plv = append(fr.Plv, r.Aux.Plv)
		fr.Pla = append(fr.Pla, r.Aux.Pla)
		fr.Prv = append(fr.Prv, r.Aux.Prv)
		fr.Pra = append(fr.Pra, r.Aux.Pra)
		fr.AoP = append(fr.AoP, r.Aux.AoP)
		fr.PAP = append(fr.PAP, r.Aux.PAP)
		fr.Vlv = append(fr.Vlv, r.Y[circ.LeftVentricle])
		fr.Vrv = append(fr.Vrv, r.Y[circ.RightVentricle])
	}
	return fr
}

func (s *Server) apply(req Request) {
	var err error
	switch req.Op {
	case "add":
		err = s.addInstance(req)
	case "remove":
		if s.rt.Remove(req.ID) {
			delete(s.presets, req.ID)
			delete(s.frameSince, req.ID)
			s.mx.Instances.Set(float64(s.rt.Len()))
		} else {
			err = fmt.Errorf("no instance %q", req.ID)
		}
	case "set_param":
		if inst, ok := s.rt.Get(req.ID); ok {
			err = inst.SetParam(req.Name, req.Value)
		} else {
			err = fmt.Errorf("no instance %q", req.ID)
		}
	case "set_target_volume":
		if inst, ok := s.rt.Get(req.ID); ok {
			inst.SetTargetVolume(req.Value)
		} else {
			err = fmt.Errorf("no instance %q", req.ID)
		}
	case "speed":
		s.rt.SetSpeed(req.Value)
	case "pause":
		s.rt.SetPaused(true)
	case "resume":
		s.rt.SetPaused(false)
	case "save":
		err = s.saveRun(req.ID)
	default:
		err = fmt.Errorf("unknown op %q", req.Op)
	}

	if err != nil {
		log.WithFields(log.Fields{"op": req.Op, "id": req.ID, "err": err}).Warn("control request failed")
		s.hub.broadcastJSON(Event{Type: "error", Op: req.Op, ID: req.ID, Detail: err.Error()})
		return
	}
	s.hub.broadcastJSON(Event{Type: "event", Op: req.Op, ID: req.ID})
}

func (s *Server) addInstance(req Request) error {
	name := req.Preset
	if name == "" {
		name = "normal"
	}
	preset, ok := config.GetPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	p, err := preset.Params()
	if err != nil {
		return err
	}
	inst, err := s.rt.Add(req.ID, p)
	if err != nil {
		return err
	}
	if preset.VolumeDelta != 0 {
		inst.SetTargetVolume(inst.TargetVolume() + preset.VolumeDelta)
	}
	s.presets[req.ID] = name
	s.mx.Instances.Set(float64(s.rt.Len()))
	log.WithFields(log.Fields{"id": req.ID, "preset": name}).Info("instance added")
	return nil
}

func (s *Server) saveRun(id string) error {
	inst, ok := s.rt.Get(id)
	if !ok {
		return fmt.Errorf("no instance %q", id)
	}
	records := inst.Buffer().Snapshot()
	if len(records) == 0 {
		return fmt.Errorf("instance %q has no output yet", id)
	}
	summary, _ := metrics.Compute(records, inst.Active().HR)
	runID, err := s.store.SaveRun(id, s.presets[id], inst.Active(), summary.Map(), records)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"id": id, "run": runID}).Info("run saved")
	return nil
}

func (s *Server) latestFrameJSON() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestFrame
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, config.ListPresets())
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	info := s.instances
	s.mu.RUnlock()
	if info == nil {
		info = []InstanceInfo{}
	}
	writeJSON(w, info)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	s.mu.RLock()
	sum, ok := s.summaries[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "no summary for instance", http.StatusNotFound)
		return
	}
	writeJSON(w, sum.Map())
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	s.queue(req)
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithField("err", err).Error("encode response")
	}
}
