package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/g960059/hemosim/internal/circ"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.TickMs = 10
	cfg.PushEveryTicks = 4
	return New(cfg)
}

func TestApplyAddRemove(t *testing.T) {
	s := newTestServer(t)

	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})
	if s.rt.Len() != 1 {
		t.Fatalf("expected 1 instance, got %d", s.rt.Len())
	}

	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})
	if s.rt.Len() != 1 {
		t.Errorf("duplicate add should be rejected, got %d instances", s.rt.Len())
	}

	s.apply(Request{Op: "remove", ID: "p1"})
	if s.rt.Len() != 0 {
		t.Errorf("expected 0 instances after remove, got %d", s.rt.Len())
	}
	if len(s.presets) != 0 || len(s.frameSince) != 0 {
		t.Error("remove should clear per-instance bookkeeping")
	}

	s.apply(Request{Op: "remove", ID: "p1"})
}

func TestApplyAddDefaultsToNormal(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1"})
	if s.presets["p1"] != "normal" {
		t.Errorf("expected preset normal, got %q", s.presets["p1"])
	}
}

func TestApplyAddUnknownPreset(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "no-such-preset"})
	if s.rt.Len() != 0 {
		t.Errorf("expected add to fail, got %d instances", s.rt.Len())
	}
}

func TestApplyAddAppliesVolumeDelta(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "hypovolemia"})

	inst, ok := s.rt.Get("p1")
	if !ok {
		t.Fatal("instance missing")
	}
	want := circ.TotalVolume(circ.InitialState()) - 800.0
	if inst.TargetVolume() != want {
		t.Errorf("expected volume target %.1f, got %.1f", want, inst.TargetVolume())
	}
}

func TestApplySetParamValidates(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})
	inst, _ := s.rt.Get("p1")

	s.apply(Request{Op: "set_param", ID: "p1", Name: "HR", Value: -10})
	live := inst.Live()
	if live.HR != 60 {
		t.Errorf("invalid edit should be rejected, HR became %.1f", live.HR)
	}

	s.apply(Request{Op: "set_param", ID: "p1", Name: "Rcs", Value: 1300})
	live = inst.Live()
	if live.Rcs != 1300 {
		t.Errorf("expected Rcs 1300, got %.1f", live.Rcs)
	}
}

func TestApplyPauseResumeSpeed(t *testing.T) {
	s := newTestServer(t)

	s.apply(Request{Op: "pause"})
	if !s.rt.Paused() {
		t.Error("expected runtime paused")
	}
	s.apply(Request{Op: "resume"})
	if s.rt.Paused() {
		t.Error("expected runtime resumed")
	}
	s.apply(Request{Op: "speed", Value: 2.5})
	if s.rt.Speed() != 2.5 {
		t.Errorf("expected speed 2.5, got %.2f", s.rt.Speed())
	}
}

func TestTickPublishesFrame(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})

	for i := 0; i < 4; i++ {
		s.tick(10)
	}

	data := s.latestFrameJSON()
	if data == nil {
		t.Fatal("expected a published frame after the push cadence")
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame does not decode: %v", err)
	}
	if frame.Type != "frame" {
		t.Errorf("expected type frame, got %q", frame.Type)
	}
	if frame.Time != 40.0 {
		t.Errorf("expected frame time 40, got %.1f", frame.Time)
	}
	if len(frame.Instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(frame.Instances))
	}

	fr := frame.Instances[0]
	if len(fr.T) != 20 {
		t.Fatalf("expected 20 samples, got %d", len(fr.T))
	}
	if fr.T[0] != 2.0 || fr.T[len(fr.T)-1] != 40.0 {
		t.Errorf("expected samples spanning 2..40, got %.1f..%.1f", fr.T[0], fr.T[len(fr.T)-1])
	}
	if len(fr.AoP) != len(fr.T) || len(fr.Vlv) != len(fr.T) {
		t.Error("series lengths must match the time axis")
	}
}

func TestPublishDoesNotResendSamples(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})

	for i := 0; i < 4; i++ {
		s.tick(10)
	}
	var first Frame
	if err := json.Unmarshal(s.latestFrameJSON(), &first); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		s.tick(10)
	}
	var second Frame
	if err := json.Unmarshal(s.latestFrameJSON(), &second); err != nil {
		t.Fatal(err)
	}

	lastT := first.Instances[0].T[len(first.Instances[0].T)-1]
	firstT := second.Instances[0].T[0]
	if firstT <= lastT {
		t.Errorf("second frame resends samples: previous end %.1f, next start %.1f", lastT, firstT)
	}
}

func TestSaveRunFromServer(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "hypertension"})
	for i := 0; i < 10; i++ {
		s.tick(10)
	}

	s.apply(Request{Op: "save", ID: "p1"})

	runs, err := s.store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 saved run, got %d", len(runs))
	}
	if runs[0].Subject != "p1" || runs[0].Preset != "hypertension" {
		t.Errorf("unexpected run metadata: %+v", runs[0])
	}
}

func TestSaveRunWithoutOutput(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})

	s.apply(Request{Op: "save", ID: "p1"})

	runs, err := s.store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("save before any step should fail, got %d runs", len(runs))
	}
}

func TestHandleControlQueues(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/control", strings.NewReader(`{"op":"pause"}`))
	rec := httptest.NewRecorder()
	s.handleControl(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	select {
	case cmd := <-s.commands:
		if cmd.Op != "pause" {
			t.Errorf("expected op pause, got %q", cmd.Op)
		}
	default:
		t.Error("expected a queued command")
	}
}

func TestHandleControlRejectsGet(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/control", nil)
	rec := httptest.NewRecorder()
	s.handleControl(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("expected ok, got %q", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})
	s.tick(10)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"hemosim_steps_total", "hemosim_instances", "hemosim_tick_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics exposition missing %s", name)
		}
	}
}

func TestPresetsEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/presets", nil)
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "heart-failure") {
		t.Error("preset catalog missing heart-failure")
	}
}

func TestInstancesEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})
	for i := 0; i < 4; i++ {
		s.tick(10)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/instances", nil)
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)

	var info []InstanceInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("instances response does not decode: %v", err)
	}
	if len(info) != 1 || info[0].ID != "p1" || info[0].Preset != "normal" {
		t.Errorf("unexpected instance listing: %+v", info)
	}
	if info[0].Time != 40.0 {
		t.Errorf("expected instance clock 40, got %.1f", info[0].Time)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary?id=p1", nil)
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before any publish, got %d", rec.Code)
	}

	s.apply(Request{Op: "add", ID: "p1", Preset: "normal"})
	for i := 0; i < 4; i++ {
		s.tick(10)
	}

	rec = httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after publish, got %d", rec.Code)
	}
	var sum map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("summary response does not decode: %v", err)
	}
	if _, ok := sum["co"]; !ok {
		t.Error("summary missing cardiac output")
	}
}
