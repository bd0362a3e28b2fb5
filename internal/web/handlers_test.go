package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/cjeanneret/LaserTower/internal/notify"
	"github.com/cjeanneret/LaserTower/internal/tower"
)

// fakeTower implements TowerAPI and records commands.
type fakeTower struct {
	baseAngle float64
	topAngle  float64
	laserOn   bool
	closed    bool
}

func (f *fakeTower) SetBaseAngle(angle float64) error {
	if f.closed {
		return tower.ErrClosed
	}
	if angle < 0 || angle > 360 {
		return fmt.Errorf("%w: base angle must be between 0 and 360 degrees, got %g", tower.ErrAngleRange, angle)
	}
	f.baseAngle = angle
	return nil
}

func (f *fakeTower) SetTopAngle(angle float64) error {
	if f.closed {
		return tower.ErrClosed
	}
	if angle < 0 || angle > 180 {
		return fmt.Errorf("%w: top angle must be between 0 and 180 degrees, got %g", tower.ErrAngleRange, angle)
	}
	f.topAngle = angle
	return nil
}

func (f *fakeTower) LaserOn() error {
	if f.closed {
		return tower.ErrClosed
	}
	f.laserOn = true
	return nil
}

func (f *fakeTower) LaserOff() error {
	if f.closed {
		return tower.ErrClosed
	}
	f.laserOn = false
	return nil
}

func (f *fakeTower) Status() tower.Status {
	return tower.Status{
		Pins:      tower.Pins{Base: 23, Top: 24, Laser: 17},
		BaseAngle: f.baseAngle,
		TopAngle:  f.topAngle,
		LaserOn:   f.laserOn,
		Closed:    f.closed,
	}
}

func newTestHandlers(t *testing.T, twr TowerAPI, notifyFn NotifyFunc) *Handlers {
	t.Helper()
	staticFS := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html>tower</html>")},
	}
	return NewHandlers(NewStatusBroadcaster(), twr, notifyFn, staticFS)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// ---------- angles ----------

func TestHandleBase_Valid(t *testing.T) {
	twr := &fakeTower{}
	h := newTestHandlers(t, twr, nil)

	rec := postJSON(t, h.HandleBase, `{"angle": 270}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body)
	}
	if twr.baseAngle != 270 {
		t.Errorf("baseAngle = %g, want 270", twr.baseAngle)
	}
}

func TestHandleBase_OutOfRange(t *testing.T) {
	h := newTestHandlers(t, &fakeTower{}, nil)

	rec := postJSON(t, h.HandleBase, `{"angle": 360.001}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleBase_InvalidJSON(t *testing.T) {
	h := newTestHandlers(t, &fakeTower{}, nil)

	rec := postJSON(t, h.HandleBase, `{"angle": `)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleBase_ClosedTower(t *testing.T) {
	h := newTestHandlers(t, &fakeTower{closed: true}, nil)

	rec := postJSON(t, h.HandleBase, `{"angle": 90}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleTop_Valid(t *testing.T) {
	twr := &fakeTower{}
	h := newTestHandlers(t, twr, nil)

	rec := postJSON(t, h.HandleTop, `{"angle": 45}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if twr.topAngle != 45 {
		t.Errorf("topAngle = %g, want 45", twr.topAngle)
	}
}

func TestHandleTop_OutOfRange(t *testing.T) {
	h := newTestHandlers(t, &fakeTower{}, nil)

	rec := postJSON(t, h.HandleTop, `{"angle": 181}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// ---------- laser ----------

func TestHandleLaser_OnOff(t *testing.T) {
	twr := &fakeTower{}
	h := newTestHandlers(t, twr, nil)

	rec := postJSON(t, h.HandleLaser, `{"on": true}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !twr.laserOn {
		t.Error("laser should be on")
	}

	rec = postJSON(t, h.HandleLaser, `{"on": false}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if twr.laserOn {
		t.Error("laser should be off")
	}
}

// ---------- status ----------

func TestHandleStatus(t *testing.T) {
	twr := &fakeTower{baseAngle: 120, topAngle: 30, laserOn: true}
	h := newTestHandlers(t, twr, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var st tower.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.BaseAngle != 120 || st.TopAngle != 30 || !st.LaserOn {
		t.Errorf("status = %+v", st)
	}
}

// ---------- notify ----------

func TestHandleNotify_Success(t *testing.T) {
	var gotMessage string
	notifyFn := func(message string) (*notify.Result, error) {
		gotMessage = message
		return &notify.Result{Data: map[string]any{"ok": true}, Text: `{"ok": true}`}, nil
	}
	h := newTestHandlers(t, &fakeTower{}, notifyFn)

	rec := postJSON(t, h.HandleNotify, `{"message": "intruder"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}
	if gotMessage != "intruder" {
		t.Errorf("message = %q, want \"intruder\"", gotMessage)
	}

	var resp NotifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Text != `{"ok": true}` {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestHandleNotify_CollectorFailure(t *testing.T) {
	notifyFn := func(message string) (*notify.Result, error) {
		return nil, fmt.Errorf("%w: unexpected status 500", notify.ErrNotificationFailed)
	}
	h := newTestHandlers(t, &fakeTower{}, notifyFn)

	rec := postJSON(t, h.HandleNotify, `{"message": "intruder"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleNotify_NotConfigured(t *testing.T) {
	h := newTestHandlers(t, &fakeTower{}, nil)

	rec := postJSON(t, h.HandleNotify, `{"message": "intruder"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleNotify_EmptyMessage(t *testing.T) {
	notifyFn := func(message string) (*notify.Result, error) {
		t.Error("notify must not be called for empty messages")
		return nil, errors.New("unreachable")
	}
	h := newTestHandlers(t, &fakeTower{}, notifyFn)

	rec := postJSON(t, h.HandleNotify, `{"message": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// ---------- index ----------

func TestServeIndex(t *testing.T) {
	h := newTestHandlers(t, &fakeTower{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "tower") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// ---------- concurrency ----------

// nopActuator and nopOutput back a real tower.Tower for concurrency
// tests.
type nopActuator struct{}

func (nopActuator) SetValue(float64) error { return nil }
func (nopActuator) Release() error         { return nil }

type nopOutput struct{}

func (nopOutput) On() error      { return nil }
func (nopOutput) Off() error     { return nil }
func (nopOutput) Release() error { return nil }

type nopProvider struct{}

func (nopProvider) Actuator(int, tower.PulseProfile) (tower.Actuator, error) {
	return nopActuator{}, nil
}

func (nopProvider) Output(int) (tower.Output, error) {
	return nopOutput{}, nil
}

// The tower has no internal locking, so the handlers must serialize
// access to it; run with -race.
func TestHandlers_ConcurrentRequestsSerialized(t *testing.T) {
	twr, err := tower.New(nopProvider{}, tower.Options{})
	if err != nil {
		t.Fatalf("tower.New: %v", err)
	}
	h := newTestHandlers(t, twr, nil)

	const goroutines = 8
	const requests = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < requests; i++ {
				switch g % 4 {
				case 0:
					rec := postJSON(t, h.HandleBase, `{"angle": 90}`)
					if rec.Code != http.StatusNoContent {
						t.Errorf("POST /base status = %d", rec.Code)
					}
				case 1:
					rec := postJSON(t, h.HandleTop, `{"angle": 45}`)
					if rec.Code != http.StatusNoContent {
						t.Errorf("POST /top status = %d", rec.Code)
					}
				case 2:
					rec := postJSON(t, h.HandleLaser, `{"on": true}`)
					if rec.Code != http.StatusNoContent {
						t.Errorf("POST /laser status = %d", rec.Code)
					}
				case 3:
					req := httptest.NewRequest(http.MethodGet, "/status", nil)
					rec := httptest.NewRecorder()
					h.HandleStatus(rec, req)
					if rec.Code != http.StatusOK {
						t.Errorf("GET /status status = %d", rec.Code)
					}
				}
			}
		}(g)
	}
	wg.Wait()

	st := twr.Status()
	if st.BaseAngle != 90 || st.TopAngle != 45 || !st.LaserOn {
		t.Errorf("final status = %+v", st)
	}
}

// ---------- routing ----------

func TestMux_Routes(t *testing.T) {
	srv := NewServer(":0", NewStatusBroadcaster(), &fakeTower{}, nil)
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/base", "application/json", strings.NewReader(`{"angle": 90}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("POST /base status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /status status = %d, want 200", resp.StatusCode)
	}

	// GET on a POST-only route is rejected by the mux
	resp, err = http.Get(ts.URL + "/laser")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /laser status = %d, want 405", resp.StatusCode)
	}
}
