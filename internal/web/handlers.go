package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/cjeanneret/LaserTower/internal/notify"
	"github.com/cjeanneret/LaserTower/internal/tower"
)

// TowerAPI is the subset of the tower controller the handlers drive.
type TowerAPI interface {
	SetBaseAngle(angle float64) error
	SetTopAngle(angle float64) error
	LaserOn() error
	LaserOff() error
	Status() tower.Status
}

// NotifyFunc relays a message to the remote collector.
// It is called from the POST /notify handler.
type NotifyFunc func(message string) (*notify.Result, error)

// AngleRequest is the body of POST /base and POST /top.
type AngleRequest struct {
	Angle float64 `json:"angle"`
}

// LaserRequest is the body of POST /laser.
type LaserRequest struct {
	On bool `json:"on"`
}

// NotifyRequest is the body of POST /notify.
type NotifyRequest struct {
	Message string `json:"message"`
}

// NotifyResponse mirrors the notifier's two-tier result.
type NotifyResponse struct {
	Data any    `json:"data,omitempty"`
	Text string `json:"text"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Tower       TowerAPI
	Notify      NotifyFunc
	towerMu     sync.Mutex // serializes tower access; the tower has no internal locking
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If notifyFn is nil, POST /notify returns 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, t TowerAPI, notifyFn NotifyFunc, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Tower:       t,
		Notify:      notifyFn,
		staticFS:    staticFS,
	}
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleStatus returns the tower's last commanded state as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.towerMu.Lock()
	st := h.Tower.Status()
	h.towerMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// HandleBase handles POST /base to position the base servo.
func (h *Handlers) HandleBase(w http.ResponseWriter, r *http.Request) {
	var req AngleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	h.towerMu.Lock()
	err := h.Tower.SetBaseAngle(req.Angle)
	h.towerMu.Unlock()
	if err != nil {
		h.towerError(w, err)
		return
	}
	h.Broadcaster.Broadcastf("base angle set to %g", req.Angle)
	w.WriteHeader(http.StatusNoContent)
}

// HandleTop handles POST /top to position the top servo.
func (h *Handlers) HandleTop(w http.ResponseWriter, r *http.Request) {
	var req AngleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	h.towerMu.Lock()
	err := h.Tower.SetTopAngle(req.Angle)
	h.towerMu.Unlock()
	if err != nil {
		h.towerError(w, err)
		return
	}
	h.Broadcaster.Broadcastf("top angle set to %g", req.Angle)
	w.WriteHeader(http.StatusNoContent)
}

// HandleLaser handles POST /laser to switch the laser on or off.
func (h *Handlers) HandleLaser(w http.ResponseWriter, r *http.Request) {
	var req LaserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	h.towerMu.Lock()
	var err error
	if req.On {
		err = h.Tower.LaserOn()
	} else {
		err = h.Tower.LaserOff()
	}
	h.towerMu.Unlock()
	if err != nil {
		h.towerError(w, err)
		return
	}
	h.Broadcaster.Broadcastf("laser on=%t", req.On)
	w.WriteHeader(http.StatusNoContent)
}

// HandleNotify handles POST /notify to relay an event to the collector.
func (h *Handlers) HandleNotify(w http.ResponseWriter, r *http.Request) {
	if h.Notify == nil {
		http.Error(w, "notifier not configured", http.StatusServiceUnavailable)
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	result, err := h.Notify(req.Message)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(NotifyResponse{Data: result.Data, Text: result.Text})
}

// towerError maps controller errors onto HTTP statuses: range errors
// are the client's fault, a closed tower is a conflict, anything else
// is a hardware failure.
func (h *Handlers) towerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tower.ErrAngleRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, tower.ErrClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleStatusStream handles GET /events for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
