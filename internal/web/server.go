// Package web serves a browser front end for the lab engine. A WebSocket
// hub streams status and analyser snapshots and accepts control messages.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cwbudde/acoustics-lab/internal/lab"
	"github.com/cwbudde/acoustics-lab/internal/observe"
)

// ErrUnknownMessage is reported to a client that sends an unknown type.
var ErrUnknownMessage = errors.New("web: unknown message type")

//go:embed static/*
var staticFiles embed.FS

// DefaultRefresh is the snapshot broadcast interval.
const DefaultRefresh = 50 * time.Millisecond

// Controller is the engine surface the server drives.
type Controller interface {
	Status() lab.Status
	Taps() []*lab.Tap
	SetSourceKind(kind lab.SourceKind) error
	SetFrequency(hz float64) error
	SetWeighting(p lab.Profile) (lab.GraphHandle, error)
	StartWeightingDemo() error
	StopWeightingDemo() error
	StartANCDemo() error
	StopANCDemo() error
	StopAll() error
	ToggleANC(enabled bool) error
	SetPhase(degrees float64) error
	SetLatency(enabled bool) error
	SetMasterGain(g float64) error
}

// Message is the envelope of every WebSocket message.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// StatusPayload mirrors lab.Status with display names.
type StatusPayload struct {
	Mode       string   `json:"mode"`
	Playing    bool     `json:"playing"`
	Source     string   `json:"source"`
	Frequency  float64  `json:"frequency"`
	Profile    string   `json:"profile"`
	Stages     []string `json:"stages"`
	Phase      float64  `json:"phase"`
	Latency    bool     `json:"latency"`
	ANC        bool     `json:"anc"`
	ANCRunning bool     `json:"ancRunning"`
	DelayMs    float64  `json:"delayMs"`
	MasterGain float64  `json:"masterGain"`
	SampleRate float64  `json:"sampleRate"`
}

// TapPayload is one analyser snapshot. Byte arrays are sent as numbers so
// the page can draw them without decoding.
type TapPayload struct {
	Name      string  `json:"name"`
	Frequency []int   `json:"frequency"`
	Time      []int   `json:"time"`
	RMSDB     float64 `json:"rmsDb"`
	PeakDB    float64 `json:"peakDb"`
}

// ResponsePayload compares a profile's cascade with its reference curve.
type ResponsePayload struct {
	Profile   string    `json:"profile"`
	Freqs     []float64 `json:"freqs"`
	Response  []float64 `json:"response"`
	Reference []float64 `json:"reference"`
}

// NewStatusPayload converts an engine status snapshot.
func NewStatusPayload(s lab.Status) StatusPayload {
	stages := make([]string, len(s.Stages))
	for i, st := range s.Stages {
		stages[i] = st.String()
	}

	return StatusPayload{
		Mode:       s.Mode.String(),
		Playing:    s.Playing,
		Source:     s.Source.String(),
		Frequency:  s.Frequency,
		Profile:    s.Profile.String(),
		Stages:     stages,
		Phase:      s.ANC.PhaseDegrees,
		Latency:    s.ANC.LatencyEnabled,
		ANC:        s.ANC.ANCEnabled,
		ANCRunning: s.ANC.Running,
		DelayMs:    float64(s.ANC.Delay()) / float64(time.Millisecond),
		MasterGain: s.MasterGain,
		SampleRate: s.SampleRate,
	}
}

// Option configures a [Server].
type Option func(*Server)

// WithRefresh sets the snapshot interval. Non-positive values are ignored.
func WithRefresh(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.refresh = d
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the instruments the server records on. The default is
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// Server is the web server for the lab UI.
type Server struct {
	ctrl           Controller
	hub            *Hub
	refresh        time.Duration
	log            *slog.Logger
	mux            *http.ServeMux
	metrics        *observe.Metrics
	metricsHandler http.Handler
}

// NewServer creates a server driving ctrl.
func NewServer(ctrl Controller, opts ...Option) (*Server, error) {
	s := &Server{
		ctrl:    ctrl,
		hub:     NewHub(),
		refresh: DefaultRefresh,
		log:     slog.Default(),
		mux:     http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	s.hub.metrics = s.metrics

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("web: static files: %w", err)
	}

	s.mux.HandleFunc("/{$}", s.handleIndex)
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("GET /api/status", s.handleAPIStatus)
	s.mux.HandleFunc("GET /api/response", s.handleAPIResponse)

	if s.metricsHandler != nil {
		s.mux.Handle("GET /metrics", s.metricsHandler)
	}

	return s, nil
}

// Handler returns the HTTP handler with request metrics. Run must be active
// for WebSocket clients to be served.
func (s *Server) Handler() http.Handler {
	return observe.Middleware(s.metrics, s.log)(s.mux)
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run runs the hub and the snapshot loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	go s.snapshotLoop(ctx)
	s.hub.Run(ctx)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts the
// HTTP server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.Run(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	s.log.Info("web server started", "url", "http://"+ln.Addr().String())

	select {
	case err := <-errc:
		return fmt.Errorf("web: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	if !s.hub.join(c) {
		conn.Close()
		return
	}

	s.reply(c, "status", NewStatusPayload(s.ctrl.Status()))

	go c.writePump()
	c.readPump(func(msg []byte) {
		if err := s.handleClientMessage(msg); err != nil {
			s.log.Warn("control message rejected", "error", err)
			s.reply(c, "error", map[string]string{"message": err.Error()})
		}
	})
}

func (s *Server) reply(c *Client, typ string, payload any) {
	data, err := json.Marshal(outMessage{Type: typ, Payload: payload})
	if err != nil {
		s.log.Error("marshal message", "type", typ, "error", err)
		return
	}

	s.hub.sendTo(c, data)
}

func (s *Server) broadcast(typ string, payload any) {
	data, err := json.Marshal(outMessage{Type: typ, Payload: payload})
	if err != nil {
		s.log.Error("marshal message", "type", typ, "error", err)
		return
	}

	s.hub.Broadcast(data)
}

type valuePayload struct {
	Value float64 `json:"value"`
}

type enabledPayload struct {
	Enabled bool `json:"enabled"`
}

type namePayload struct {
	Name string `json:"name"`
}

// handleClientMessage applies one control message. Every accepted message
// is followed by a status broadcast.
func (s *Server) handleClientMessage(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		err = fmt.Errorf("web: parse message: %w", err)
		s.metrics.RecordControl(context.Background(), "invalid", err)

		return err
	}

	var err error

	msgType := msg.Type

	switch msg.Type {
	case "start_weighting":
		err = s.ctrl.StartWeightingDemo()
	case "stop_weighting":
		err = s.ctrl.StopWeightingDemo()
	case "start_anc":
		err = s.ctrl.StartANCDemo()
	case "stop_anc":
		err = s.ctrl.StopANCDemo()
	case "stop_all":
		err = s.ctrl.StopAll()
	case "set_weighting":
		var p namePayload
		if err = decodePayload(msg, &p); err == nil {
			var profile lab.Profile
			if profile, err = lab.ParseProfile(p.Name); err == nil {
				_, err = s.ctrl.SetWeighting(profile)
			}
		}
	case "set_source":
		var p namePayload
		if err = decodePayload(msg, &p); err == nil {
			var kind lab.SourceKind
			if kind, err = lab.ParseSourceKind(p.Name); err == nil {
				err = s.ctrl.SetSourceKind(kind)
			}
		}
	case "set_frequency":
		var p valuePayload
		if err = decodePayload(msg, &p); err == nil {
			err = s.ctrl.SetFrequency(p.Value)
		}
	case "set_phase":
		var p valuePayload
		if err = decodePayload(msg, &p); err == nil {
			err = s.ctrl.SetPhase(p.Value)
		}
	case "set_master_gain":
		var p valuePayload
		if err = decodePayload(msg, &p); err == nil {
			err = s.ctrl.SetMasterGain(p.Value)
		}
	case "toggle_anc":
		var p enabledPayload
		if err = decodePayload(msg, &p); err == nil {
			err = s.ctrl.ToggleANC(p.Enabled)
		}
	case "set_latency":
		var p enabledPayload
		if err = decodePayload(msg, &p); err == nil {
			err = s.ctrl.SetLatency(p.Enabled)
		}
	default:
		msgType = "unknown"
		err = fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}

	s.metrics.RecordControl(context.Background(), msgType, err)

	if err != nil {
		return fmt.Errorf("%s: %w", msg.Type, err)
	}

	s.broadcast("status", NewStatusPayload(s.ctrl.Status()))

	return nil
}

func decodePayload(msg Message, v any) error {
	if len(msg.Payload) == 0 {
		return errors.New("missing payload")
	}

	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	return nil
}

// snapshotLoop broadcasts status and tap snapshots while clients are
// connected.
func (s *Server) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if s.hub.ClientCount() == 0 {
			continue
		}

		start := time.Now()
		s.broadcast("taps", s.snapshot())
		s.metrics.SnapshotDuration.Record(ctx, time.Since(start).Seconds())
	}
}

func (s *Server) snapshot() []TapPayload {
	taps := s.ctrl.Taps()
	out := make([]TapPayload, 0, len(taps))

	for _, t := range taps {
		lvl := t.Level()
		out = append(out, TapPayload{
			Name:      t.Name(),
			Frequency: ints(t.FrequencyData()),
			Time:      ints(t.TimeDomainData()),
			RMSDB:     lvl.RMSDB(),
			PeakDB:    lvl.PeakDB(),
		})
	}

	return out
}

func ints(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}

	return out
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(NewStatusPayload(s.ctrl.Status()))
}

// handleAPIResponse serves /api/response?profile=a&points=64: the cascade
// response of a profile on a log grid from 20 Hz to 20 kHz next to the
// standard curve.
func (s *Server) handleAPIResponse(w http.ResponseWriter, r *http.Request) {
	profile, err := lab.ParseProfile(r.URL.Query().Get("profile"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points := 64
	if v := r.URL.Query().Get("points"); v != "" {
		points, err = strconv.Atoi(v)
		if err != nil || points < 2 || points > 4096 {
			http.Error(w, "points must be an integer in [2, 4096]", http.StatusBadRequest)
			return
		}
	}

	sampleRate := s.ctrl.Status().SampleRate
	if sampleRate <= 0 {
		http.Error(w, lab.ErrNotInitialized.Error(), http.StatusServiceUnavailable)
		return
	}

	freqs := LogFrequencies(20, math.Min(20000, sampleRate/2*0.99), points)

	resp, err := profile.ResponseDB(freqs, sampleRate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ResponsePayload{
		Profile:   profile.String(),
		Freqs:     freqs,
		Response:  resp,
		Reference: profile.ReferenceDB(freqs),
	})
}

// LogFrequencies returns n log-spaced frequencies from lo to hi inclusive.
func LogFrequencies(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}

	out := make([]float64, n)
	ratio := math.Log(hi / lo)

	for i := range out {
		out[i] = lo * math.Exp(ratio*float64(i)/float64(n-1))
	}

	return out
}
