// Package server drives an inkwell Editor over websockets.
//
// One goroutine, started by Run, owns the Editor: it ticks at the frame
// interval and broadcasts every rendered frame as a binary PNG message to
// all connected clients. Clients send events as JSON text messages, in
// the form accepted by inkwell.DecodeEvent, plus two requests answered
// only to the sender:
//
//	{"type":"snapshot"}  -> {"type":"snapshot","snapshot":{...}}
//	{"type":"frame"}     -> the current frame as a binary message
//
// Rejected messages are answered with {"type":"error","error":"..."}.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inkwell-board/inkwell"
	"github.com/inkwell-board/inkwell/export"
	"github.com/inkwell-board/inkwell/internal/logging"
	"github.com/inkwell-board/inkwell/persist"
)

// DefaultFrameInterval is the tick period, about 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

const (
	writeWait  = 10 * time.Second
	sendBuffer = 8
	maxMessage = 32 << 20
)

var (
	// ErrNotRunning is returned by calls made while Run is not active.
	ErrNotRunning = errors.New("server: not running")

	// ErrRunning is returned by a second concurrent Run.
	ErrRunning = errors.New("server: already running")
)

// Option configures a Server.
type Option func(*Server)

// WithFrameInterval sets the tick period.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithCheckOrigin replaces the websocket origin check. The default accepts
// same-origin requests only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// Server serves one Editor to any number of websocket clients.
type Server struct {
	ed       *inkwell.Editor
	interval time.Duration
	upgrader websocket.Upgrader

	calls chan func(*inkwell.Editor)

	mu      sync.Mutex
	clients map[*client]struct{}
	running bool
}

// New returns a Server for ed. Call Run to start ticking.
func New(ed *inkwell.Editor, opts ...Option) *Server {
	s := &Server{
		ed:       ed,
		interval: DefaultFrameInterval,
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 64 << 10},
		calls:    make(chan func(*inkwell.Editor)),
		clients:  make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run owns the Editor until ctx is done, ticking at the frame interval and
// running queued calls between ticks. It returns ctx.Err().
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			return ctx.Err()
		case fn := <-s.calls:
			fn(s.ed)
		case <-t.C:
			s.tick()
		}
	}
}

// tick applies queued events and broadcasts the frame if one was rendered.
// Requests tick before reading the Editor so that they observe every event
// their client sent earlier.
func (s *Server) tick() {
	if s.ed.Tick() {
		s.broadcastFrame()
	}
}

// Do runs fn on the Run goroutine and waits for it.
func (s *Server) Do(ctx context.Context, fn func(*inkwell.Editor)) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return ErrNotRunning
	}
	done := make(chan struct{})
	select {
	case s.calls <- func(e *inkwell.Editor) { fn(e); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler returns the HTTP routes: the websocket at /ws, the JSON snapshot
// at /snapshot and flattened exports at /export.png and /export.pdf.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.serveWS)
	mux.HandleFunc("GET /snapshot", s.serveSnapshot)
	mux.HandleFunc("GET /export.png", s.serveExport("image/png", func(e *inkwell.Editor, b *bytes.Buffer) error {
		return e.ExportPNG(b)
	}))
	mux.HandleFunc("GET /export.pdf", s.serveExport("application/pdf", func(e *inkwell.Editor, b *bytes.Buffer) error {
		return e.ExportPDF(b, "inkwell")
	}))
	return mux
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	var data []byte
	var err error
	if derr := s.Do(r.Context(), func(e *inkwell.Editor) {
		s.tick()
		data, err = persist.Marshal(e.Snapshot())
	}); derr != nil {
		http.Error(w, derr.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) serveExport(ctype string, fn func(*inkwell.Editor, *bytes.Buffer) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		var err error
		if derr := s.Do(r.Context(), func(e *inkwell.Editor) {
			s.tick()
			err = fn(e, &buf)
		}); derr != nil {
			http.Error(w, derr.Error(), http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ctype)
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.L().Warn("server: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan message, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	logging.L().Info("server: client connected", "remote", conn.RemoteAddr())

	go c.writePump()
	s.readPump(r.Context(), c)

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
	logging.L().Info("server: client disconnected", "remote", conn.RemoteAddr())
}

// readPump turns incoming messages into events until the connection ends.
func (s *Server) readPump(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessage)
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.L().Warn("server: read failed", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			c.reply(errorReply("binary messages are not accepted"))
			continue
		}
		if err := s.handle(ctx, c, data); err != nil {
			c.reply(errorReply(err.Error()))
		}
	}
}

func (s *Server) handle(ctx context.Context, c *client, data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case "snapshot":
		var out []byte
		var err error
		if derr := s.Do(ctx, func(e *inkwell.Editor) {
			s.tick()
			out, err = json.Marshal(struct {
				Type     string           `json:"type"`
				Snapshot persist.Snapshot `json:"snapshot"`
			}{"snapshot", e.Snapshot()})
		}); derr != nil {
			return derr
		}
		if err != nil {
			return err
		}
		c.reply(message{websocket.TextMessage, out})
		return nil
	case "frame":
		var out []byte
		var err error
		if derr := s.Do(ctx, func(e *inkwell.Editor) {
			s.tick()
			out, err = encodeFrame(e)
		}); derr != nil {
			return derr
		}
		if err != nil {
			return err
		}
		c.reply(message{websocket.BinaryMessage, out})
		return nil
	}
	ev, err := inkwell.DecodeEvent(data)
	if err != nil {
		return err
	}
	s.ed.Post(ev)
	return nil
}

func (s *Server) broadcastFrame() {
	data, err := encodeFrame(s.ed)
	if err != nil {
		logging.L().Warn("server: encode frame", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.offer(message{websocket.BinaryMessage, data})
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = c.conn.Close()
	}
}

func encodeFrame(e *inkwell.Editor) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.PNG(&buf, e.Frame()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func errorReply(msg string) message {
	b, _ := json.Marshal(struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}{"error", msg})
	return message{websocket.TextMessage, b}
}

type message struct {
	kind int
	data []byte
}

// client is one websocket connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan message

	once sync.Once
}

// offer queues m, dropping it when the client is not keeping up.
func (c *client) offer(m message) {
	select {
	case c.send <- m:
	default:
		logging.L().Debug("server: frame dropped for slow client", "remote", c.conn.RemoteAddr())
	}
}

// reply queues m, waiting for room if necessary.
func (c *client) reply(m message) {
	select {
	case c.send <- m:
	case <-time.After(writeWait):
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *client) writePump() {
	defer c.conn.Close()
	for m := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(m.kind, m.data); err != nil {
			logging.L().Debug("server: write failed", "err", err)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
