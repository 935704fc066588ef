// Package monitor streams flushed strip frames to websocket clients, giving a
// headless install a live view of what is on the wire.
package monitor

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type pixel struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type frameMsg struct {
	Seq    uint64  `json:"seq"`
	Count  int     `json:"count"`
	Pixels []pixel `json:"pixels"`
}

// State fans flushed frames out to connected clients. It is safe for
// concurrent use; a slow or dead client is dropped rather than allowed to
// stall the flush path.
type State struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	seq     uint64
}

func New(log zerolog.Logger) *State {
	return &State{
		log:      log.With().Str("comp", "monitor").Logger(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  map[*websocket.Conn]bool{},
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the peer goes away.
func (s *State) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info().Int("clients", n).Msg("client connected")

	// Drain the connection so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

func (s *State) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// PublishFrame pushes one flushed frame, given in wire (GRB) byte order, to
// every connected client.
func (s *State) PublishFrame(grb []byte, count int) {
	msg := frameMsg{Count: count, Pixels: make([]pixel, count)}
	for i := 0; i < count && i*3+2 < len(grb); i++ {
		msg.Pixels[i] = pixel{R: grb[i*3+1], G: grb[i*3+0], B: grb[i*3+2]}
	}

	s.mu.Lock()
	s.seq++
	msg.Seq = s.seq
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			s.log.Warn().Err(err).Msg("client write failed, dropping")
			s.drop(c)
		}
	}
}

// Hook adapts PublishFrame to the strip controller's flush hook signature.
func (s *State) Hook() func(grb []byte, count int) {
	return s.PublishFrame
}
