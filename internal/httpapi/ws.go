package httpapi

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/protocol"
)

const (
	wsWriteTimeout  = 10 * time.Second
	wsReadLimit     = 8 << 20
	inboundQueueLen = 32
)

// wsSender serializes frame writes to one websocket connection. The session
// loop is the only steady-state writer, but the mutex keeps the transport
// safe if that ever changes.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsSender) Send(frame any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteJSON(frame)
}

// handleChatWS accepts one voice-relay connection, builds a session with its
// own collaborators, and pumps inbound frames into the session loop. The
// reader short-circuits user_speaking straight to the interrupt signal so
// barge-in lands even while a reply run holds the loop.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sess := s.registry.NewSession(&wsSender{conn: conn})
	s.sessions.Register(sess.ID)
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
		s.metrics.SessionEvents.WithLabelValues("connected").Inc()
	}
	log.Printf("session %s: connected from %s", sess.ID, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan any, inboundQueueLen)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		sess.Run(ctx, inbound)
	}()

	conn.SetReadLimit(wsReadLimit)

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			log.Printf("session %s: dropping frame: %v", sess.ID, err)
			continue
		}
		if s.metrics != nil {
			s.metrics.WSMessages.WithLabelValues("in", string(inboundType(parsed))).Inc()
		}
		_ = s.sessions.Touch(sess.ID)

		if _, ok := parsed.(protocol.UserSpeaking); ok {
			sess.Interrupt()
			_ = s.sessions.Interrupt(sess.ID)
		}

		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- parsed:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	sess.Close()
	if _, err := s.sessions.End(sess.ID); err == nil {
		log.Printf("session %s: disconnected", sess.ID)
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
		s.metrics.SessionEvents.WithLabelValues("disconnected").Inc()
	}
}

func inboundType(frame any) protocol.MessageType {
	switch m := frame.(type) {
	case protocol.UpdateSettings:
		return m.Type
	case protocol.ChatMessage:
		return m.Type
	case protocol.AudioComplete:
		return m.Type
	case protocol.UserSpeaking:
		return m.Type
	default:
		return "unknown"
	}
}
