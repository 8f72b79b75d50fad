package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Shahrukh-jamil/pong/model"
)

func NewPlayerSession(s *GameServer, conn *websocket.Conn) *PlayerSession {
	return &PlayerSession{
		Id:             uuid.New().String(),
		Conn:           conn,
		Server:         s,
		name:           model.DEFAULT_NAME,
		alive:          true,
		MessagesToSend: make(chan []byte, sendBuffer),
		done:           make(chan struct{}),
	}
}

// HandleHttpCall upgrades the connection and runs the session until the
// peer goes away. The handler goroutine doubles as the read loop.
func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		ps := NewPlayerSession(s, conn)
		conn.SetReadLimit(maxFrameSize)
		conn.SetPongHandler(func(string) error {
			ps.markAlive()
			return nil
		})
		s.register(ps)
		log.Printf("HandleHttpCall peer %s connected from %s", ps.Id, conn.RemoteAddr())
		go ps.LoopChannelWrite()
		ps.trySend(model.MakeHello(ps.Id))
		ps.LoopChannelRead()
		s.dropPlayerSession(ps)
	}
}

func (s *GameServer) register(ps *PlayerSession) {
	s.mu.Lock()
	s.sessions[ps.Id] = ps
	n := len(s.sessions)
	s.mu.Unlock()
	log.Printf("GameServer %d peers connected", n)
}

func (s *GameServer) unregister(ps *PlayerSession) {
	s.mu.Lock()
	delete(s.sessions, ps.Id)
	s.mu.Unlock()
}

func (s *GameServer) snapshotSessions() []*PlayerSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*PlayerSession, 0, len(s.sessions))
	for _, ps := range s.sessions {
		out = append(out, ps)
	}
	return out
}

func (s *GameServer) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *GameServer) registerRoom(r *Room) {
	s.mu.Lock()
	s.rooms[r.Id] = r
	n := len(s.rooms)
	s.mu.Unlock()
	log.Printf("GameServer %d rooms live", n)
}

func (s *GameServer) unregisterRoom(r *Room) {
	s.mu.Lock()
	delete(s.rooms, r.Id)
	s.mu.Unlock()
}

func (s *GameServer) hasRoom(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[id]
	return ok
}

func (s *GameServer) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Shutdown stops the keep-alive loop. Rooms and sessions are ephemeral
// and die with the process.
func (s *GameServer) Shutdown() {
	close(s.quit)
}

// dropPlayerSession finishes a dead connection: sends become no-ops, the
// queue entry and room slot are released, the registry entry goes away.
func (s *GameServer) dropPlayerSession(ps *PlayerSession) {
	ps.markClosed()
	s.detach(ps)
	s.unregister(ps)
	ps.Conn.Close()
	log.Printf("GameServer peer %s gone", ps.Id)
}

// detach backs both the leaveRoom command and the disconnect path: out of
// the queue, out of the room. The room goroutine clears the session's room
// fields when it processes the leave. A room can be superseded by a rematch
// room between lookup and delivery; retry against the successor.
func (s *GameServer) detach(ps *PlayerSession) {
	s.Matchmaker.Remove(ps)
	for {
		room := ps.Room()
		if room == nil {
			return
		}
		if room.offerLeave(ps) {
			return
		}
	}
}

func (ps *PlayerSession) Name() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.name
}

func (ps *PlayerSession) setName(name string) {
	ps.mu.Lock()
	ps.name = name
	ps.mu.Unlock()
}

func (ps *PlayerSession) Room() *Room {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.room
}

func (ps *PlayerSession) roomAndSide() (*Room, model.Side) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.room, ps.side
}

func (ps *PlayerSession) setRoom(r *Room, side model.Side) {
	ps.mu.Lock()
	ps.room = r
	ps.side = side
	ps.mu.Unlock()
}

func (ps *PlayerSession) clearRoom() {
	ps.mu.Lock()
	ps.room = nil
	ps.side = ""
	ps.mu.Unlock()
}

func (ps *PlayerSession) markAlive() {
	ps.mu.Lock()
	ps.alive = true
	ps.mu.Unlock()
}

// swapAlive stores v and reports the previous value.
func (ps *PlayerSession) swapAlive(v bool) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	prev := ps.alive
	ps.alive = v
	return prev
}

func (ps *PlayerSession) markClosed() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	ps.closed = true
	close(ps.done)
}

func (ps *PlayerSession) isClosed() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.closed
}

// usable tells the matchmaker whether this peer can still be paired.
func (ps *PlayerSession) usable() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return !ps.closed && ps.room == nil
}

// trySend drops rather than blocks: a slow consumer loses frames and the
// 30 Hz state stream papers over the gap.
func (ps *PlayerSession) trySend(msg any) {
	buf, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("trySend marshal err %v", err)
		return
	}
	if ps.isClosed() {
		return
	}
	select {
	case ps.MessagesToSend <- buf:
	default:
		log.Warnf("trySend peer %s buffer full, dropping frame", ps.Id)
	}
}

func (ps *PlayerSession) LoopChannelRead() {
	defer func() {
		log.Printf("LoopChannelRead %s ended after %d frames", ps.Id, ps.InMessages)
	}()
	for {
		_, raw, err := ps.Conn.ReadMessage()
		if err != nil {
			log.Printf("LoopChannelRead %s read err %v", ps.Id, err)
			return
		}
		ps.InMessages++
		ps.dispatch(raw)
	}
}

// dispatch routes one inbound frame. Non-object frames go on the floor,
// unknown types get an error reply, out-of-context commands are ignored.
func (ps *PlayerSession) dispatch(raw []byte) {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 || raw[0] != '{' {
		return
	}
	var msg model.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	switch msg.Type {
	case model.MSG_JOIN_QUEUE:
		ps.setName(model.SanitizeName(msg.Name))
		if size, ok := ps.Server.Matchmaker.Enqueue(ps); ok {
			ps.trySend(model.MakeFinding(size))
			ps.Server.Matchmaker.TryMatch()
		}
	case model.MSG_CANCEL_QUEUE:
		ps.Server.Matchmaker.Remove(ps)
		ps.trySend(model.MakeQueueCancelled())
	case model.MSG_PADDLE:
		if room, side := ps.roomAndSide(); room != nil {
			room.offerPaddle(side, msg.X)
		}
	case model.MSG_REMATCH_REQUEST:
		if room, side := ps.roomAndSide(); room != nil {
			room.offerRematch(side)
		}
	case model.MSG_LEAVE_ROOM:
		ps.Server.detach(ps)
	default:
		ps.trySend(model.MakeError("Unknown message type"))
	}
}

// this loop only consumes, no worries about a stuck full buffer
func (ps *PlayerSession) LoopChannelWrite() {
	defer func() {
		log.Printf("LoopChannelWrite %s ended after %d frames", ps.Id, ps.OutMessages)
	}()
	for {
		select {
		case buf := <-ps.MessagesToSend:
			ps.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ps.Conn.WriteMessage(websocket.TextMessage, buf); err != nil {
				log.Printf("LoopChannelWrite %s write err %v", ps.Id, err)
				ps.Conn.Close()
				return
			}
			ps.OutMessages++
		case <-ps.done:
			return
		}
	}
}
