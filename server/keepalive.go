package server

import (
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// LoopKeepAlive pings every peer each interval and drops the ones that
// never answered the previous round.
func (s *GameServer) LoopKeepAlive() {
	log.Printf("LoopKeepAlive starting, interval %v", pingInterval)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.quit:
			log.Printf("LoopKeepAlive stopped")
			return
		}
	}
}

// sweep marks every peer dead and pings it; the pong handler marks it
// alive again. Whoever stayed marked dead since the last round gets
// closed, which ends its read loop and runs the disconnect path.
func (s *GameServer) sweep() {
	for _, ps := range s.snapshotSessions() {
		if !ps.swapAlive(false) {
			log.Warnf("LoopKeepAlive peer %s missed a round, closing", ps.Id)
			ps.Conn.Close()
			continue
		}
		deadline := time.Now().Add(writeWait)
		if err := ps.Conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil && err != websocket.ErrCloseSent {
			log.Printf("LoopKeepAlive ping %s err %v", ps.Id, err)
		}
	}
}
