package server

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
)

func NewMatchmaker(s *GameServer, rng *rand.Rand) *Matchmaker {
	return &Matchmaker{server: s, rng: rng}
}

// Enqueue appends a peer seeking a match and reports the queue size and
// whether the peer was actually added. Peers already queued or already
// playing are left alone.
func (m *Matchmaker) Enqueue(ps *PlayerSession) (int, bool) {
	if ps.Room() != nil {
		return 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.queue {
		if q == ps {
			return 0, false
		}
	}
	m.queue = append(m.queue, ps)
	size := len(m.queue)
	log.Printf("Matchmaker peer %s queued, %d waiting", ps.Id, size)
	return size, true
}

// Remove is a no-op when the peer is not queued.
func (m *Matchmaker) Remove(ps *PlayerSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.queue {
		if q == ps {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			log.Printf("Matchmaker peer %s dequeued, %d waiting", ps.Id, len(m.queue))
			return
		}
	}
}

func (m *Matchmaker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// TryMatch pairs the two oldest usable peers until fewer than two remain.
// Rooms are constructed outside the queue lock.
func (m *Matchmaker) TryMatch() {
	for {
		top, bottom := m.dequeuePair()
		if top == nil {
			return
		}
		room := NewRoom(m.server, top, bottom, rand.New(rand.NewSource(m.roomSeed())))
		log.Printf("Matchmaker matched %s vs %s into room %s", top.Id, bottom.Id, room.Id)
	}
}

// dequeuePair pops entries oldest-first, discarding peers that closed or
// acquired a room since they queued, and flips a coin for sides.
func (m *Matchmaker) dequeuePair() (top, bottom *PlayerSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var a, b *PlayerSession
	for len(m.queue) > 0 && b == nil {
		ps := m.queue[0]
		m.queue = m.queue[1:]
		if !ps.usable() {
			log.Printf("Matchmaker discarding stale entry %s", ps.Id)
			continue
		}
		if a == nil {
			a = ps
		} else {
			b = ps
		}
	}
	if b == nil {
		if a != nil {
			// lone survivor stays at the head
			m.queue = append([]*PlayerSession{a}, m.queue...)
		}
		return nil, nil
	}
	if m.rng.Intn(2) == 0 {
		return a, b
	}
	return b, a
}

func (m *Matchmaker) roomSeed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Int63()
}
