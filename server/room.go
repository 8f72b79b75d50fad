package server

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Shahrukh-jamil/pong/model"
)

// NewRoom wires a fresh match and starts its goroutine. The caller decides
// the sides: the matchmaker flips a coin, a rematch hands them over swapped.
func NewRoom(s *GameServer, top, bottom *PlayerSession, rng *rand.Rand) *Room {
	r := newRoom(s, top, bottom, rng)
	go r.Loop()
	return r
}

// newRoom builds the room without the goroutine so tests can drive the
// tick and the handlers directly.
func newRoom(s *GameServer, top, bottom *PlayerSession, rng *rand.Rand) *Room {
	now := time.Now()
	r := &Room{
		Id:          uuid.New().String(),
		Server:      s,
		Paddles:     make(chan PaddleEvent, paddleBuffer),
		Leaves:      make(chan *PlayerSession),
		Rematches:   make(chan model.Side),
		done:        make(chan struct{}),
		rng:         rng,
		Top:         PlayerSlot{Session: top, Name: top.Name(), Hearts: model.HEARTS_START},
		Bottom:      PlayerSlot{Session: bottom, Name: bottom.Name(), Hearts: model.HEARTS_START},
		Phase:       model.PhaseCountdown,
		TopX:        0.5,
		BottomX:     0.5,
		NextPhaseAt: now.Add(model.COUNTDOWN_MS * time.Millisecond),
		LastTickAt:  now,
	}
	r.resetBall()
	if rng.Intn(2) == 0 {
		r.ServeToward = model.SideTop
	} else {
		r.ServeToward = model.SideBottom
	}
	top.setRoom(r, model.SideTop)
	bottom.setRoom(r, model.SideBottom)
	s.registerRoom(r)
	top.trySend(model.MakeMatchFound(r.Id, r.Top.Name, r.Bottom.Name, model.SideTop))
	bottom.trySend(model.MakeMatchFound(r.Id, r.Top.Name, r.Bottom.Name, model.SideBottom))
	log.Printf("Room %s created, %s(top) vs %s(bottom)", r.Id, r.Top.Name, r.Bottom.Name)
	return r
}

// Loop owns all room state. The tick arm integrates, the send arm
// broadcasts, everything else arrives as events. Returns when the room
// is destroyed.
func (r *Room) Loop() {
	tick := time.NewTicker(time.Second / model.TICK_RATE)
	send := time.NewTicker(time.Second / model.SEND_RATE)
	defer tick.Stop()
	defer send.Stop()
	for {
		select {
		case now := <-tick.C:
			r.tick(now)
		case <-send.C:
			r.broadcast(time.Now())
		case pe := <-r.Paddles:
			r.movePaddle(pe.Side, pe.X)
		case side := <-r.Rematches:
			if r.handleRematch(side) {
				return
			}
		case ps := <-r.Leaves:
			if r.handleLeave(ps) {
				return
			}
		}
	}
}

// offerPaddle is lossy: when the buffer is full the next event supersedes
// the dropped one anyway.
func (r *Room) offerPaddle(side model.Side, x float64) {
	select {
	case r.Paddles <- PaddleEvent{Side: side, X: x}:
	default:
	}
}

// offerLeave blocks until the room takes the event. False means the room
// was destroyed first and the caller should re-check the session's room.
func (r *Room) offerLeave(ps *PlayerSession) bool {
	select {
	case r.Leaves <- ps:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) offerRematch(side model.Side) {
	select {
	case r.Rematches <- side:
	case <-r.done:
	}
}

// tick advances the phase machine. Physics only runs while playing; in
// gameover there is nothing to advance.
func (r *Room) tick(now time.Time) {
	switch r.Phase {
	case model.PhaseCountdown, model.PhaseBetween:
		if !now.Before(r.NextPhaseAt) {
			r.serveBall()
		}
	case model.PhasePlaying:
		r.step(now)
	}
}

func (r *Room) broadcast(now time.Time) {
	t := now.UnixMilli()
	// the wall clock may step backwards, the t field must not
	if t < r.lastT {
		t = r.lastT
	}
	r.lastT = t
	hearts := r.hearts()
	for _, side := range []model.Side{model.SideTop, model.SideBottom} {
		slot := r.slot(side)
		if slot.Session == nil {
			continue
		}
		slot.Session.trySend(model.StateMessage{
			Type:    model.MSG_STATE,
			T:       t,
			Phase:   r.Phase,
			Ball:    model.BallState{X: r.Ball.X, Y: r.Ball.Y},
			Paddles: model.PaddleState{TopX: r.TopX, BottomX: r.BottomX},
			Hearts:  hearts,
			Params:  model.MakeParams(),
			You:     side,
		})
	}
}

// movePaddle clamps input, the court edges are hard limits.
func (r *Room) movePaddle(side model.Side, x float64) {
	x = clamp(x, 0, 1)
	if side == model.SideTop {
		r.TopX = x
	} else {
		r.BottomX = x
	}
}

// handleLeave empties the leaver's slot; a live opponent wins by forfeit.
// Reports whether the room was destroyed.
func (r *Room) handleLeave(ps *PlayerSession) bool {
	var side model.Side
	switch ps {
	case r.Top.Session:
		side = model.SideTop
	case r.Bottom.Session:
		side = model.SideBottom
	default:
		// stale event, the session already detached
		return false
	}
	if r.Phase != model.PhaseGameOver && r.slot(side.Opposite()).Session != nil {
		winner := side.Opposite()
		r.endGame(&winner, model.REASON_DISCONNECT)
	}
	r.slot(side).Session = nil
	ps.clearRoom()
	log.Printf("Room %s %s side left", r.Id, side)
	if r.Top.Session == nil && r.Bottom.Session == nil {
		r.destroy()
		return true
	}
	return false
}

// handleRematch counts votes while in gameover. Unanimity builds the next
// room with sides swapped and retires this one. Reports destruction.
func (r *Room) handleRematch(side model.Side) bool {
	if r.Phase != model.PhaseGameOver {
		return false
	}
	if r.slot(side).Session == nil {
		return false
	}
	voted := &r.RematchTop
	if side == model.SideBottom {
		voted = &r.RematchBottom
	}
	if !*voted {
		*voted = true
		if other := r.slot(side.Opposite()); other.Session != nil {
			other.Session.trySend(model.MakeRematchOffered())
		}
		log.Printf("Room %s %s side wants a rematch", r.Id, side)
	}
	if !r.RematchTop || !r.RematchBottom {
		return false
	}
	if r.Top.Session == nil || r.Bottom.Session == nil {
		return false
	}
	topSess, bottomSess := r.Top.Session, r.Bottom.Session
	next := NewRoom(r.Server, bottomSess, topSess, r.rng)
	topSess.trySend(model.MakeRematchStart())
	bottomSess.trySend(model.MakeRematchStart())
	log.Printf("Room %s rematch agreed, continuing as room %s", r.Id, next.Id)
	r.destroy()
	return true
}

func (r *Room) endGame(winner *model.Side, reason string) {
	r.Phase = model.PhaseGameOver
	r.Ball.VX = 0
	r.Ball.VY = 0
	r.sendBoth(model.MakeGameOver(winner, reason, r.hearts()))
	if winner != nil {
		log.Printf("Room %s game over, %s wins (%s)", r.Id, *winner, reason)
	} else {
		log.Printf("Room %s game over, no winner (%s)", r.Id, reason)
	}
}

// resetBall parks the ball at center until the next serve.
func (r *Room) resetBall() {
	r.Ball = Ball{X: model.W / 2, Y: model.H / 2, Speed: model.INIT_BALL_SPEED}
}

func (r *Room) destroy() {
	close(r.done)
	r.Server.unregisterRoom(r)
	log.Printf("Room %s destroyed", r.Id)
}

func (r *Room) slot(side model.Side) *PlayerSlot {
	if side == model.SideTop {
		return &r.Top
	}
	return &r.Bottom
}

func (r *Room) hearts() model.Hearts {
	return model.Hearts{Top: r.Top.Hearts, Bottom: r.Bottom.Hearts}
}

func (r *Room) sendBoth(msg any) {
	if r.Top.Session != nil {
		r.Top.Session.trySend(msg)
	}
	if r.Bottom.Session != nil {
		r.Bottom.Session.trySend(msg)
	}
}
