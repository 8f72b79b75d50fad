package server

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Shahrukh-jamil/pong/model"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// step integrates one tick: move, reflect off the side walls, then either
// bounce off a paddle or score past an edge. Top paddle is tested first.
func (r *Room) step(now time.Time) {
	dt := now.Sub(r.LastTickAt).Seconds()
	if dt <= 0 {
		return
	}
	if dt > model.MAX_DT {
		dt = model.MAX_DT
	}
	r.LastTickAt = now

	b := &r.Ball
	b.X += b.VX * dt
	b.Y += b.VY * dt

	if b.X-model.BALL_R <= 0 {
		b.X = model.BALL_R
		b.VX = math.Abs(b.VX)
	} else if b.X+model.BALL_R >= model.W {
		b.X = model.W - model.BALL_R
		b.VX = -math.Abs(b.VX)
	}

	if b.VY < 0 && r.hitsPaddle(model.TOP_Y, r.TopX) {
		r.paddleBounce(model.SideTop, r.TopX*model.W)
		return
	}
	if b.VY > 0 && r.hitsPaddle(model.BOTTOM_Y, r.BottomX) {
		r.paddleBounce(model.SideBottom, r.BottomX*model.W)
		return
	}

	if b.Y+model.BALL_R < 0 {
		r.onScore(model.SideTop, now)
		return
	}
	if b.Y-model.BALL_R > model.H {
		r.onScore(model.SideBottom, now)
	}
}

// hitsPaddle is a plain overlap test against the paddle centered at
// (paddleX*W, y). No swept test: the longest step at max speed travels
// far less than a paddle width.
func (r *Room) hitsPaddle(y, paddleX float64) bool {
	b := &r.Ball
	cx := paddleX * model.W
	return b.Y+model.BALL_R >= y-model.PADDLE_H/2 &&
		b.Y-model.BALL_R <= y+model.PADDLE_H/2 &&
		b.X+model.BALL_R >= cx-model.PADDLE_W/2 &&
		b.X-model.BALL_R <= cx+model.PADDLE_W/2
}

// paddleBounce redirects by where the ball struck: center goes straight
// out, the edges deflect up to MAX_BOUNCE_ANGLE, every hit speeds it up.
// The vertical sign always points back into the court, so the ball cannot
// get trapped inside a paddle.
func (r *Room) paddleBounce(side model.Side, cx float64) {
	b := &r.Ball
	rel := clamp((b.X-cx)/(model.PADDLE_W/2), -1, 1)
	speed := clamp(b.Speed*model.SPEED_UP, model.MIN_BALL_SPEED, model.MAX_BALL_SPEED)
	angle := rel * model.MAX_BOUNCE_ANGLE
	b.VX = speed * math.Sin(angle)
	vy := math.Abs(speed * math.Cos(angle))
	if side == model.SideTop {
		b.VY = vy
	} else {
		b.VY = -vy
	}
	b.Speed = speed
}

// serveBall puts the ball in play toward ServeToward with a small random
// angle off the vertical.
func (r *Room) serveBall() {
	angle := (r.rng.Float64()*2 - 1) * model.MAX_SERVE_ANGLE
	dir := 1.0
	if r.ServeToward == model.SideTop {
		dir = -1.0
	}
	b := &r.Ball
	b.X = model.W / 2
	b.Y = model.H / 2
	b.Speed = model.INIT_BALL_SPEED
	b.VX = model.INIT_BALL_SPEED * math.Sin(angle)
	b.VY = dir * model.INIT_BALL_SPEED * math.Cos(angle)
	r.Phase = model.PhasePlaying
	log.Printf("Room %s serving toward %s", r.Id, r.ServeToward)
}

// onScore handles the ball leaving past the loser's edge. One heart gone;
// at zero the opponent wins. Both sides at zero is a tie, which a single
// miss cannot produce.
func (r *Room) onScore(loser model.Side, now time.Time) {
	if r.Phase != model.PhasePlaying {
		return
	}
	r.Phase = model.PhaseBetween
	slot := r.slot(loser)
	if slot.Hearts > 0 {
		slot.Hearts--
	}
	hearts := r.hearts()
	r.sendBoth(model.MakeScore(hearts, loser))
	log.Printf("Room %s miss by %s, hearts top:%d bottom:%d", r.Id, loser, hearts.Top, hearts.Bottom)
	switch {
	case r.Top.Hearts == 0 && r.Bottom.Hearts == 0:
		r.endGame(nil, model.REASON_TIE)
	case slot.Hearts == 0:
		winner := loser.Opposite()
		r.endGame(&winner, model.REASON_HEARTS)
	default:
		r.ServeToward = loser
		r.NextPhaseAt = now.Add(model.BETWEEN_MS * time.Millisecond)
		r.resetBall()
	}
}
