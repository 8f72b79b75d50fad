package model

// The court is a fixed portrait rectangle in abstract units. Clients scale
// it to their viewport; the server never deals in pixels.
const (
	W = 900.0
	H = 1600.0

	TICK_RATE = 60
	SEND_RATE = 30

	// longest integration step in seconds, absorbs ticker hiccups
	MAX_DT = 0.05

	PADDING            = 70.0
	PADDLE_WIDTH_FRAC  = 0.28
	PADDLE_HEIGHT_FRAC = 0.02
	BALL_RADIUS_FRAC   = 0.018

	INIT_BALL_SPEED = 780.0
	MIN_BALL_SPEED  = 100.0
	MAX_BALL_SPEED  = 1200.0
	SPEED_UP        = 1.03

	// radians off the vertical
	MAX_BOUNCE_ANGLE = 1.05
	MAX_SERVE_ANGLE  = 0.4

	HEARTS_START = 3

	COUNTDOWN_MS      = 3000
	BETWEEN_MS        = 1500
	COUNTDOWN_SECONDS = COUNTDOWN_MS / 1000

	MAX_NAME_LEN = 16
	DEFAULT_NAME = "Player"
)

// Geometry derived from the fractions above.
const (
	PADDLE_W = W * PADDLE_WIDTH_FRAC
	PADDLE_H = H * PADDLE_HEIGHT_FRAC
	BALL_R   = W * BALL_RADIUS_FRAC
	TOP_Y    = PADDING
	BOTTOM_Y = H - PADDING
)

type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

type Phase string

const (
	PhaseCountdown Phase = "countdown"
	PhasePlaying   Phase = "playing"
	PhaseBetween   Phase = "between"
	PhaseGameOver  Phase = "gameover"
)

// Params is the derived-geometry block clients need to draw the court.
type Params struct {
	W  float64 `json:"W"`
	H  float64 `json:"H"`
	R  float64 `json:"r"`
	PW float64 `json:"pw"`
	PH float64 `json:"ph"`
}
