package server

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shahrukh-jamil/pong/model"
)

type GameServer struct {
	Upgrader   *websocket.Upgrader
	Matchmaker *Matchmaker

	mu       sync.Mutex
	sessions map[string]*PlayerSession
	rooms    map[string]*Room

	quit chan struct{}
}

// PlayerSession is one connected peer. Id and Conn never change after
// construction; the fields behind mu do. MessagesToSend is drained by
// LoopChannelWrite only, and is never closed: done signals shutdown.
type PlayerSession struct {
	Id     string
	Conn   *websocket.Conn
	Server *GameServer

	mu     sync.Mutex
	name   string
	room   *Room
	side   model.Side
	alive  bool
	closed bool

	MessagesToSend chan []byte
	done           chan struct{}

	InMessages  int
	OutMessages int
}

type Matchmaker struct {
	server *GameServer

	mu    sync.Mutex
	queue []*PlayerSession
	rng   *rand.Rand
}

// PlayerSlot is one side of a room. Session goes nil when the peer
// leaves; the room survives until both slots are empty.
type PlayerSlot struct {
	Session *PlayerSession
	Name    string
	Hearts  int
}

type Ball struct {
	X, Y   float64
	VX, VY float64
	Speed  float64
}

// Room is one 1v1 match. Everything below the channels is owned by the
// room goroutine (Loop); nothing else reads or writes it.
type Room struct {
	Id     string
	Server *GameServer

	// events from session read loops into the room goroutine
	Paddles   chan PaddleEvent
	Leaves    chan *PlayerSession
	Rematches chan model.Side

	done chan struct{}
	rng  *rand.Rand

	Top    PlayerSlot
	Bottom PlayerSlot

	Phase       model.Phase
	Ball        Ball
	TopX        float64
	BottomX     float64
	ServeToward model.Side
	NextPhaseAt time.Time
	LastTickAt  time.Time

	RematchTop    bool
	RematchBottom bool

	lastT int64
}

type PaddleEvent struct {
	Side model.Side
	X    float64
}

func NewGameServer() *GameServer {
	s := &GameServer{
		Upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*PlayerSession),
		rooms:    make(map[string]*Room),
		quit:     make(chan struct{}),
	}
	s.Matchmaker = NewMatchmaker(s, rand.New(rand.NewSource(time.Now().UnixNano())))
	return s
}
