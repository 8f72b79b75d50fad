package model

const (
	MSG_HELLO           = "hello"
	MSG_FINDING         = "finding"
	MSG_QUEUE_CANCELLED = "queueCancelled"
	MSG_MATCH_FOUND     = "matchFound"
	MSG_STATE           = "state"
	MSG_SCORE           = "score"
	MSG_GAME_OVER       = "gameOver"
	MSG_REMATCH_OFFERED = "rematchOffered"
	MSG_REMATCH_START   = "rematchStart"
	MSG_ERROR           = "error"
)

const (
	REASON_HEARTS     = "hearts"
	REASON_DISCONNECT = "disconnect"
	REASON_TIE        = "tie"
)

type PlayerInfo struct {
	Name string `json:"name"`
	Side Side   `json:"side"`
}

type BallState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PaddleState struct {
	TopX    float64 `json:"topX"`
	BottomX float64 `json:"bottomX"`
}

type Hearts struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

type HelloMessage struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

type FindingMessage struct {
	Type      string `json:"type"`
	QueueSize int    `json:"queueSize"`
}

type QueueCancelledMessage struct {
	Type string `json:"type"`
}

type MatchFoundMessage struct {
	Type      string       `json:"type"`
	RoomId    string       `json:"roomId"`
	Players   []PlayerInfo `json:"players"`
	You       Side         `json:"you"`
	Countdown int          `json:"countdown"`
}

type StateMessage struct {
	Type    string      `json:"type"`
	T       int64       `json:"t"`
	Phase   Phase       `json:"phase"`
	Ball    BallState   `json:"ball"`
	Paddles PaddleState `json:"paddles"`
	Hearts  Hearts      `json:"hearts"`
	Params  Params      `json:"params"`
	You     Side        `json:"you"`
}

type ScoreMessage struct {
	Type     string `json:"type"`
	Hearts   Hearts `json:"hearts"`
	LastMiss Side   `json:"lastMiss"`
}

// Winner is nil on a tie, which marshals to JSON null.
type GameOverMessage struct {
	Type   string `json:"type"`
	Winner *Side  `json:"winner"`
	Reason string `json:"reason"`
	Hearts Hearts `json:"hearts"`
}

type RematchOfferedMessage struct {
	Type string `json:"type"`
}

type RematchStartMessage struct {
	Type      string `json:"type"`
	Countdown int    `json:"countdown"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func MakeHello(id string) HelloMessage {
	return HelloMessage{Type: MSG_HELLO, Id: id}
}

func MakeFinding(queueSize int) FindingMessage {
	return FindingMessage{Type: MSG_FINDING, QueueSize: queueSize}
}

func MakeQueueCancelled() QueueCancelledMessage {
	return QueueCancelledMessage{Type: MSG_QUEUE_CANCELLED}
}

func MakeMatchFound(roomId, topName, bottomName string, you Side) MatchFoundMessage {
	return MatchFoundMessage{
		Type:   MSG_MATCH_FOUND,
		RoomId: roomId,
		Players: []PlayerInfo{
			{Name: topName, Side: SideTop},
			{Name: bottomName, Side: SideBottom},
		},
		You:       you,
		Countdown: COUNTDOWN_SECONDS,
	}
}

func MakeScore(hearts Hearts, lastMiss Side) ScoreMessage {
	return ScoreMessage{Type: MSG_SCORE, Hearts: hearts, LastMiss: lastMiss}
}

func MakeGameOver(winner *Side, reason string, hearts Hearts) GameOverMessage {
	return GameOverMessage{Type: MSG_GAME_OVER, Winner: winner, Reason: reason, Hearts: hearts}
}

func MakeRematchOffered() RematchOfferedMessage {
	return RematchOfferedMessage{Type: MSG_REMATCH_OFFERED}
}

func MakeRematchStart() RematchStartMessage {
	return RematchStartMessage{Type: MSG_REMATCH_START, Countdown: COUNTDOWN_SECONDS}
}

func MakeError(message string) ErrorMessage {
	return ErrorMessage{Type: MSG_ERROR, Message: message}
}
