package server

import "time"

// Transport tuning. Game tuning lives in the model package.
const (
	// outbound frames and control frames get this long to go out
	writeWait = 10 * time.Second

	// liveness sweep cadence; a peer silent for two sweeps is dropped
	pingInterval = 30 * time.Second

	// inbound frames are tiny commands, anything bigger is garbage
	maxFrameSize = 512

	// per-peer outbound buffer; the protocol tolerates dropped frames
	sendBuffer = 32

	// paddle events between a read loop and a room loop
	paddleBuffer = 16
)
