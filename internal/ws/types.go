package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgConnected  = "connected"
	MsgGameUpdate = "game_update"
	MsgPong       = "pong"
	MsgError      = "error"
)
