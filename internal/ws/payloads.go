package ws

import "battleship/internal/game"

// Message is the envelope pushed to subscribers over websocket and SSE.
type Message struct {
	Type    string     `json:"type"`
	GameID  string     `json:"game_id,omitempty"`
	Game    *game.View `json:"game,omitempty"`
	Message string     `json:"message,omitempty"`
}

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

func UpdateMessage(v *game.View) Message {
	return Message{Type: MsgGameUpdate, GameID: v.ID, Game: v}
}

func ConnectedMessage(gameID string) Message {
	return Message{Type: MsgConnected, GameID: gameID}
}

func ErrorMessage(text string) Message {
	return Message{Type: MsgError, Message: text}
}
