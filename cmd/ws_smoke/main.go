package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"battleship/internal/game"
	"battleship/internal/logger"
	"battleship/internal/service"
	"battleship/internal/ws"

	"github.com/gorilla/websocket"
)

var fleetRows = map[game.ShipType]int{
	game.Carrier:    0,
	game.Battleship: 2,
	game.Cruiser:    4,
	game.Submarine:  6,
	game.Destroyer:  8,
}

type player struct {
	name string
	sess service.Session
	conn *websocket.Conn
}

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	addr := flag.String("addr", "127.0.0.1:"+port, "server host:port")
	flag.Parse()

	base := "http://" + *addr + "/api/v1"

	var a, b player
	a.name, b.name = "A", "B"

	must(post(base+"/games", "", nil, &a.sess), "create game")
	must(post(base+"/games/"+a.sess.Game.ID+"/join", "", nil, &b.sess), "join game")
	gameID := a.sess.Game.ID
	logger.Info("game ready", "game_id", gameID, "a", a.sess.PlayerID, "b", b.sess.PlayerID)

	for _, p := range []*player{&a, &b} {
		url := fmt.Sprintf("ws://%s/ws?token=%s&game=%s", *addr, p.sess.Token, gameID)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		must(err, "dial "+p.name)
		defer conn.Close()
		p.conn = conn
		expect(p, ws.MsgConnected)
		expect(p, ws.MsgGameUpdate)
	}

	for _, p := range []*player{&a, &b} {
		for _, st := range game.FleetTypes {
			body := map[string]any{"ship_type": st, "row": fleetRows[st], "col": 0, "horizontal": true}
			must(post(base+"/games/"+gameID+"/place-ship", p.sess.Token, body, nil), "place "+st.String())
		}
	}

	var last service.AttackResponse
	for _, st := range game.FleetTypes {
		for col := 0; col < st.Length(); col++ {
			body := map[string]int{"row": fleetRows[st], "col": col}
			must(post(base+"/games/"+gameID+"/attack", a.sess.Token, body, &last), "attack")
		}
	}
	if last.Result.Phase != game.PhaseFinished || last.Result.Winner != game.Player1 {
		logger.Fatal("game did not finish", "phase", last.Result.Phase, "winner", last.Result.Winner)
	}

	// B's socket must eventually report the finished game.
	deadline := time.Now().Add(5 * time.Second)
	for {
		msg := read(&b, time.Until(deadline))
		if msg.Type == ws.MsgGameUpdate && msg.Game.Phase == game.PhaseFinished {
			logger.Info("B saw the result", "winner", msg.Game.Winner, "version", msg.Game.Version)
			break
		}
	}

	logger.Info("smoke test finished")
}

func post(url, token string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&e)
		return fmt.Errorf("%s: %d %s", url, res.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func read(p *player, wait time.Duration) ws.Message {
	p.conn.SetReadDeadline(time.Now().Add(wait))
	var msg ws.Message
	must(p.conn.ReadJSON(&msg), p.name+" read")
	return msg
}

func expect(p *player, msgType string) {
	if msg := read(p, 3*time.Second); msg.Type != msgType {
		logger.Fatal("unexpected message", "player", p.name, "want", msgType, "got", msg.Type)
	}
}

func must(err error, what string) {
	if err != nil {
		logger.Fatal(what+" failed", "error", err)
	}
}
