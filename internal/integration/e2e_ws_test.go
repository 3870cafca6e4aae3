package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"battleship/internal/config"
	"battleship/internal/game"
	httpserver "battleship/internal/http"
	"battleship/internal/repository"
	"battleship/internal/service"
	"battleship/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var fleetRows = map[game.ShipType]int{
	game.Carrier:    0,
	game.Battleship: 2,
	game.Cruiser:    4,
	game.Submarine:  6,
	game.Destroyer:  8,
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("test-secret")

	hub := ws.NewHub()
	t.Cleanup(hub.Close)
	games := service.NewGameService(repository.NewMemoryGameStore(), repository.NewMemoryHistoryStore(), hub, service.Options{
		PollTimeout:  200 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})

	r := gin.New()
	httpserver.RegisterRoutes(r, httpserver.Deps{
		Games: games,
		Hub:   hub,
		Config: &config.Config{
			AppVersion:    "test",
			APIRateLimit:  10000,
			APIRateWindow: 60,
		},
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()

	if out != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

func dialWS(t *testing.T, srv *httptest.Server, token, gameID string) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws%s/ws?token=%s&game=%s", strings.TrimPrefix(srv.URL, "http"), token, gameID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(ws.Message) bool) ws.Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read ws: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestE2E_WS_Match(t *testing.T) {
	srv := newServer(t)
	api := srv.URL + "/api/v1"

	var a, b service.Session
	if code := call(t, http.MethodPost, api+"/games/find-match", "", nil, &a); code != http.StatusCreated {
		t.Fatalf("find-match A = %d", code)
	}
	if code := call(t, http.MethodPost, api+"/games/find-match", "", nil, &b); code != http.StatusOK {
		t.Fatalf("find-match B = %d", code)
	}
	if a.Game.ID != b.Game.ID || b.Role != game.Player2 {
		t.Fatalf("players not matched: %s/%s role %s", a.Game.ID, b.Game.ID, b.Role)
	}
	id := a.Game.ID

	connB := dialWS(t, srv, b.Token, id)
	readUntil(t, connB, func(m ws.Message) bool { return m.Type == ws.MsgConnected })
	readUntil(t, connB, func(m ws.Message) bool { return m.Type == ws.MsgGameUpdate })

	for _, st := range game.FleetTypes {
		body := map[string]any{"ship_type": st.String(), "row": fleetRows[st], "col": 0, "horizontal": true}
		if code := call(t, http.MethodPost, api+"/games/"+id+"/place-ship", a.Token, body, nil); code != http.StatusOK {
			t.Fatalf("place %s for A = %d", st, code)
		}
	}

	// B only ever sees A's ships masked.
	update := readUntil(t, connB, func(m ws.Message) bool {
		return m.Type == ws.MsgGameUpdate && m.Game.Player1Ready
	})
	if n := update.Game.Player1Board.Count(game.CellShip); n != 0 {
		t.Fatalf("B's push leaks %d of A's ship cells", n)
	}
	for _, s := range update.Game.Player1Ships {
		if len(s.Positions) != 0 {
			t.Fatalf("B's push leaks ship positions")
		}
	}

	for _, st := range game.FleetTypes {
		body := map[string]any{"ship_type": st.String(), "row": fleetRows[st], "col": 0, "horizontal": true}
		if code := call(t, http.MethodPost, api+"/games/"+id+"/place-ship", b.Token, body, nil); code != http.StatusOK {
			t.Fatalf("place %s for B = %d", st, code)
		}
	}

	if code := call(t, http.MethodPost, api+"/games/"+id+"/attack", b.Token, map[string]int{"row": 0, "col": 0}, nil); code != http.StatusConflict {
		t.Fatalf("out of turn attack = %d; want 409", code)
	}
	if code := call(t, http.MethodPost, api+"/games/"+id+"/attack", a.Token, map[string]int{"row": 10, "col": 0}, nil); code != http.StatusBadRequest {
		t.Fatalf("out of range attack = %d; want 400", code)
	}

	var last service.AttackResponse
	for _, st := range game.FleetTypes {
		for col := 0; col < st.Length(); col++ {
			if code := call(t, http.MethodPost, api+"/games/"+id+"/attack", a.Token, map[string]int{"row": fleetRows[st], "col": col}, &last); code != http.StatusOK {
				t.Fatalf("attack (%d,%d) = %d", fleetRows[st], col, code)
			}
		}
	}
	if last.Result.Phase != game.PhaseFinished || last.Result.Winner != game.Player1 {
		t.Fatalf("final attack = %+v", last.Result)
	}

	final := readUntil(t, connB, func(m ws.Message) bool {
		return m.Type == ws.MsgGameUpdate && m.Game.Phase == game.PhaseFinished
	})
	if final.Game.Winner != game.Player1 || final.Game.You != game.Player2 {
		t.Fatalf("B final view = winner %s you %s", final.Game.Winner, final.Game.You)
	}

	var rematch struct {
		Game *game.View `json:"game"`
	}
	if code := call(t, http.MethodPost, api+"/games/"+id+"/rematch", b.Token, nil, &rematch); code != http.StatusOK {
		t.Fatalf("rematch = %d", code)
	}
	if rematch.Game.CurrentTurn != game.Player2 {
		t.Fatalf("rematch first turn = %s; want loser", rematch.Game.CurrentTurn)
	}
	linked := readUntil(t, connB, func(m ws.Message) bool { return m.Game != nil && m.Game.RematchID != "" })
	if linked.Game.RematchID != rematch.Game.ID {
		t.Fatalf("pushed rematch id %q; want %q", linked.Game.RematchID, rematch.Game.ID)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		var history struct {
			Games []map[string]any `json:"games"`
		}
		if code := call(t, http.MethodGet, api+"/me/games", a.Token, nil, &history); code != http.StatusOK {
			t.Fatalf("me/games = %d", code)
		}
		if len(history.Games) == 1 {
			if history.Games[0]["result"] != "win" {
				t.Fatalf("history = %v", history.Games[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("history never recorded")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestE2E_AccessControl(t *testing.T) {
	srv := newServer(t)
	api := srv.URL + "/api/v1"

	var a, stranger service.Session
	call(t, http.MethodPost, api+"/games", "", nil, &a)
	call(t, http.MethodPost, api+"/games", "", nil, &stranger)

	if code := call(t, http.MethodGet, api+"/games/"+a.Game.ID, "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous state = %d", code)
	}
	if code := call(t, http.MethodGet, api+"/games/"+a.Game.ID, stranger.Token, nil, nil); code != http.StatusForbidden {
		t.Fatalf("stranger state = %d", code)
	}
	if code := call(t, http.MethodGet, api+"/games/nope", a.Token, nil, nil); code != http.StatusNotFound {
		t.Fatalf("missing game = %d", code)
	}
	if code := call(t, http.MethodPost, api+"/games/"+a.Game.ID+"/place-ship", a.Token, map[string]any{"ship_type": "canoe", "row": 0, "col": 0}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown ship = %d", code)
	}

	var joined service.Session
	if code := call(t, http.MethodPost, api+"/games/"+a.Game.ID+"/join", stranger.Token, nil, &joined); code != http.StatusOK {
		t.Fatalf("join = %d", code)
	}
	if joined.PlayerID != stranger.PlayerID {
		t.Fatalf("join did not reuse the caller's identity")
	}
	if code := call(t, http.MethodPost, api+"/games/"+a.Game.ID+"/join", "", nil, nil); code != http.StatusConflict {
		t.Fatalf("third join = %d; want 409", code)
	}

	var open struct {
		Games []service.OpenGame `json:"games"`
	}
	call(t, http.MethodGet, api+"/games/open", "", nil, &open)
	if len(open.Games) != 1 || open.Games[0].ID != stranger.Game.ID {
		t.Fatalf("open games = %+v", open.Games)
	}
}

func TestE2E_PollAndSSE(t *testing.T) {
	srv := newServer(t)
	api := srv.URL + "/api/v1"

	var a service.Session
	call(t, http.MethodPost, api+"/games", "", nil, &a)

	var poll service.PollResult
	url := fmt.Sprintf("%s/games/%s/poll?since=%d", api, a.Game.ID, a.Game.Version)
	if code := call(t, http.MethodGet, url, a.Token, nil, &poll); code != http.StatusOK {
		t.Fatalf("poll = %d", code)
	}
	if poll.Updated {
		t.Fatalf("idle poll reported an update")
	}
	if code := call(t, http.MethodGet, api+"/games/"+a.Game.ID+"/poll?since=x", a.Token, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bad since = %d", code)
	}

	req, _ := http.NewRequest(http.MethodGet, api+"/games/"+a.Game.ID+"/events?token="+a.Token, nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	events := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(res.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event:"); ok {
				events <- name
			}
			if data, ok := strings.CutPrefix(scanner.Text(), "data:"); ok && strings.Contains(data, `"player2_id"`) {
				events <- "joined"
			}
		}
		close(events)
	}()

	want := []string{ws.MsgConnected, ws.MsgGameUpdate}
	for _, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Fatalf("event = %q; want %q", got, w)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("no %s event", w)
		}
	}

	call(t, http.MethodPost, api+"/games/"+a.Game.ID+"/join", "", nil, nil)

	timeout := time.After(3 * time.Second)
	for {
		select {
		case got, ok := <-events:
			if !ok {
				t.Fatalf("stream closed before join was pushed")
			}
			if got == "joined" {
				return
			}
		case <-timeout:
			t.Fatalf("join was not pushed over SSE")
		}
	}
}
