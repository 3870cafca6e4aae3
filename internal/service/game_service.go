package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"battleship/internal/domain"
	"battleship/internal/game"
	"battleship/internal/logger"
	"battleship/internal/repository"

	"github.com/google/uuid"
)

// maxAttempts bounds the read-modify-write loop on a contended game.
const maxAttempts = 3

// errUnchanged lets a mutation finish without writing.
var errUnchanged = errors.New("unchanged")

// Publisher fans masked views out to subscribers of a game.
// Delivery is best effort and must not block.
type Publisher interface {
	Publish(gameID string, views map[game.Role]*game.View)
}

type Options struct {
	PollTimeout  time.Duration
	PollInterval time.Duration
}

// Session is what a player gets back after creating or joining a game.
type Session struct {
	PlayerID string     `json:"player_id"`
	Token    string     `json:"token"`
	Role     game.Role  `json:"role"`
	Created  bool       `json:"created"`
	Game     *game.View `json:"game"`
}

type PlaceResult struct {
	Ship game.Ship  `json:"ship"`
	Game *game.View `json:"game"`
}

type AttackResponse struct {
	Result game.AttackResult `json:"result"`
	Game   *game.View        `json:"game"`
}

type PollResult struct {
	Game    *game.View `json:"game"`
	Updated bool       `json:"updated"`
}

type OpenGame struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// GameService is the operation surface over the store. Every mutation is
// a conditional update against the version it read.
type GameService struct {
	store     repository.GameStore
	history   repository.HistoryStore
	publisher Publisher
	opts      Options

	now   func() time.Time
	newID func() string
}

func NewGameService(store repository.GameStore, history repository.HistoryStore, publisher Publisher, opts Options) *GameService {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	return &GameService{
		store:     store,
		history:   history,
		publisher: publisher,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// CreateGame opens a new game seated with playerID as player1. An empty
// playerID gets a fresh identity.
func (s *GameService) CreateGame(ctx context.Context, playerID string) (*Session, error) {
	return s.createGame(ctx, playerID, "create")
}

// createGame counts the new game once under origin.
func (s *GameService) createGame(ctx context.Context, playerID, origin string) (*Session, error) {
	if playerID == "" {
		playerID = s.newID()
	}

	g := game.New(s.newID(), playerID, s.now())
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}
	GamesCreated.WithLabelValues(origin).Inc()
	logger.ForGame(g.ID, string(game.Player1)).Info("game created")

	return s.session(g, playerID, game.Player1, true)
}

// JoinGame seats playerID as player2. Joining a game the player already
// sits in returns their existing seat.
func (s *GameService) JoinGame(ctx context.Context, gameID, playerID string) (*Session, error) {
	if playerID == "" {
		playerID = s.newID()
	}

	g, err := s.mutate(ctx, gameID, "join", func(g *game.Game) error {
		if _, err := g.RoleOf(playerID); err == nil {
			return errUnchanged
		}
		return g.Join(playerID, s.now())
	})
	if err != nil {
		return nil, err
	}

	role, err := g.RoleOf(playerID)
	if err != nil {
		return nil, err
	}
	if role == game.Player2 {
		logger.ForGame(g.ID, string(role)).Info("player joined")
	}
	s.publish(g)

	return s.session(g, playerID, role, false)
}

// FindMatch joins the oldest open game, resuming the caller's own open game
// if they already have one. With nothing to join it creates a new game.
func (s *GameService) FindMatch(ctx context.Context, playerID string) (*Session, error) {
	if playerID == "" {
		playerID = s.newID()
	}

	open, err := s.store.FindOpen(ctx, 5)
	if err != nil {
		return nil, err
	}

	for _, g := range open {
		if g.Player1ID == playerID {
			return s.session(g, playerID, game.Player1, false)
		}
	}

	for _, g := range open {
		sess, err := s.JoinGame(ctx, g.ID, playerID)
		switch {
		case err == nil:
			return sess, nil
		case errors.Is(err, game.ErrGameFull),
			errors.Is(err, game.ErrInvalidPhase),
			errors.Is(err, repository.ErrNotFound),
			errors.Is(err, repository.ErrPreconditionFailed):
			continue
		default:
			return nil, err
		}
	}

	return s.createGame(ctx, playerID, "find_match")
}

func (s *GameService) PlaceShip(ctx context.Context, gameID, playerID string, t game.ShipType, row, col int, horizontal bool) (*PlaceResult, error) {
	var (
		role game.Role
		ship game.Ship
	)
	g, err := s.mutate(ctx, gameID, "place_ship", func(g *game.Game) error {
		var err error
		if role, err = g.RoleOf(playerID); err != nil {
			return err
		}
		ship, err = g.PlaceShip(role, t, row, col, horizontal, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	l := logger.ForGame(g.ID, string(role))
	l.Debug("ship placed", "ship", ship.Type, "row", row, "col", col, "horizontal", horizontal)
	if g.Phase == game.PhasePlaying {
		l.Info("battle started", "first_turn", g.CurrentTurn)
	}
	s.publish(g)

	return &PlaceResult{Ship: ship, Game: game.NewView(g, role)}, nil
}

func (s *GameService) Attack(ctx context.Context, gameID, playerID string, row, col int) (*AttackResponse, error) {
	var (
		role game.Role
		res  game.AttackResult
	)
	g, err := s.mutate(ctx, gameID, "attack", func(g *game.Game) error {
		var err error
		if role, err = g.RoleOf(playerID); err != nil {
			return err
		}
		res, err = g.Attack(role, row, col, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	ShotsFired.WithLabelValues(shotOutcome(res.Sunk, res.Hit)).Inc()
	if res.Phase == game.PhaseFinished {
		GamesFinished.Inc()
		logger.ForGame(g.ID, string(role)).Info("game finished", "winner", g.Winner)
		s.recordHistory(g)
	}
	s.publish(g)

	return &AttackResponse{Result: res, Game: game.NewView(g, role)}, nil
}

// State returns the caller's masked view.
func (s *GameService) State(ctx context.Context, gameID, playerID string) (*game.View, error) {
	g, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	role, err := g.RoleOf(playerID)
	if err != nil {
		return nil, err
	}
	return game.NewView(g, role), nil
}

// Poll waits until the game moves past version since, re-reading every
// PollInterval. After PollTimeout it returns the latest state with
// Updated false. since <= 0 returns at once.
func (s *GameService) Poll(ctx context.Context, gameID, playerID string, since int64) (*PollResult, error) {
	deadline := time.NewTimer(s.opts.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	expired := false
	for {
		g, err := s.store.Get(ctx, gameID)
		if err != nil {
			return nil, err
		}
		role, err := g.RoleOf(playerID)
		if err != nil {
			return nil, err
		}

		changed := since <= 0 || g.Version > since
		if changed || expired {
			return &PollResult{Game: game.NewView(g, role), Updated: changed}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			expired = true
		case <-ticker.C:
		}
	}
}

// Rematch links a finished game to a fresh one for the same two players.
// Whichever player asks first reserves the new id on the finished game, so
// both requests end up in the same rematch.
func (s *GameService) Rematch(ctx context.Context, gameID, playerID string) (*game.View, error) {
	var role game.Role
	old, err := s.mutate(ctx, gameID, "rematch", func(g *game.Game) error {
		var err error
		if role, err = g.RoleOf(playerID); err != nil {
			return err
		}
		if g.Phase != game.PhaseFinished {
			return fmt.Errorf("%w: rematch needs a finished game, game is %s", game.ErrInvalidPhase, g.Phase)
		}
		if g.RematchID != "" {
			return errUnchanged
		}
		g.RematchID = s.newID()
		g.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	next, created, err := s.ensureRematch(ctx, old)
	if err != nil {
		return nil, err
	}
	if created {
		GamesCreated.WithLabelValues("rematch").Inc()
		logger.ForGame(next.ID, "").Info("rematch created", "previous_game_id", old.ID, "first_turn", next.FirstTurn)
		s.publish(old)
		s.publish(next)
	}

	return game.NewView(next, role), nil
}

// ensureRematch returns the game old.RematchID points at, creating it when
// the reserving request has not done so yet.
func (s *GameService) ensureRematch(ctx context.Context, old *game.Game) (*game.Game, bool, error) {
	next, err := s.store.Get(ctx, old.RematchID)
	if err == nil {
		return next, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	next, err = old.Rematch(old.RematchID, s.now())
	if err != nil {
		return nil, false, err
	}
	err = s.store.Create(ctx, next)
	if errors.Is(err, repository.ErrPreconditionFailed) {
		next, err = s.store.Get(ctx, old.RematchID)
		return next, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

func (s *GameService) OpenGames(ctx context.Context, limit int) ([]OpenGame, error) {
	games, err := s.store.FindOpen(ctx, limit)
	if err != nil {
		return nil, err
	}
	res := make([]OpenGame, 0, len(games))
	for _, g := range games {
		res = append(res, OpenGame{ID: g.ID, CreatedAt: g.CreatedAt})
	}
	return res, nil
}

func (s *GameService) History(ctx context.Context, playerID string, limit int) ([]*domain.GameHistory, error) {
	if s.history == nil {
		return []*domain.GameHistory{}, nil
	}
	records, err := s.history.GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*domain.GameHistory{}
	}
	return records, nil
}

// Ping reports whether the game store is reachable.
func (s *GameService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// mutate runs fn on a fresh copy of the game and commits it with a
// conditional update. A lost race re-reads and re-validates, so fn may run
// more than once. Errors from fn leave the stored game untouched.
func (s *GameService) mutate(ctx context.Context, gameID, op string, fn func(g *game.Game) error) (*game.Game, error) {
	for attempt := 1; ; attempt++ {
		g, err := s.store.Get(ctx, gameID)
		if err != nil {
			return nil, err
		}

		if err := fn(g); err != nil {
			if errors.Is(err, errUnchanged) {
				return g, nil
			}
			return nil, err
		}

		err = s.store.Update(ctx, g)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, repository.ErrPreconditionFailed) || attempt == maxAttempts {
			return nil, err
		}
		StoreConflicts.WithLabelValues(op).Inc()
		logger.ForGame(gameID, "").Debug("conditional update lost, retrying", "op", op, "attempt", attempt)
	}
}

func (s *GameService) session(g *game.Game, playerID string, role game.Role, created bool) (*Session, error) {
	token, err := GenerateJWT(playerID)
	if err != nil {
		return nil, err
	}
	return &Session{
		PlayerID: playerID,
		Token:    token,
		Role:     role,
		Created:  created,
		Game:     game.NewView(g, role),
	}, nil
}

func (s *GameService) publish(g *game.Game) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(g.ID, game.Views(g))
}

// recordHistory stores one row per player in the background. Failures are
// logged and never affect the finished game.
func (s *GameService) recordHistory(g *game.Game) {
	if s.history == nil {
		return
	}

	records := make([]*domain.GameHistory, 0, 2)
	for _, r := range []game.Role{game.Player1, game.Player2} {
		opponent := r.Opponent()
		result := domain.GameResultLose
		if g.Winner == r {
			result = domain.GameResultWin
		}
		target := g.BoardOf(opponent)
		own := g.FleetOf(r)
		records = append(records, &domain.GameHistory{
			PlayerID:   g.PlayerID(r),
			GameID:     g.ID,
			OpponentID: g.PlayerID(opponent),
			Role:       string(r),
			Result:     result,
			ShotsFired: target.Shots(),
			ShipsLost:  len(own) - own.Afloat(),
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, rec := range records {
			if err := s.history.Create(ctx, rec); err != nil {
				logger.ForGame(rec.GameID, rec.Role).Error("failed to record game history", "error", err)
			}
		}
	}()
}
