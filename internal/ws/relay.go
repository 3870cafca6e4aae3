package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"battleship/internal/game"
	"battleship/internal/logger"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const relayPrefix = "battleship:game:"

type relayEnvelope struct {
	Origin string                   `json:"origin"`
	Views  map[game.Role]*game.View `json:"views"`
}

// relayBuffer bounds how many outgoing updates wait for redis.
const relayBuffer = 256

type outgoing struct {
	gameID  string
	payload []byte
}

// RedisRelay publishes to the local hub and to every other server
// instance through redis pub/sub, so players connected to different
// instances still see each other's moves.
type RedisRelay struct {
	hub    *Hub
	client *redis.Client
	origin string
	out    chan outgoing
}

func NewRedisRelay(hub *Hub, client *redis.Client) *RedisRelay {
	return &RedisRelay{
		hub:    hub,
		client: client,
		origin: uuid.NewString(),
		out:    make(chan outgoing, relayBuffer),
	}
}

// Publish delivers locally and queues the redis leg for Run. It never
// waits on redis: a full queue drops the remote copy.
func (r *RedisRelay) Publish(gameID string, views map[game.Role]*game.View) {
	r.hub.Publish(gameID, views)

	payload, err := json.Marshal(relayEnvelope{Origin: r.origin, Views: views})
	if err != nil {
		logger.ForGame(gameID, "").Error("relay encode failed", "error", err)
		return
	}

	select {
	case r.out <- outgoing{gameID: gameID, payload: payload}:
	default:
		Dropped.Inc()
		logger.ForGame(gameID, "").Warn("relay queue full, remote update dropped")
	}
}

// Run sends queued updates to redis and forwards updates published by
// other instances to the local hub until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) {
	go r.forward(ctx)

	pubsub := r.client.PSubscribe(ctx, relayPrefix+"*")
	defer pubsub.Close()

	logger.Info("redis relay started", "origin", r.origin)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.deliver(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-r.out:
			r.send(ctx, m)
		}
	}
}

func (r *RedisRelay) send(ctx context.Context, m outgoing) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.client.Publish(ctx, relayPrefix+m.gameID, m.payload).Err(); err != nil {
		logger.ForGame(m.gameID, "").Warn("relay publish failed", "error", err)
		return
	}
	Relayed.WithLabelValues("out").Inc()
}

func (r *RedisRelay) deliver(channel string, payload []byte) {
	gameID := strings.TrimPrefix(channel, relayPrefix)

	var env relayEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		logger.ForGame(gameID, "").Warn("relay decode failed", "error", err)
		return
	}
	if env.Origin == r.origin {
		return
	}

	Relayed.WithLabelValues("in").Inc()
	r.hub.Publish(gameID, env.Views)
}
