package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GamesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battleship_games_created_total",
			Help: "Games created, by origin",
		},
		[]string{"origin"},
	)
	GamesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battleship_games_finished_total",
			Help: "Games that reached the finished phase",
		},
	)
	ShotsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battleship_shots_total",
			Help: "Resolved attacks, by outcome",
		},
		[]string{"outcome"},
	)
	StoreConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battleship_store_conflicts_total",
			Help: "Conditional updates that lost a race and were retried",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(GamesCreated)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(ShotsFired)
	prometheus.MustRegister(StoreConflicts)
}

func shotOutcome(sunk, hit bool) string {
	switch {
	case sunk:
		return "sunk"
	case hit:
		return "hit"
	default:
		return "miss"
	}
}
