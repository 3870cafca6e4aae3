package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "battleship_push_subscribers",
			Help: "Open push subscriptions across all games",
		},
	)
	Dropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battleship_push_dropped_total",
			Help: "Updates dropped because a subscriber was not keeping up",
		},
	)
	Relayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battleship_push_relayed_total",
			Help: "Updates exchanged with other instances over redis",
		},
		[]string{"direction"},
	)
)

func init() {
	prometheus.MustRegister(Subscribers)
	prometheus.MustRegister(Dropped)
	prometheus.MustRegister(Relayed)
}
