// Package metrics counts game activity for the bot.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives game events from the session managers.
type Recorder interface {
	GameStarted(backend string)
	MoveAccepted(capture bool)
	MoveRejected(reason string)
	Explosion(cleared int, kingDestroyed bool)
	GameFinished(status string)
	Conflict()
}

// Nop discards every event.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) GameStarted(string) {}
func (Nop) MoveAccepted(bool) {}
func (Nop) MoveRejected(string) {}
func (Nop) Explosion(int, bool) {}
func (Nop) GameFinished(string) {}
func (Nop) Conflict() {}

// Prometheus implements Recorder with client_golang collectors.
type Prometheus struct {
	gamesStarted  *prometheus.CounterVec
	moves         *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	blastSize     prometheus.Histogram
	kingsKilled   prometheus.Counter
	gamesFinished *prometheus.CounterVec
	conflicts     prometheus.Counter
}

var _ Recorder = (*Prometheus)(nil)

// New registers the collectors with reg. If reg is nil, prometheus.DefaultRegisterer is used.
// Collectors already registered by an earlier call are reused.
func New(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		gamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atomic_games_started_total",
			Help: "Games created, by session backend.",
		}, []string{"backend"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atomic_moves_accepted_total",
			Help: "Accepted moves, by kind.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atomic_moves_rejected_total",
			Help: "Rejected moves, by reason.",
		}, []string{"reason"}),
		blastSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "atomic_explosion_cleared_squares",
			Help:    "Squares emptied per capture, attacker included.",
			Buckets: prometheus.LinearBuckets(2, 1, 9),
		}),
		kingsKilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atomic_kings_destroyed_total",
			Help: "Explosions that destroyed a king.",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atomic_games_finished_total",
			Help: "Finished games, by final session status.",
		}, []string{"status"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atomic_move_conflicts_total",
			Help: "Moves dropped by optimistic concurrency control.",
		}),
	}
	var err error
	p.gamesStarted = register(reg, p.gamesStarted, &err)
	p.moves = register(reg, p.moves, &err)
	p.rejections = register(reg, p.rejections, &err)
	p.blastSize = register(reg, p.blastSize, &err)
	p.kingsKilled = register(reg, p.kingsKilled, &err)
	p.gamesFinished = register(reg, p.gamesFinished, &err)
	p.conflicts = register(reg, p.conflicts, &err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, errp *error) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		if *errp == nil {
			*errp = err
		}
	}
	return c
}

func (p *Prometheus) GameStarted(backend string) {
	p.gamesStarted.WithLabelValues(backend).Inc()
}

func (p *Prometheus) MoveAccepted(capture bool) {
	kind := "move"
	if capture {
		kind = "capture"
	}
	p.moves.WithLabelValues(kind).Inc()
}

func (p *Prometheus) MoveRejected(reason string) {
	p.rejections.WithLabelValues(reason).Inc()
}

func (p *Prometheus) Explosion(cleared int, kingDestroyed bool) {
	p.blastSize.Observe(float64(cleared))
	if kingDestroyed {
		p.kingsKilled.Inc()
	}
}

func (p *Prometheus) GameFinished(status string) {
	p.gamesFinished.WithLabelValues(status).Inc()
}

func (p *Prometheus) Conflict() { p.conflicts.Inc() }
