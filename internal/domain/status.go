package domain

import "time"

type OnlineState string

const (
	StateOnline  OnlineState = "online"
	StateAway    OnlineState = "away"
	StateOffline OnlineState = "offline"
)

// Status - последнее известное состояние актора; перезаписывается каждым heartbeat.
type Status struct {
	Owner     ActorRef  `db:"-"`
	Away      bool      `db:"away"`
	LastSeen  time.Time `db:"last_seen"`
	UpdatedAt time.Time `db:"updated_at"`
}

// State вычисляет online/away/offline относительно окна активности.
func (s *Status) State(now time.Time, window time.Duration) OnlineState {
	if s == nil || now.Sub(s.LastSeen) > window {
		return StateOffline
	}
	if s.Away {
		return StateAway
	}
	return StateOnline
}
