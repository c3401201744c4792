package domain

import "time"

type Call struct {
	ID        string     `db:"id"`
	ThreadID  string     `db:"thread_id"`
	Owner     ActorRef   `db:"-"`
	Type      int        `db:"type"`
	CreatedAt time.Time  `db:"created_at"`
	CallEnded *time.Time `db:"call_ended"`
}

func (c *Call) Active() bool { return c.CallEnded == nil }

type CallParticipant struct {
	ID         string     `db:"id"`
	CallID     string     `db:"call_id"`
	Owner      ActorRef   `db:"-"`
	CreatedAt  time.Time  `db:"created_at"`
	LeftCallAt *time.Time `db:"left_call_at"`
}

func (p *CallParticipant) Left() bool { return p.LeftCallAt != nil }
