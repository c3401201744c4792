package domain

import "time"

type Message struct {
	ID        string    `db:"id"`
	ThreadID  string    `db:"thread_id"`
	Owner     ActorRef  `db:"-"`
	Type      int       `db:"type"`
	Body      string    `db:"body"`
	Reacted   bool      `db:"reacted"`
	CreatedAt time.Time `db:"created_at"`
}

func (m *Message) OwnedBy(ref ActorRef) bool { return m.Owner.Equal(ref) }
