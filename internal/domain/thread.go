package domain

import "time"

type Thread struct {
	ID        string    `db:"id"`
	Subject   *string   `db:"subject"`
	CreatedAt time.Time `db:"created_at"`
}

type Participant struct {
	ID        string     `db:"id"`
	ThreadID  string     `db:"thread_id"`
	Owner     ActorRef   `db:"-"`
	Admin     bool       `db:"admin"`
	CreatedAt time.Time  `db:"created_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (p *Participant) Live() bool { return p.DeletedAt == nil }
