package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxReactionLength = 255

type Reaction struct {
	ID        string    `db:"id"`
	MessageID string    `db:"message_id"`
	Owner     ActorRef  `db:"-"`
	Reaction  string    `db:"reaction"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *Reaction) OwnedBy(ref ActorRef) bool { return r.Owner.Equal(ref) }

// Attributes - полный набор полей реакции для доменных событий.
func (r *Reaction) Attributes() map[string]any {
	return map[string]any{
		"id":         r.ID,
		"message_id": r.MessageID,
		"owner_type": r.Owner.Type,
		"owner_id":   r.Owner.ID,
		"reaction":   r.Reaction,
		"created_at": r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// NormalizeReaction обрезает пробелы и проверяет длину значения.
func NormalizeReaction(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || utf8.RuneCountInString(v) > MaxReactionLength {
		return "", ErrInvalidReaction
	}
	return v, nil
}
