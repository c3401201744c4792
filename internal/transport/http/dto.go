package http

import (
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

type HeartbeatRequest struct {
	Away *bool `json:"away" validate:"required"`
}

type AddReactionRequest struct {
	Reaction string `json:"reaction" validate:"required,max=255"`
}

type ReactionItem struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	OwnerType string    `json:"owner_type"`
	OwnerID   string    `json:"owner_id"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

func toReactionItem(r domain.Reaction) ReactionItem {
	return ReactionItem{
		ID:        r.ID,
		MessageID: r.MessageID,
		OwnerType: r.Owner.Type,
		OwnerID:   r.Owner.ID,
		Reaction:  r.Reaction,
		CreatedAt: r.CreatedAt,
	}
}

type ReactionListResponse struct {
	Data       []ReactionItem `json:"data"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
