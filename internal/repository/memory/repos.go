package memory

import (
	"context"
	"errors"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

// --- reactions ---

func (r reactionRepo) Get(ctx context.Context, messageID, reactionID string) (*domain.Reaction, error) {
	var out *domain.Reaction
	err := r.v.do(false, func(st *state) error {
		r, ok := st.reactions[reactionID]
		if !ok || r.MessageID != messageID {
			return repository.ErrNotFound
		}
		out = &r
		return nil
	})
	return out, err
}

func (r reactionRepo) CountForMessage(ctx context.Context, messageID string) (int, error) {
	n := 0
	err := r.v.do(false, func(st *state) error {
		n = countReactions(st, messageID)
		return nil
	})
	return n, err
}

func countReactions(st *state, messageID string) int {
	n := 0
	for _, r := range st.reactions {
		if r.MessageID == messageID {
			n++
		}
	}
	return n
}

func (r reactionRepo) Exists(ctx context.Context, messageID string, owner domain.ActorRef, reaction string) (bool, error) {
	found := false
	err := r.v.do(false, func(st *state) error {
		for _, r := range st.reactions {
			if r.MessageID == messageID && r.Owner.Equal(owner) && r.Reaction == reaction {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r reactionRepo) UniqueValues(ctx context.Context, messageID string) ([]string, error) {
	var out []string
	err := r.v.do(false, func(st *state) error {
		seen := make(map[string]struct{})
		for _, r := range st.reactions {
			if r.MessageID != messageID {
				continue
			}
			if _, ok := seen[r.Reaction]; !ok {
				seen[r.Reaction] = struct{}{}
				out = append(out, r.Reaction)
			}
		}
		return nil
	})
	return out, err
}

func (r reactionRepo) List(ctx context.Context, messageID string, after *repository.Cursor, limit int) ([]domain.Reaction, error) {
	var out []domain.Reaction
	err := r.v.do(false, func(st *state) error {
		for _, r := range st.reactions {
			if r.MessageID == messageID {
				out = append(out, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortReactions(out)
	if after != nil {
		i := 0
		for i < len(out) && !(out[i].CreatedAt.Before(after.CreatedAt) ||
			(out[i].CreatedAt.Equal(after.CreatedAt) && out[i].ID < after.ID)) {
			i++
		}
		out = out[i:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r reactionRepo) Create(ctx context.Context, in *domain.Reaction) error {
	return r.v.do(true, func(st *state) error {
		for _, ex := range st.reactions {
			if ex.MessageID == in.MessageID && ex.Owner.Equal(in.Owner) && ex.Reaction == in.Reaction {
				return repository.ErrAlreadyExists
			}
		}
		if _, ok := st.reactions[in.ID]; ok {
			return repository.ErrAlreadyExists
		}
		st.reactions[in.ID] = *in
		return nil
	})
}

func (r reactionRepo) Delete(ctx context.Context, reactionID string) error {
	return r.v.do(true, func(st *state) error {
		if _, ok := st.reactions[reactionID]; !ok {
			return repository.ErrNotFound
		}
		delete(st.reactions, reactionID)
		return nil
	})
}

// --- messages ---

func (r messageRepo) Get(ctx context.Context, threadID, messageID string) (*domain.Message, error) {
	var out *domain.Message
	err := r.v.do(false, func(st *state) error {
		m, ok := st.messages[messageID]
		if !ok || m.ThreadID != threadID {
			return repository.ErrNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

func (r messageRepo) MarkReacted(ctx context.Context, messageID string) error {
	return r.v.do(true, func(st *state) error {
		m, ok := st.messages[messageID]
		if !ok {
			return repository.ErrNotFound
		}
		if m.Reacted {
			return errUnchanged
		}
		m.Reacted = true
		st.messages[messageID] = m
		return nil
	})
}

func (r messageRepo) ClearReactedIfEmpty(ctx context.Context, messageID string) (bool, error) {
	cleared := false
	err := r.v.do(true, func(st *state) error {
		m, ok := st.messages[messageID]
		if !ok || !m.Reacted || countReactions(st, messageID) > 0 {
			return errUnchanged
		}
		m.Reacted = false
		st.messages[messageID] = m
		cleared = true
		return nil
	})
	return cleared, err
}

// --- participants ---

func (r participantRepo) Get(ctx context.Context, threadID string, owner domain.ActorRef) (*domain.Participant, error) {
	var out *domain.Participant
	err := r.v.do(false, func(st *state) error {
		for _, p := range st.participants {
			if p.ThreadID == threadID && p.Owner.Equal(owner) && p.Live() {
				p := p
				out = &p
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r participantRepo) Exists(ctx context.Context, threadID string, owner domain.ActorRef) (bool, error) {
	_, err := r.Get(ctx, threadID, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// --- calls ---

func (r callRepo) Get(ctx context.Context, threadID, callID string) (*domain.Call, error) {
	var out *domain.Call
	err := r.v.do(false, func(st *state) error {
		c, ok := st.calls[callID]
		if !ok || c.ThreadID != threadID {
			return repository.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r callRepo) CurrentParticipant(ctx context.Context, callID string, owner domain.ActorRef) (*domain.CallParticipant, error) {
	var out *domain.CallParticipant
	err := r.v.do(false, func(st *state) error {
		for _, p := range st.callParticipants {
			if p.CallID != callID || !p.Owner.Equal(owner) {
				continue
			}
			if out == nil || p.CreatedAt.After(out.CreatedAt) {
				p := p
				out = &p
			}
		}
		if out == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (r callRepo) MarkLeft(ctx context.Context, participantID string, at time.Time) (bool, error) {
	changed := false
	err := r.v.do(true, func(st *state) error {
		p, ok := st.callParticipants[participantID]
		if !ok || p.LeftCallAt != nil {
			return errUnchanged
		}
		p.LeftCallAt = &at
		st.callParticipants[participantID] = p
		changed = true
		return nil
	})
	return changed, err
}

func (r callRepo) CountActive(ctx context.Context, callID string) (int, error) {
	n := 0
	err := r.v.do(false, func(st *state) error {
		for _, p := range st.callParticipants {
			if p.CallID == callID && p.LeftCallAt == nil {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r callRepo) End(ctx context.Context, callID string, at time.Time) (bool, error) {
	changed := false
	err := r.v.do(true, func(st *state) error {
		c, ok := st.calls[callID]
		if !ok || c.CallEnded != nil {
			return errUnchanged
		}
		c.CallEnded = &at
		st.calls[callID] = c
		changed = true
		return nil
	})
	return changed, err
}

// --- statuses ---

func (r statusRepo) Upsert(ctx context.Context, s *domain.Status) error {
	return r.v.do(true, func(st *state) error {
		st.statuses[s.Owner] = *s
		return nil
	})
}

func (r statusRepo) Touch(ctx context.Context, owner domain.ActorRef, at time.Time) error {
	return r.v.do(true, func(st *state) error {
		s, ok := st.statuses[owner]
		if !ok {
			return errUnchanged
		}
		s.LastSeen = at
		st.statuses[owner] = s
		return nil
	})
}

func (r statusRepo) Get(ctx context.Context, owner domain.ActorRef) (*domain.Status, error) {
	var out *domain.Status
	err := r.v.do(false, func(st *state) error {
		s, ok := st.statuses[owner]
		if !ok {
			return repository.ErrNotFound
		}
		out = &s
		return nil
	})
	return out, err
}
