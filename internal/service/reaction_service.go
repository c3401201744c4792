package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
	"github.com/cwrk-planet/thread-service/internal/fanout"
	"github.com/cwrk-planet/thread-service/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	defaultReactionsLimit = 50
	maxReactionsLimit     = 100
)

// ReactionResult - удалённая реакция; её идентичность нужна для уведомлений.
type ReactionResult struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	Reaction  string `json:"reaction"`
}

type ReactionService struct {
	store    repository.Store
	features FeatureSource
	policy   Policy
	notifier Notifier

	now   func() time.Time
	newID func() string
}

func NewReactionService(store repository.Store, features FeatureSource, policy Policy, notifier Notifier) *ReactionService {
	return &ReactionService{
		store:    store,
		features: features,
		policy:   policy,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func reactionsDisabled() error {
	return &domain.FeatureDisabledError{Feature: "Message reactions"}
}

// Remove находит сообщение и реакцию в треде, проверяет права и удаляет реакцию.
func (s *ReactionService) Remove(ctx context.Context, actor domain.ActorRef, threadID, messageID, reactionID string) (*ReactionResult, error) {
	ctx, f := pin(ctx, s.features)
	if !f.Reactions {
		return nil, reactionsDisabled()
	}

	msg, err := s.message(ctx, threadID, messageID)
	if err != nil {
		return nil, err
	}
	r, err := s.store.Reactions().Get(ctx, msg.ID, reactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrReactionNotFound
		}
		return nil, fmt.Errorf("reactions.Get: %w", err)
	}
	if err := s.policy.CanRemoveReaction(ctx, actor, msg, r); err != nil {
		return nil, err
	}

	return s.RemoveReaction(ctx, Standalone(), actor, msg, r)
}

// RemoveReaction удаляет реакцию. Если реакция последняя и вызов не в цепочке,
// удаление и снятие флага reacted идут одной транзакцией.
func (s *ReactionService) RemoveReaction(ctx context.Context, scope TxScope, actor domain.ActorRef, msg *domain.Message, r *domain.Reaction) (*ReactionResult, error) {
	ctx, f := pin(ctx, s.features)
	if !f.Reactions {
		return nil, reactionsDisabled()
	}

	count, err := scope.repos(s.store).Reactions().CountForMessage(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("reactions.CountForMessage: %w", err)
	}

	remove := func(ctx context.Context, repos repository.Repos) error {
		if err := repos.Reactions().Delete(ctx, r.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ErrReactionNotFound
			}
			return fmt.Errorf("reactions.Delete: %w", err)
		}
		// условный UPDATE: флаг снимается только когда реакций не осталось,
		// поэтому безопасен и при конкурентных удалениях
		if _, err := repos.Messages().ClearReactedIfEmpty(ctx, msg.ID); err != nil {
			return fmt.Errorf("messages.ClearReactedIfEmpty: %w", err)
		}
		return nil
	}

	if scope.Chained() || count > 1 {
		err = remove(ctx, scope.repos(s.store))
	} else {
		err = scope.run(ctx, s.store, remove)
	}
	if err != nil {
		return nil, err
	}

	res := &ReactionResult{ID: r.ID, MessageID: msg.ID, Reaction: r.Reaction}
	scope.afterCommit(func() {
		s.notifier.Dispatch(ctx, f, fanout.Notice{
			ThreadID:  msg.ThreadID,
			Actor:     actor,
			Owner:     msg.Owner,
			Broadcast: fanout.Broadcast{Kind: fanout.KindReactionRemoved, Payload: res},
			Event:     events.Event{Name: events.ReactionRemoved, Payload: r.Attributes()},
		})
	})
	return res, nil
}

// Add проверяет права актора и ставит реакцию на сообщение.
func (s *ReactionService) Add(ctx context.Context, actor domain.ActorRef, threadID, messageID, value string) (*domain.Reaction, error) {
	ctx, f := pin(ctx, s.features)
	if !f.Reactions {
		return nil, reactionsDisabled()
	}

	msg, err := s.message(ctx, threadID, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanReact(ctx, actor, msg); err != nil {
		return nil, err
	}

	return s.AddReaction(ctx, Standalone(), actor, msg, value)
}

// AddReaction создаёт реакцию. Первая реакция на сообщении вставляется
// вместе с reacted=true одной транзакцией.
func (s *ReactionService) AddReaction(ctx context.Context, scope TxScope, actor domain.ActorRef, msg *domain.Message, value string) (*domain.Reaction, error) {
	ctx, f := pin(ctx, s.features)
	if !f.Reactions {
		return nil, reactionsDisabled()
	}

	value, err := domain.NormalizeReaction(value)
	if err != nil {
		return nil, err
	}

	repos := scope.repos(s.store)
	exists, err := repos.Reactions().Exists(ctx, msg.ID, actor, value)
	if err != nil {
		return nil, fmt.Errorf("reactions.Exists: %w", err)
	}
	if exists {
		return nil, domain.ErrReactionExists
	}

	unique, err := repos.Reactions().UniqueValues(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("reactions.UniqueValues: %w", err)
	}
	limit := f.MaxUniqueReactions
	if limit <= 0 {
		limit = domain.DefaultMaxUniqueReactions
	}
	if !lo.Contains(unique, value) && len(unique) >= limit {
		return nil, domain.ErrTooManyReactions
	}

	count, err := repos.Reactions().CountForMessage(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("reactions.CountForMessage: %w", err)
	}

	r := &domain.Reaction{
		ID:        s.newID(),
		MessageID: msg.ID,
		Owner:     actor,
		Reaction:  value,
		CreatedAt: s.now().UTC(),
	}
	insert := func(ctx context.Context, repos repository.Repos) error {
		if err := repos.Reactions().Create(ctx, r); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return domain.ErrReactionExists
			}
			return fmt.Errorf("reactions.Create: %w", err)
		}
		// MarkReacted не трогает уже выставленный флаг
		if err := repos.Messages().MarkReacted(ctx, msg.ID); err != nil {
			return fmt.Errorf("messages.MarkReacted: %w", err)
		}
		return nil
	}

	if count == 0 && !scope.Chained() {
		err = scope.run(ctx, s.store, insert)
	} else {
		err = insert(ctx, repos)
	}
	if err != nil {
		return nil, err
	}

	scope.afterCommit(func() {
		s.notifier.Dispatch(ctx, f, fanout.Notice{
			ThreadID:  msg.ThreadID,
			Actor:     actor,
			Owner:     msg.Owner,
			Broadcast: fanout.Broadcast{Kind: fanout.KindReactionAdded, Payload: r.Attributes()},
			Event:     events.Event{Name: events.ReactionAdded, Payload: r.Attributes()},
		})
	})
	return r, nil
}

// List возвращает реакции сообщения, новые первыми, и курсор следующей страницы.
func (s *ReactionService) List(ctx context.Context, actor domain.ActorRef, threadID, messageID, cursor string, limit int) ([]domain.Reaction, string, error) {
	ctx, f := pin(ctx, s.features)
	if !f.Reactions {
		return nil, "", reactionsDisabled()
	}
	if limit <= 0 {
		limit = defaultReactionsLimit
	}
	if limit > maxReactionsLimit {
		limit = maxReactionsLimit
	}

	after, err := repository.ParseCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	if err := s.policy.CanView(ctx, actor, threadID); err != nil {
		return nil, "", err
	}
	msg, err := s.message(ctx, threadID, messageID)
	if err != nil {
		return nil, "", err
	}

	list, err := s.store.Reactions().List(ctx, msg.ID, after, limit+1)
	if err != nil {
		return nil, "", fmt.Errorf("reactions.List: %w", err)
	}

	next := ""
	if len(list) > limit {
		list = list[:limit]
		last := list[len(list)-1]
		next = repository.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.String()
	}
	return list, next, nil
}

func (s *ReactionService) message(ctx context.Context, threadID, messageID string) (*domain.Message, error) {
	msg, err := s.store.Messages().Get(ctx, threadID, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("messages.Get: %w", err)
	}
	return msg, nil
}
