package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
	"github.com/cwrk-planet/thread-service/internal/fanout"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

type LeaveResult struct {
	ParticipantID string `json:"participant_id"`
	CallEnded     bool   `json:"call_ended"`
}

type CallService struct {
	store    repository.Store
	features FeatureSource
	policy   Policy
	notifier Notifier
	log      *slog.Logger

	now func() time.Time
}

func NewCallService(log *slog.Logger, store repository.Store, features FeatureSource, policy Policy, notifier Notifier) *CallService {
	return &CallService{
		store:    store,
		features: features,
		policy:   policy,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func callingDisabled() error {
	return &domain.FeatureDisabledError{Feature: "Calling"}
}

// Leave находит звонок в треде и текущую запись участия актора, затем выходит из звонка.
func (s *CallService) Leave(ctx context.Context, actor domain.ActorRef, threadID, callID string) (*LeaveResult, error) {
	ctx, f := pin(ctx, s.features)
	if !f.Calling {
		return nil, callingDisabled()
	}

	call, err := s.store.Calls().Get(ctx, threadID, callID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrCallNotFound
		}
		return nil, fmt.Errorf("calls.Get: %w", err)
	}
	if err := s.policy.CanLeaveCall(ctx, actor, call); err != nil {
		return nil, err
	}

	p, err := s.store.Calls().CurrentParticipant(ctx, call.ID, actor)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotInCall
		}
		return nil, fmt.Errorf("calls.CurrentParticipant: %w", err)
	}

	return s.LeaveCall(ctx, Standalone(), actor, call, p)
}

// LeaveCall отмечает выход участника. Повторный выход - no-op без записи и уведомлений.
// Когда выходит последний активный участник, звонок завершается в той же транзакции.
func (s *CallService) LeaveCall(ctx context.Context, scope TxScope, actor domain.ActorRef, call *domain.Call, p *domain.CallParticipant) (*LeaveResult, error) {
	ctx, f := pin(ctx, s.features)
	if !f.Calling {
		return nil, callingDisabled()
	}

	if p.Left() {
		return &LeaveResult{ParticipantID: p.ID, CallEnded: !call.Active()}, nil
	}

	var (
		left, ended bool
		at          = s.now().UTC()
	)
	err := scope.run(ctx, s.store, func(ctx context.Context, repos repository.Repos) error {
		left, ended = false, false

		changed, err := repos.Calls().MarkLeft(ctx, p.ID, at)
		if err != nil {
			return fmt.Errorf("calls.MarkLeft: %w", err)
		}
		if !changed {
			return nil
		}
		left = true

		active, err := repos.Calls().CountActive(ctx, call.ID)
		if err != nil {
			return fmt.Errorf("calls.CountActive: %w", err)
		}
		if active > 0 || !call.Active() {
			return nil
		}
		ended, err = repos.Calls().End(ctx, call.ID, at)
		if err != nil {
			return fmt.Errorf("calls.End: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &LeaveResult{ParticipantID: p.ID, CallEnded: ended || !call.Active()}
	if !left {
		// участник успел выйти конкурентно
		s.log.DebugContext(ctx, "call participant already left", "call_id", call.ID, "participant_id", p.ID)
		return res, nil
	}

	payload := map[string]any{
		"call_id":        call.ID,
		"thread_id":      call.ThreadID,
		"participant_id": p.ID,
		"owner_type":     p.Owner.Type,
		"owner_id":       p.Owner.ID,
		"left_call_at":   at.Format(time.RFC3339Nano),
		"call_ended":     res.CallEnded,
	}
	scope.afterCommit(func() {
		s.notifier.Dispatch(ctx, f, fanout.Notice{
			ThreadID:  call.ThreadID,
			Actor:     actor,
			Owner:     call.Owner,
			Broadcast: fanout.Broadcast{Kind: fanout.KindCallLeft, Payload: payload},
			Event:     events.Event{Name: events.CallLeft, Payload: payload},
		})
		if !ended {
			return
		}
		endPayload := map[string]any{
			"call_id":    call.ID,
			"thread_id":  call.ThreadID,
			"call_ended": at.Format(time.RFC3339Nano),
		}
		s.notifier.Dispatch(ctx, f, fanout.Notice{
			ThreadID:  call.ThreadID,
			Actor:     actor,
			Broadcast: fanout.Broadcast{Kind: fanout.KindCallEnded, Payload: endPayload},
			Event:     events.Event{Name: events.CallEnded, Payload: endPayload},
		})
	})
	return res, nil
}
