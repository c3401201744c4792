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
)

const defaultOnlineWindow = 60 * time.Second

// StatusView - вычисленное состояние присутствия провайдера.
type StatusView struct {
	Provider domain.ActorRef    `json:"provider"`
	Name     string             `json:"name"`
	State    domain.OnlineState `json:"state"`
	Away     bool               `json:"away"`
	LastSeen *time.Time         `json:"last_seen,omitempty"`
}

type StatusService struct {
	statuses repository.StatusRepository
	registry *domain.Registry
	features FeatureSource
	notifier Notifier

	onlineWindow    time.Duration
	broadcastStatus bool
	now             func() time.Time
}

func NewStatusService(repos repository.Repos, registry *domain.Registry, features FeatureSource, notifier Notifier) *StatusService {
	return &StatusService{
		statuses:     repos.Statuses(),
		registry:     registry,
		features:     features,
		notifier:     notifier,
		onlineWindow: defaultOnlineWindow, // окно «онлайн»
		now:          time.Now,
	}
}

func (s *StatusService) SetOnlineWindow(d time.Duration) {
	if d > 0 {
		s.onlineWindow = d
	}
}

// SetBroadcastStatus включает публикацию StatusHeartbeatEvent на каждый heartbeat.
func (s *StatusService) SetBroadcastStatus(on bool) { s.broadcastStatus = on }

// Heartbeat перезаписывает единственную запись статуса актора. Без транзакции.
func (s *StatusService) Heartbeat(ctx context.Context, actor domain.ActorRef, away bool) error {
	ctx, f := pin(ctx, s.features)

	now := s.now().UTC()
	st := &domain.Status{Owner: actor, Away: away, LastSeen: now, UpdatedAt: now}
	if err := s.statuses.Upsert(ctx, st); err != nil {
		return fmt.Errorf("statuses.Upsert: %w", err)
	}

	if s.broadcastStatus {
		s.notifier.Dispatch(ctx, f, fanout.Notice{
			Actor: actor,
			Event: events.Event{Name: events.StatusHeartbeat, Payload: map[string]any{
				"owner_type": actor.Type,
				"owner_id":   actor.ID,
				"away":       away,
			}},
		})
	}
	return nil
}

// Touch обновляет last_seen, не меняя away. Best-effort для middleware и ws.
func (s *StatusService) Touch(ctx context.Context, actor domain.ActorRef) error {
	return s.statuses.Touch(ctx, actor, s.now().UTC())
}

func (s *StatusService) Status(ctx context.Context, ref domain.ActorRef) (*StatusView, error) {
	p, err := s.registry.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	view := &StatusView{Provider: ref, Name: p.DisplayName(), State: domain.StateOffline}
	if domain.IsGhost(p) {
		return view, nil
	}

	st, err := s.statuses.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("statuses.Get: %w", err)
	}
	view.State = st.State(s.now(), s.onlineWindow)
	view.Away = st.Away
	view.LastSeen = &st.LastSeen
	return view, nil
}
