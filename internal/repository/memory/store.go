// Package memory - in-process реализация repository.Store.
// Транзакции оптимистичные: снимок состояния, проверка версии при коммите,
// конфликт возвращается как repository.ErrSerialization.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"
)

type state struct {
	participants     map[string]domain.Participant
	messages         map[string]domain.Message
	reactions        map[string]domain.Reaction
	calls            map[string]domain.Call
	callParticipants map[string]domain.CallParticipant
	statuses         map[domain.ActorRef]domain.Status
}

func newState() *state {
	return &state{
		participants:     make(map[string]domain.Participant),
		messages:         make(map[string]domain.Message),
		reactions:        make(map[string]domain.Reaction),
		calls:            make(map[string]domain.Call),
		callParticipants: make(map[string]domain.CallParticipant),
		statuses:         make(map[domain.ActorRef]domain.Status),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.participants {
		c.participants[k] = v
	}
	for k, v := range s.messages {
		c.messages[k] = v
	}
	for k, v := range s.reactions {
		c.reactions[k] = v
	}
	for k, v := range s.calls {
		c.calls[k] = v
	}
	for k, v := range s.callParticipants {
		c.callParticipants[k] = v
	}
	for k, v := range s.statuses {
		c.statuses[k] = v
	}
	return c
}

type Store struct {
	mu      sync.Mutex
	st      *state
	version uint64
	txCount int
	onRetry repository.RetryObserver

	providers map[domain.ActorRef]domain.Profile

	direct *view
}

func New() *Store {
	s := &Store{st: newState()}
	s.direct = &view{do: s.apply}
	return s
}

// OnRetry устанавливает наблюдателя повторных попыток (метрики).
func (s *Store) OnRetry(fn repository.RetryObserver) { s.onRetry = fn }

// errUnchanged: запись ничего не изменила, открытые транзакции не конфликтуют.
var errUnchanged = errors.New("unchanged")

func (s *Store) apply(write bool, fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.st)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	if write {
		s.version++
	}
	return nil
}

func (s *Store) Reactions() repository.ReactionRepository       { return s.direct.Reactions() }
func (s *Store) Messages() repository.MessageRepository         { return s.direct.Messages() }
func (s *Store) Participants() repository.ParticipantRepository { return s.direct.Participants() }
func (s *Store) Calls() repository.CallRepository               { return s.direct.Calls() }
func (s *Store) Statuses() repository.StatusRepository          { return s.direct.Statuses() }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// Transactions - сколько транзакций было открыто (включая повторы).
func (s *Store) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

func (s *Store) InTx(ctx context.Context, attempts int, fn repository.TxFunc) error {
	return repository.Retry(ctx, attempts, s.onRetry, func() error {
		return s.runTx(ctx, fn)
	})
}

func (s *Store) runTx(ctx context.Context, fn repository.TxFunc) error {
	s.mu.Lock()
	s.txCount++
	snapshot := s.st.clone()
	startVersion := s.version
	s.mu.Unlock()

	t := &tx{}
	t.view = &view{do: func(_ bool, f func(st *state) error) error {
		if err := f(snapshot); !errors.Is(err, errUnchanged) {
			return err
		}
		return nil
	}}
	if err := fn(ctx, t); err != nil {
		return err
	}

	s.mu.Lock()
	if s.version != startVersion {
		s.mu.Unlock()
		return repository.ErrSerialization
	}
	s.st = snapshot
	s.version++
	s.mu.Unlock()

	t.hooks.Run()
	return nil
}

type tx struct {
	*view
	hooks repository.Hooks
}

func (t *tx) AfterCommit(fn func()) { t.hooks.Add(fn) }

// view реализует все репозитории поверх state.
type view struct {
	do func(write bool, fn func(st *state) error) error
}

func (v *view) Reactions() repository.ReactionRepository       { return reactionRepo{v} }
func (v *view) Messages() repository.MessageRepository         { return messageRepo{v} }
func (v *view) Participants() repository.ParticipantRepository { return participantRepo{v} }
func (v *view) Calls() repository.CallRepository               { return callRepo{v} }
func (v *view) Statuses() repository.StatusRepository          { return statusRepo{v} }

type (
	reactionRepo    struct{ v *view }
	messageRepo     struct{ v *view }
	participantRepo struct{ v *view }
	callRepo        struct{ v *view }
	statusRepo      struct{ v *view }
)

// --- seed helpers ---

func (s *Store) AddParticipant(p domain.Participant) {
	_ = s.apply(true, func(st *state) error { st.participants[p.ID] = p; return nil })
}

func (s *Store) RemoveParticipant(id string, at time.Time) {
	_ = s.apply(true, func(st *state) error {
		p, ok := st.participants[id]
		if !ok {
			return errUnchanged
		}
		p.DeletedAt = &at
		st.participants[id] = p
		return nil
	})
}

func (s *Store) AddMessage(m domain.Message) {
	_ = s.apply(true, func(st *state) error { st.messages[m.ID] = m; return nil })
}

func (s *Store) AddCall(c domain.Call) {
	_ = s.apply(true, func(st *state) error { st.calls[c.ID] = c; return nil })
}

func (s *Store) AddCallParticipant(p domain.CallParticipant) {
	_ = s.apply(true, func(st *state) error { st.callParticipants[p.ID] = p; return nil })
}

// SeedReaction добавляет реакцию и выставляет reacted у сообщения.
func (s *Store) SeedReaction(r domain.Reaction) {
	_ = s.apply(true, func(st *state) error {
		st.reactions[r.ID] = r
		if m, ok := st.messages[r.MessageID]; ok {
			m.Reacted = true
			st.messages[m.ID] = m
		}
		return nil
	})
}

func (s *Store) Message(id string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.st.messages[id]
	return m, ok
}

func (s *Store) Reaction(id string) (domain.Reaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.reactions[id]
	return r, ok
}

func (s *Store) Call(id string) (domain.Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.calls[id]
	return c, ok
}

func (s *Store) CallParticipant(id string) (domain.CallParticipant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.callParticipants[id]
	return p, ok
}

func (s *Store) StatusCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.statuses)
}

func sortReactions(list []domain.Reaction) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
