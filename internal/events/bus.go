package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=bus.go -destination=../mocks/mock_events.go -package=mocks

// Sink - потребитель доменных событий.
type Sink interface {
	Name() string
	Consume(ctx context.Context, e Event) error
}

// Bus рассылает доменные события по sink'ам в отдельной горутине.
//
// Доставка best-effort: при переполнении буфера событие отбрасывается,
// каждый sink ограничен по времени. Bus не брокер сообщений.
type Bus struct {
	log         *slog.Logger
	queue       chan Event
	sinkTimeout time.Duration

	mu    sync.RWMutex
	sinks []Sink
}

func NewBus(log *slog.Logger, buffer int, sinkTimeout time.Duration) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	if sinkTimeout <= 0 {
		sinkTimeout = 2 * time.Second
	}
	return &Bus{
		log:         log,
		queue:       make(chan Event, buffer),
		sinkTimeout: sinkTimeout,
	}
}

func (b *Bus) Subscribe(sinks ...Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sinks...)
}

// Publish не блокирует вызывающего.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case b.queue <- e:
	default:
		b.log.WarnContext(ctx, "event bus full, event dropped", "event", e.Name)
	}
}

// Run читает очередь до отмены ctx, затем дочитывает то, что уже в буфере.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case e := <-b.queue:
			b.Fanout(ctx, e)
		case <-ctx.Done():
			b.drain()
			return nil
		}
	}
}

func (b *Bus) drain() {
	for {
		select {
		case e := <-b.queue:
			b.Fanout(context.Background(), e)
		default:
			return
		}
	}
}

// Fanout отдаёт событие каждому sink'у синхронно, с таймаутом на sink.
func (b *Bus) Fanout(ctx context.Context, e Event) {
	b.mu.RLock()
	sinks := append([]Sink(nil), b.sinks...)
	b.mu.RUnlock()

	for _, s := range sinks {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.sinkTimeout)
		if err := s.Consume(sctx, e); err != nil {
			b.log.Warn("event sink failed", "sink", s.Name(), "event", e.Name, "err", err)
		}
		cancel()
	}
}
