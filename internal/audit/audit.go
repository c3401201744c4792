// Package audit - журнал доменных событий в badger.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const keyPrefix = "audit:"

type Entry struct {
	ID       string          `json:"id"`
	Event    string          `json:"event"`
	ThreadID string          `json:"thread_id,omitempty"`
	Provider domain.ActorRef `json:"provider"`
	Payload  map[string]any  `json:"payload"`
	At       time.Time       `json:"at"`
}

// Log пишет каждое событие шины отдельным ключом audit:{unixnano}:{uuid},
// поэтому ключи упорядочены по времени.
type Log struct {
	db  *badger.DB
	log *slog.Logger
}

func Open(dir string, log *slog.Logger) (*Log, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("badger.Open: %w", err)
	}
	return New(db, log), nil
}

func New(db *badger.DB, log *slog.Logger) *Log {
	return &Log{db: db, log: log}
}

func (l *Log) Close() error { return l.db.Close() }

func (l *Log) Name() string { return "audit" }

func (l *Log) Consume(ctx context.Context, e events.Event) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	id := uuid.NewString()

	s, err := structpb.NewStruct(map[string]any{
		"id":         id,
		"event":      e.Name,
		"thread_id":  e.ThreadID,
		"owner_type": e.Provider.Type,
		"owner_id":   e.Provider.ID,
		"at":         at.UTC().Format(time.RFC3339Nano),
		"payload":    orEmpty(e.Payload),
	})
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return fmt.Errorf("proto.Marshal: %w", err)
	}

	key := fmt.Sprintf("%s%020d:%s", keyPrefix, at.UnixNano(), id)
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Recent возвращает последние записи, новые первыми.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	out := make([]Entry, 0, limit)

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// при обратном обходе стартуем за последним ключом префикса
		seek := append([]byte(keyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(keyPrefix)) && len(out) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				entry, err := decode(val)
				if err != nil {
					return err
				}
				out = append(out, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decode(val []byte) (Entry, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(val, &s); err != nil {
		return Entry{}, fmt.Errorf("proto.Unmarshal: %w", err)
	}
	m := s.AsMap()
	str := func(k string) string { v, _ := m[k].(string); return v }

	at, err := time.Parse(time.RFC3339Nano, str("at"))
	if err != nil {
		return Entry{}, fmt.Errorf("parse at: %w", err)
	}
	payload, _ := m["payload"].(map[string]any)
	return Entry{
		ID:       str("id"),
		Event:    str("event"),
		ThreadID: str("thread_id"),
		Provider: domain.ActorRef{Type: str("owner_type"), ID: str("owner_id")},
		Payload:  payload,
		At:       at,
	}, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
