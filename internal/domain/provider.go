package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ActorRef - полиморфная ссылка на владельца (тип провайдера + id).
type ActorRef struct {
	Type string `json:"owner_type"`
	ID   string `json:"owner_id"`
}

func (r ActorRef) IsZero() bool { return r.Type == "" && r.ID == "" }

func (r ActorRef) Equal(o ActorRef) bool { return r.Type == o.Type && r.ID == o.ID }

func (r ActorRef) String() string { return r.Type + ":" + r.ID }

// ParseActorRef разбирает запись вида "user:42" (формат String).
func ParseActorRef(s string) (ActorRef, error) {
	typ, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || typ == "" || id == "" {
		return ActorRef{}, fmt.Errorf("invalid actor ref %q, want type:id", s)
	}
	return ActorRef{Type: typ, ID: id}, nil
}

const (
	ProviderUser  = "user"
	ProviderBot   = "bot"
	ProviderGhost = "ghost"
)

// Provider - любой актор (user, bot, ...), способный владеть сообщениями, реакциями и участием в звонках.
type Provider interface {
	Identity() ActorRef
	DisplayName() string
}

// Profile - базовая реализация Provider для строк из users/bots.
type Profile struct {
	Ref       ActorRef
	Name      string
	AvatarURL *string
}

func (p *Profile) Identity() ActorRef  { return p.Ref }
func (p *Profile) DisplayName() string { return p.Name }

type ghost struct{}

func (ghost) Identity() ActorRef  { return ActorRef{Type: ProviderGhost} }
func (ghost) DisplayName() string { return "Ghost Profile" }

// Ghost возвращается вместо владельца, чья запись больше не существует.
var Ghost Provider = ghost{}

func IsGhost(p Provider) bool {
	return p == nil || p.Identity().Type == ProviderGhost
}

// ErrProviderNotFound - loader не нашёл запись; Registry превращает её в Ghost.
var ErrProviderNotFound = errors.New("provider not found")

type ProviderLoader func(ctx context.Context, id string) (Provider, error)

// Registry сопоставляет тег типа провайдера с его загрузчиком.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]ProviderLoader
}

func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]ProviderLoader)}
}

func (r *Registry) Register(alias string, loader ProviderLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[alias] = loader
}

func (r *Registry) Known(alias string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[alias]
	return ok
}

// Resolve загружает провайдера по ссылке. Отсутствующая запись даёт Ghost, а не ошибку.
func (r *Registry) Resolve(ctx context.Context, ref ActorRef) (Provider, error) {
	r.mu.RLock()
	loader, ok := r.loaders[ref.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, ref.Type)
	}

	p, err := loader(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return Ghost, nil
		}
		return nil, err
	}
	if p == nil {
		return Ghost, nil
	}
	return p, nil
}
