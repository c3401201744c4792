package memory

import (
	"context"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

// AddProvider сохраняет профиль user/bot для загрузчиков реестра.
func (s *Store) AddProvider(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.providers == nil {
		s.providers = make(map[domain.ActorRef]domain.Profile)
	}
	s.providers[p.Ref] = p
}

// Register подключает загрузчики user и bot к реестру, как postgres.ProviderRepository.
func (s *Store) Register(reg *domain.Registry) {
	reg.Register(domain.ProviderUser, s.loader(domain.ProviderUser))
	reg.Register(domain.ProviderBot, s.loader(domain.ProviderBot))
}

func (s *Store) loader(alias string) domain.ProviderLoader {
	return func(ctx context.Context, id string) (domain.Provider, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		p, ok := s.providers[domain.ActorRef{Type: alias, ID: id}]
		if !ok {
			return nil, domain.ErrProviderNotFound
		}
		return &p, nil
	}
}
