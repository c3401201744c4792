package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderRepository загружает профили провайдеров для domain.Registry.
type ProviderRepository struct {
	db *pgxpool.Pool
}

func NewProviderRepository(db *pgxpool.Pool) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// Register подключает загрузчики user и bot к реестру.
func (r *ProviderRepository) Register(reg *domain.Registry) {
	reg.Register(domain.ProviderUser, r.loader(domain.ProviderUser, queryGetUser))
	reg.Register(domain.ProviderBot, r.loader(domain.ProviderBot, queryGetBot))
}

func (r *ProviderRepository) loader(alias, query string) domain.ProviderLoader {
	return func(ctx context.Context, id string) (domain.Provider, error) {
		var (
			p    domain.Profile
			name *string
		)
		err := r.db.QueryRow(ctx, query, id).Scan(&p.Ref.ID, &name, &p.AvatarURL)
		if err != nil {
			err = mapPgError(err)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.ErrProviderNotFound
			}
			return nil, err
		}
		p.Ref.Type = alias
		if name != nil {
			p.Name = *name
		}
		return &p, nil
	}
}
