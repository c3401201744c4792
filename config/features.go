package config

import (
	"sync/atomic"

	"github.com/cwrk-planet/thread-service/internal/domain"
)

// Snapshot превращает флаги из файла в неизменяемый domain.Features.
func (f Features) Snapshot() domain.Features {
	out := domain.DefaultFeatures()
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.Reactions, f.Reactions)
	set(&out.Calling, f.Calling)
	set(&out.Broadcasting, f.Broadcasting)
	set(&out.Events, f.Events)
	if f.MaxUniqueReactions > 0 {
		out.MaxUniqueReactions = f.MaxUniqueReactions
	}
	return out
}

// FeatureStore хранит текущий снимок фич; Store атомарно заменяет его целиком.
type FeatureStore struct {
	current atomic.Pointer[domain.Features]
}

func NewFeatureStore(f domain.Features) *FeatureStore {
	s := &FeatureStore{}
	s.Store(f)
	return s
}

func (s *FeatureStore) Snapshot() domain.Features {
	return *s.current.Load()
}

func (s *FeatureStore) Store(f domain.Features) {
	s.current.Store(&f)
}

// Reload перечитывает конфиг и подменяет снимок. При ошибке старый снимок остаётся.
func (s *FeatureStore) Reload(path string) (domain.Features, error) {
	cfg, err := Load(path)
	if err != nil {
		return s.Snapshot(), err
	}
	f := cfg.Features.Snapshot()
	s.Store(f)
	return f, nil
}
