package identity

import (
	"context"
	"testing"

	"github.com/cwrk-planet/thread-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestContext_RoundTrip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	req.True(ActorFrom(ctx).IsZero())
	_, ok := FeaturesFrom(ctx)
	req.False(ok)

	ref := domain.ActorRef{Type: domain.ProviderBot, ID: "9"}
	f := domain.DefaultFeatures()
	f.Calling = false

	ctx = WithActor(ctx, ref)
	ctx = WithFeatures(ctx, f)

	req.Equal(ref, ActorFrom(ctx))
	got, ok := FeaturesFrom(ctx)
	req.True(ok)
	req.False(got.Calling)
}

func TestResolver(t *testing.T) {
	req := require.New(t)
	reg := domain.NewRegistry()
	reg.Register(domain.ProviderUser, func(ctx context.Context, id string) (domain.Provider, error) {
		if id == "1" {
			return &domain.Profile{Ref: domain.ActorRef{Type: domain.ProviderUser, ID: id}, Name: "Alice"}, nil
		}
		return nil, domain.ErrProviderNotFound
	})
	r := NewResolver(reg)

	_, err := r.Current(context.Background())
	req.ErrorIs(err, ErrNoActor)

	req.NoError(r.Check(domain.ActorRef{Type: domain.ProviderUser, ID: "1"}))
	req.ErrorIs(r.Check(domain.ActorRef{Type: "robot", ID: "1"}), domain.ErrUnknownProvider)
	req.ErrorIs(r.Check(domain.ActorRef{Type: domain.ProviderUser}), ErrNoActor)

	ctx := WithActor(context.Background(), domain.ActorRef{Type: domain.ProviderUser, ID: "1"})
	p, err := r.Current(ctx)
	req.NoError(err)
	req.Equal("Alice", p.DisplayName())

	p, err = r.Resolve(context.Background(), domain.ActorRef{Type: domain.ProviderUser, ID: "404"})
	req.NoError(err)
	req.True(domain.IsGhost(p))
}
