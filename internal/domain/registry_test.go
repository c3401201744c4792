package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	reg.Register(ProviderUser, func(ctx context.Context, id string) (Provider, error) {
		if id == "1" {
			return &Profile{Ref: ActorRef{Type: ProviderUser, ID: id}, Name: "Alice"}, nil
		}
		return nil, ErrProviderNotFound
	})

	// Given a known user
	p, err := reg.Resolve(context.Background(), ActorRef{Type: ProviderUser, ID: "1"})
	req.NoError(err)
	req.Equal("Alice", p.DisplayName())
	req.False(IsGhost(p))

	// Given a deleted user, the ghost is returned
	p, err = reg.Resolve(context.Background(), ActorRef{Type: ProviderUser, ID: "2"})
	req.NoError(err)
	req.True(IsGhost(p))
	req.Equal("Ghost Profile", p.DisplayName())

	// Given an unregistered type
	_, err = reg.Resolve(context.Background(), ActorRef{Type: "robot", ID: "1"})
	req.ErrorIs(err, ErrUnknownProvider)
	req.False(reg.Known("robot"))
	req.True(reg.Known(ProviderUser))
}

func TestRegistry_Resolve_LoaderFailure(t *testing.T) {
	req := require.New(t)
	boom := errors.New("db down")
	reg := NewRegistry()
	reg.Register(ProviderBot, func(ctx context.Context, id string) (Provider, error) {
		return nil, boom
	})

	_, err := reg.Resolve(context.Background(), ActorRef{Type: ProviderBot, ID: "7"})
	req.ErrorIs(err, boom)
}

func TestActorRef_Equal(t *testing.T) {
	req := require.New(t)
	a := ActorRef{Type: ProviderUser, ID: "1"}
	req.True(a.Equal(ActorRef{Type: ProviderUser, ID: "1"}))
	req.False(a.Equal(ActorRef{Type: ProviderBot, ID: "1"}))
	req.False(a.IsZero())
	req.True(ActorRef{}.IsZero())
	req.Equal("user:1", a.String())
}

func TestParseActorRef(t *testing.T) {
	req := require.New(t)

	ref, err := ParseActorRef(" bot:3 ")
	req.NoError(err)
	req.Equal(ActorRef{Type: ProviderBot, ID: "3"}, ref)
	req.Equal("bot:3", ref.String())

	for _, raw := range []string{"", "user", ":1", "user:"} {
		_, err := ParseActorRef(raw)
		req.Error(err, raw)
	}
}
