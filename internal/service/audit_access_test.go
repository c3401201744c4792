package service_test

import (
	"context"
	"testing"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/identity"
	"github.com/cwrk-planet/thread-service/internal/service"

	"github.com/stretchr/testify/require"
)

func TestAuditAccess_CanRead(t *testing.T) {
	e := newEnv(t, domain.DefaultFeatures())
	access := service.NewAuditAccess(identity.NewResolver(e.registry), []domain.ActorRef{carol})

	tests := []struct {
		name  string
		actor domain.ActorRef
		err   error
	}{
		{"listed reader", carol, nil},
		{"participant but not a reader", alice, domain.ErrForbidden},
		{"unknown provider record", domain.ActorRef{Type: domain.ProviderUser, ID: "777"}, domain.ErrForbidden},
		{"no actor", domain.ActorRef{}, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if !tt.actor.IsZero() {
				ctx = identity.WithActor(ctx, tt.actor)
			}
			err := access.CanRead(ctx)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestAuditAccess_GhostListedReaderIsDenied(t *testing.T) {
	e := newEnv(t, domain.DefaultFeatures())
	gone := domain.ActorRef{Type: domain.ProviderBot, ID: "99"}
	access := service.NewAuditAccess(identity.NewResolver(e.registry), []domain.ActorRef{gone})

	err := access.CanRead(identity.WithActor(context.Background(), gone))
	require.ErrorIs(t, err, domain.ErrForbidden)
}
