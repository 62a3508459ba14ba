package redis_test

import (
	"context"
	"testing"
	"time"

	"crux-escrow/internal/adapter/storage/redis"
	"crux-escrow/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewSnapshotCache(client)
	ctx := context.Background()

	view := &domain.EscrowView{
		Account: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		Role:    domain.RolePayer,
		Escrows: []domain.Escrow{
			{Sequence: 42, Payer: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", AmountDrops: 5_000_000, Status: domain.EscrowStatusPending},
		},
		RefreshedAt: time.Unix(1_700_000_000, 0).UTC(),
	}

	require.NoError(t, cache.Set(ctx, view, time.Minute))

	got, err := cache.Get(ctx, view.Account, domain.RolePayer)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, view.Account, got.Account)
	require.Len(t, got.Escrows, 1)
	assert.EqualValues(t, 42, got.Escrows[0].Sequence)
}

func TestSnapshotCache_MissIsNilNil(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewSnapshotCache(client)

	got, err := cache.Get(context.Background(), "rUnknown", domain.RolePayer)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotCache_RolesAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewSnapshotCache(client)
	ctx := context.Background()
	account := "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

	require.NoError(t, cache.Set(ctx, &domain.EscrowView{Account: account, Role: domain.RolePayer}, time.Minute))

	got, err := cache.Get(ctx, account, domain.RolePayee)
	require.NoError(t, err)
	assert.Nil(t, got, "payee view should not alias the payer view")
}

func TestSnapshotCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewSnapshotCache(client)
	ctx := context.Background()
	account := "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

	require.NoError(t, cache.Set(ctx, &domain.EscrowView{Account: account, Role: domain.RolePayer}, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, account, domain.RolePayer)
	require.NoError(t, err)
	assert.Nil(t, got)
}
